package storage

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { f.acks++; return nil }

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(uint64, bool) error { return nil }

func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestProcessDelivery_Ack(t *testing.T) {
	recorder := useSpanRecorder(t)
	acker := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: acker, MessageId: "m-1", Body: []byte(`{"submission_uuid":"abc"}`)}

	var got []byte
	processDelivery(context.Background(), "resume.extraction.queue", 0, d, func(_ context.Context, body []byte) bool {
		got = body
		return true
	})

	assert.Equal(t, d.Body, got)
	assert.Equal(t, 1, acker.acks)
	assert.Zero(t, acker.nacks)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "rabbitmq.consume", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestProcessDelivery_NackRequeues(t *testing.T) {
	recorder := useSpanRecorder(t)
	acker := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: acker, MessageId: "m-2"}

	processDelivery(context.Background(), "resume.extraction.queue", 1, d, func(context.Context, []byte) bool { return false })

	assert.Zero(t, acker.acks)
	assert.Equal(t, 1, acker.nacks)
	assert.True(t, acker.requeue)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "nack", attrs["messaging.error_type"])
	assert.Equal(t, "m-2", attrs["messaging.message_id"])
	assert.Equal(t, "rabbitmq", attrs["error.type"])
}

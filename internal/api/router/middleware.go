package router

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"resume-extractor/internal/constants"
	"resume-extractor/internal/logger"
)

// RequestID 透传或生成 X-Request-ID，并把带 request_id 的 logger 放进 ctx
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(constants.HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Response.Header.Set(constants.HeaderRequestID, id)

		ctx = logger.WithFields(ctx, map[string]string{"request_id": id})
		c.Next(ctx)
	}
}

// AccessLog 请求日志
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		status := c.Response.StatusCode()
		event := logger.Ctx(ctx).Info()
		if status >= 500 {
			event = logger.Ctx(ctx).Error()
		} else if status >= 400 {
			event = logger.Ctx(ctx).Warn()
		}
		event.
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP 请求")
	}
}

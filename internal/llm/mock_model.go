package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse MockChatModel 的单次响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatModel 按顺序返回预设响应，记录收到的消息，供测试和离线运行使用
type MockChatModel struct {
	mu        sync.Mutex
	responses []MockResponse
	index     int
	repeat    bool
	received  [][]*schema.Message
}

// NewMockChatModel 每次调用都返回同一个响应
func NewMockChatModel(content string, err error) *MockChatModel {
	return &MockChatModel{responses: []MockResponse{{Content: content, Error: err}}, repeat: true}
}

// NewSequentialMockChatModel 依次返回 responses，用完后报错
func NewSequentialMockChatModel(responses ...MockResponse) *MockChatModel {
	return &MockChatModel{responses: responses}
}

func (m *MockChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*schema.Message, len(input))
	copy(snapshot, input)
	m.received = append(m.received, snapshot)

	if len(m.responses) == 0 {
		return nil, errors.New("mock model has no responses configured")
	}
	if m.index >= len(m.responses) {
		if !m.repeat {
			return nil, errors.New("mock model has run out of responses")
		}
		m.index = len(m.responses) - 1
	}
	resp := m.responses[m.index]
	m.index++
	if resp.Error != nil {
		return nil, resp.Error
	}
	return schema.AssistantMessage(resp.Content, nil), nil
}

func (m *MockChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not implemented in MockChatModel")
}

func (m *MockChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// Calls 已发生的调用次数
func (m *MockChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

// LastMessages 最近一次调用收到的消息
func (m *MockChatModel) LastMessages() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.received) == 0 {
		return nil
	}
	return m.received[len(m.received)-1]
}

var _ model.ToolCallingChatModel = (*MockChatModel)(nil)

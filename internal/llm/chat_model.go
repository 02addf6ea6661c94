package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"resume-extractor/internal/logger"
)

const (
	// DefaultAPIURL OpenAI 兼容的 DashScope 接口
	DefaultAPIURL    = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	DefaultModelName = "qwen-turbo"
)

// Generator 只需要单次生成能力的调用方使用的最小接口
type Generator interface {
	Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatModel 基于 OpenAI 兼容 chat/completions 接口的模型客户端
type ChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	temperature float64
	jsonMode    bool
	httpClient  *http.Client
}

// ChatOption ChatModel 的可选配置
type ChatOption func(*ChatModel)

// WithHTTPClient 替换默认 HTTP 客户端
func WithHTTPClient(client *http.Client) ChatOption {
	return func(m *ChatModel) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// WithTemperature 设置采样温度
func WithTemperature(t float64) ChatOption {
	return func(m *ChatModel) { m.temperature = t }
}

// WithJSONMode 要求模型以 json_object 格式返回
func WithJSONMode(enabled bool) ChatOption {
	return func(m *ChatModel) { m.jsonMode = enabled }
}

// NewChatModel 创建模型客户端，apiKey 不能为空
func NewChatModel(apiKey, modelName, apiURL string, opts ...ChatOption) (*ChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultModelName
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}

	m := &ChatModel{
		apiKey:     apiKey,
		modelName:  modelName,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}

	logger.Info().Str("api_url", apiURL).Str("model", modelName).Msg("LLM 客户端已创建")
	return m, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate 发送一次非流式请求，返回第一条候选消息
func (m *ChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	payload := chatCompletionRequest{
		Model:       m.modelName,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: m.temperature,
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	if m.jsonMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	logger.Debug().Str("model", m.modelName).Int("messages", len(payload.Messages)).Msg("发送 LLM 请求")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", resp.Status, string(respBody))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("API 返回空 choices")
	}

	choice := parsed.Choices[0].Message
	content := ""
	if choice.Content != nil {
		content = *choice.Content
	}
	role := schema.RoleType(choice.Role)
	if role == "" {
		role = schema.Assistant
	}
	return &schema.Message{Role: role, Content: content}, nil
}

// Stream 未实现
func (m *ChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("ChatModel 不支持 Stream")
}

// WithTools 实体识别不使用工具调用，原样返回
func (m *ChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// ModelName 当前使用的模型名
func (m *ChatModel) ModelName() string { return m.modelName }

var _ model.ToolCallingChatModel = (*ChatModel)(nil)

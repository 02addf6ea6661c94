package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"resume-extractor/internal/extractor"
	"resume-extractor/internal/llm"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"
)

const defaultEntityPrompt = `你是一个命名实体识别器。从用户给出的简历文本中找出以下类别的实体，按它们在文本中出现的顺序列出，原样摘录，不要改写：
- PERSON: 人名
- ORG: 公司、学校等组织名
- GPE: 城市、州、国家等地名
- DATE: 日期或年份
只输出一个 JSON 对象，形如 {"PERSON":[],"ORG":[],"GPE":[],"DATE":[]}，不要输出任何其他内容。`

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// LLMRecognizer 通过聊天模型做实体识别
type LLMRecognizer struct {
	model       llm.Generator
	prompt      string
	callTimeout time.Duration
	maxRetries  int
	retryDelay  time.Duration
}

// LLMOption LLMRecognizer 的可选配置
type LLMOption func(*LLMRecognizer)

// WithPrompt 替换系统提示词
func WithPrompt(prompt string) LLMOption {
	return func(r *LLMRecognizer) {
		if strings.TrimSpace(prompt) != "" {
			r.prompt = prompt
		}
	}
}

// WithCallTimeout 单次调用超时
func WithCallTimeout(d time.Duration) LLMOption {
	return func(r *LLMRecognizer) {
		if d > 0 {
			r.callTimeout = d
		}
	}
}

// WithRetry 设置重试次数与初始间隔，间隔每次翻倍
func WithRetry(maxRetries int, delay time.Duration) LLMOption {
	return func(r *LLMRecognizer) {
		r.maxRetries = maxRetries
		r.retryDelay = delay
	}
}

// NewLLMRecognizer 创建基于 LLM 的识别器
func NewLLMRecognizer(model llm.Generator, opts ...LLMOption) *LLMRecognizer {
	r := &LLMRecognizer{
		model:       model,
		prompt:      defaultEntityPrompt,
		callTimeout: 60 * time.Second,
		maxRetries:  2,
		retryDelay:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *LLMRecognizer) Recognize(ctx context.Context, text string) (types.Entities, error) {
	if strings.TrimSpace(text) == "" {
		return types.NewEntities(), nil
	}
	content, err := r.call(ctx, text)
	if err != nil {
		return nil, err
	}
	return parseEntities(content)
}

func (r *LLMRecognizer) call(ctx context.Context, text string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(r.prompt),
		schema.UserMessage(text),
	}

	delay := r.retryDelay
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-timer.C:
			}
			delay *= 2
			logger.Debug().Int("attempt", attempt).Msg("重试实体识别 LLM 调用")
		}

		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		resp, err := r.model.Generate(callCtx, messages)
		cancel()
		if err == nil {
			return resp.Content, nil
		}
		lastErr = err
		if !llm.IsRetryableError(err) {
			break
		}
	}
	return "", fmt.Errorf("实体识别 LLM 调用失败: %w", lastErr)
}

// parseEntities 解析模型输出，未知类别丢弃，空白片段忽略
func parseEntities(content string) (types.Entities, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("LLM 响应中没有 JSON 对象")
	}

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("解析实体 JSON 失败: %w", err)
	}

	ents := types.NewEntities()
	for _, category := range types.EntityCategories {
		for _, span := range decoded[string(category)] {
			ents.Add(category, strings.TrimSpace(span))
		}
	}
	return ents, nil
}

// extractJSON 优先取 ``` 代码块里的对象，否则按括号配对截取第一个对象
func extractJSON(text string) string {
	if m := fencedJSONPattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

var _ extractor.EntityRecognizer = (*LLMRecognizer)(nil)

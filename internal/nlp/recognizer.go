// Package nlp 提供实体识别器实现：基于规则的启发式识别、基于 LLM 的识别，
// 以及空实现。它们都满足 extractor.EntityRecognizer。
package nlp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/llm"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/types"
)

// 识别器类型
const (
	ProviderHeuristic = "heuristic"
	ProviderLLM       = "llm"
	ProviderNone      = "none"
)

// NoopRecognizer 总是返回空结果
type NoopRecognizer struct{}

func (NoopRecognizer) Recognize(context.Context, string) (types.Entities, error) {
	return types.NewEntities(), nil
}

// FallbackRecognizer primary 出错时改用 secondary
type FallbackRecognizer struct {
	Primary   extractor.EntityRecognizer
	Secondary extractor.EntityRecognizer
}

func (f FallbackRecognizer) Recognize(ctx context.Context, text string) (types.Entities, error) {
	ents, err := f.Primary.Recognize(ctx, text)
	if err == nil {
		return ents, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	logger.Warn().Err(err).Msg("主实体识别器失败，改用备用识别器")
	return f.Secondary.Recognize(ctx, text)
}

// NewRecognizer 按配置创建识别器。llm 模式下启发式识别器作为备用，
// LLM 客户端无法创建时直接退回启发式识别器。
func NewRecognizer(cfg config.NLPConfig) (extractor.EntityRecognizer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", ProviderHeuristic:
		return NewHeuristicRecognizer(nil), nil
	case ProviderNone:
		return NoopRecognizer{}, nil
	case ProviderLLM:
		chat, err := llm.NewChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL,
			llm.WithTemperature(cfg.LLM.Temperature), llm.WithJSONMode(true))
		if err != nil {
			logger.Warn().Err(err).Msg("创建 LLM 客户端失败，改用启发式识别器")
			return NewHeuristicRecognizer(nil), nil
		}
		limited := llm.NewWithRateLimit(chat, chat.ModelName(), cfg.LLM.ModelQPMLimits, cfg.LLM.QPM,
			cfg.LLM.MaxRetries, time.Duration(cfg.LLM.RetryWaitSeconds)*time.Second)

		primary := NewLLMRecognizer(limited,
			WithCallTimeout(config.GetDuration(cfg.LLM.Timeout, 60*time.Second)),
			WithPrompt(cfg.LLM.EntityPrompt),
		)
		return FallbackRecognizer{Primary: primary, Secondary: NewHeuristicRecognizer(nil)}, nil
	default:
		return nil, fmt.Errorf("未知的实体识别器类型: %s", cfg.Provider)
	}
}

var (
	_ extractor.EntityRecognizer = NoopRecognizer{}
	_ extractor.EntityRecognizer = FallbackRecognizer{}
)

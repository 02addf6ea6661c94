// Package extractor 把简历纯文本结构化：字段正则、章节切分、技能匹配、
// 教育/工作经历块解析，以及把它们合并成 ResumeRecord 的组装步骤。
//
// 除实体识别器外全部是纯计算，无共享可变状态，可并发调用。
package extractor

import (
	"context"

	"resume-extractor/internal/types"
)

// MaxRecognizerInput 送入实体识别器的最大字符数
const MaxRecognizerInput = 100000

// EntityRecognizer 外部实体识别能力。实现应当幂等、无状态；
// 返回错误时调用方按空结果处理。
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) (types.Entities, error)
}

// Extractor 持有词表、经历解析规则和实体识别器
type Extractor struct {
	vocab           *Vocabulary
	recognizer      EntityRecognizer
	experienceRules []ExperienceRule
	maxEntityInput  int
}

// Option 配置 Extractor
type Option func(*Extractor)

// WithVocabulary 替换内置词表
func WithVocabulary(v *Vocabulary) Option {
	return func(e *Extractor) {
		if v != nil {
			e.vocab = v
		}
	}
}

// WithRecognizer 设置实体识别器
func WithRecognizer(r EntityRecognizer) Option {
	return func(e *Extractor) {
		e.recognizer = r
	}
}

// WithExperienceRules 替换职位/公司解析规则（按顺序生效）
func WithExperienceRules(rules ...ExperienceRule) Option {
	return func(e *Extractor) {
		if len(rules) > 0 {
			e.experienceRules = rules
		}
	}
}

// WithMaxRecognizerInput 调整识别器输入上限，非正数忽略
func WithMaxRecognizerInput(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxEntityInput = n
		}
	}
}

// New 创建 Extractor。未设置识别器时不做实体识别（姓名、地点缺失）。
func New(opts ...Option) *Extractor {
	e := &Extractor{
		vocab:           DefaultVocabulary(),
		experienceRules: DefaultExperienceRules(),
		maxEntityInput:  MaxRecognizerInput,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary 返回当前生效的词表
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

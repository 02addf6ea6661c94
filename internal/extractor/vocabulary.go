package extractor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
)

// Vocabulary 固定词表：章节表头、学位词、已知技能。
// 列表顺序即匹配优先级，加载时只做小写与去空白，不重排。
type Vocabulary struct {
	Headers     []string `yaml:"headers"`
	DegreeWords []string `yaml:"degree_words"`
	Skills      []string `yaml:"skills"`

	skillSet map[string]struct{}
}

// DefaultVocabulary 返回内置词表（只解析一次）
func DefaultVocabulary() *Vocabulary {
	defaultVocabOnce.Do(func() {
		v, err := parseVocabulary(defaultVocabularyYAML, nil)
		if err != nil {
			panic(fmt.Sprintf("内置词表无效: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// ParseVocabulary 解析 YAML 词表。缺省的列表沿用内置词表中的对应列表。
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	return parseVocabulary(data, DefaultVocabulary())
}

func parseVocabulary(data []byte, fallback *Vocabulary) (*Vocabulary, error) {
	var raw Vocabulary
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析词表失败: %w", err)
	}

	if fallback != nil {
		if len(raw.Headers) == 0 {
			raw.Headers = fallback.Headers
		}
		if len(raw.DegreeWords) == 0 {
			raw.DegreeWords = fallback.DegreeWords
		}
		if len(raw.Skills) == 0 {
			raw.Skills = fallback.Skills
		}
	}

	v := &Vocabulary{
		Headers:     normalizeList(raw.Headers),
		DegreeWords: normalizeList(raw.DegreeWords),
		Skills:      normalizeList(raw.Skills),
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.buildIndex()
	return v, nil
}

// LoadVocabularyFile 从文件加载词表；path 为空时返回内置词表
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取词表文件失败 %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// Validate 检查三个列表都非空且不含空项
func (v *Vocabulary) Validate() error {
	if len(v.Headers) == 0 {
		return errors.New("词表缺少 headers")
	}
	if len(v.DegreeWords) == 0 {
		return errors.New("词表缺少 degree_words")
	}
	if len(v.Skills) == 0 {
		return errors.New("词表缺少 skills")
	}
	for name, list := range map[string][]string{"headers": v.Headers, "degree_words": v.DegreeWords, "skills": v.Skills} {
		for i, item := range list {
			if item == "" {
				return fmt.Errorf("词表 %s 第 %d 项为空", name, i)
			}
		}
	}
	return nil
}

// MatchHeader 判断一行（已小写、已去空白）是否为章节表头。
// 依次尝试每个表头，相等或以其开头即命中，返回第一个命中的表头。
func (v *Vocabulary) MatchHeader(lowered string) (string, bool) {
	for _, header := range v.Headers {
		if lowered == header || strings.HasPrefix(lowered, header) {
			return header, true
		}
	}
	return "", false
}

// FirstDegree 按列表顺序返回第一个出现在 lowered 中的学位词
func (v *Vocabulary) FirstDegree(lowered string) (string, bool) {
	for _, word := range v.DegreeWords {
		if strings.Contains(lowered, word) {
			return word, true
		}
	}
	return "", false
}

// IsSkill 精确匹配已知技能
func (v *Vocabulary) IsSkill(token string) bool {
	_, ok := v.skillSet[token]
	return ok
}

// MarshalYAML 输出当前生效的词表
func (v *Vocabulary) MarshalYAML() (interface{}, error) {
	return struct {
		Headers     []string `yaml:"headers"`
		DegreeWords []string `yaml:"degree_words"`
		Skills      []string `yaml:"skills"`
	}{v.Headers, v.DegreeWords, v.Skills}, nil
}

func (v *Vocabulary) buildIndex() {
	v.skillSet = make(map[string]struct{}, len(v.Skills))
	for _, s := range v.Skills {
		v.skillSet[s] = struct{}{}
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.ToLower(strings.TrimSpace(item)))
	}
	return out
}

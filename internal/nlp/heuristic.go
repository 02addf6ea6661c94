package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"resume-extractor/internal/extractor"
	"resume-extractor/internal/types"
)

// 姓名只在文档开头若干行内查找
const nameSearchLines = 8

var (
	locationLabelPattern = regexp.MustCompile(`(?im)^\s*(?:location|address|based in)\s*[:\-]\s*(.+?)\s*$`)
	cityStatePattern     = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:[ \-][A-Z][a-zA-Z]+)*,\s?[A-Z]{2}\b`)
	orgSuffixPattern     = regexp.MustCompile(
		`\b[A-Z][\w&.\-]*(?:[ \t]+[A-Z][\w&.\-]*)*[ \t]+(?:Inc|Corp|Corporation|LLC|Ltd|GmbH|Co|Company|Technologies|Labs|Group|University|College|Institute|School)\b\.?`,
	)
	orgPrefixPattern = regexp.MustCompile(`\b(?:University|Institute|College) of [A-Z][a-z]+(?: [A-Z][a-z]+)*`)
	datePattern      = regexp.MustCompile(
		`(?i)\b(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?[ \t]+)?(?:19|20)\d{2}\b`,
	)
)

// HeuristicRecognizer 基于正则和排版习惯的实体识别，不依赖外部模型
type HeuristicRecognizer struct {
	vocab *extractor.Vocabulary
}

// NewHeuristicRecognizer vocab 为 nil 时用内置词表判断章节标题
func NewHeuristicRecognizer(vocab *extractor.Vocabulary) *HeuristicRecognizer {
	if vocab == nil {
		vocab = extractor.DefaultVocabulary()
	}
	return &HeuristicRecognizer{vocab: vocab}
}

func (h *HeuristicRecognizer) Recognize(ctx context.Context, text string) (types.Entities, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ents := types.NewEntities()

	if name, ok := h.findPerson(text); ok {
		ents.Add(types.EntityPerson, name)
	}
	for _, place := range findPlaces(text) {
		ents.Add(types.EntityPlace, place)
	}
	for _, org := range orderedMatches(text, orgPrefixPattern, orgSuffixPattern) {
		ents.Add(types.EntityOrganization, org)
	}
	for _, date := range orderedMatches(text, datePattern) {
		ents.Add(types.EntityDate, date)
	}
	return ents, nil
}

func (h *HeuristicRecognizer) findPerson(text string) (string, bool) {
	seen := 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		seen++
		if seen > nameSearchLines {
			break
		}
		if _, isHeader := h.vocab.MatchHeader(strings.ToLower(line)); isHeader {
			continue
		}
		if looksLikeName(line) {
			return line, true
		}
	}
	return "", false
}

// looksLikeName 2 到 4 个首字母大写的词，不含数字、邮箱、链接
func looksLikeName(line string) bool {
	if strings.ContainsAny(line, "@/:|,0123456789") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
				return false
			}
		}
	}
	return !orgSuffixPattern.MatchString(line)
}

func findPlaces(text string) []string {
	var places []string
	for _, m := range locationLabelPattern.FindAllStringSubmatch(text, -1) {
		places = append(places, m[1])
	}
	for _, m := range cityStatePattern.FindAllString(text, -1) {
		places = append(places, m)
	}
	return dedupe(places)
}

// orderedMatches 多个模式的匹配结果按出现位置排序，去掉被包含的重叠片段
func orderedMatches(text string, patterns ...*regexp.Regexp) []string {
	type span struct{ start, end int }
	var spans []span
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var out []string
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		out = append(out, strings.TrimSpace(text[s.start:s.end]))
		lastEnd = s.end
	}
	return dedupe(out)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok || it == "" {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

var _ extractor.EntityRecognizer = (*HeuristicRecognizer)(nil)

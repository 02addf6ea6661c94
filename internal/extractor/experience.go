package extractor

import (
	"regexp"
	"strings"

	"resume-extractor/internal/types"
)

// 起止日期：月份+年份或裸年份，连接符支持 - – —，结束可为 present/current
var dateRangePattern = regexp.MustCompile(
	`(?i)([A-Za-z]{3,9}\s?\d{4}|\d{4})\s?[-–—]\s?([A-Za-z]{3,9}\s?\d{4}|\d{4}|present|current)`,
)

// Headline 规则从块首行解析出的职位、公司以及消耗的行数
type Headline struct {
	Role     string
	Company  string
	Consumed int
}

// ExperienceRule 职位/公司解析规则，按顺序尝试，第一个适用的规则生效
type ExperienceRule interface {
	Name() string
	Apply(lines []string) (Headline, bool)
}

// AtSeparator 首行包含 " at "：按第一次出现切分，前为职位后为公司
type AtSeparator struct{}

func (AtSeparator) Name() string { return "at_separator" }

func (AtSeparator) Apply(lines []string) (Headline, bool) {
	role, company, ok := strings.Cut(lines[0], " at ")
	if !ok {
		return Headline{}, false
	}
	return Headline{Role: role, Company: company, Consumed: 1}, true
}

// DashSeparator 首行包含 " - " 且块多于一行：首行整体为职位，第二行为公司
type DashSeparator struct{}

func (DashSeparator) Name() string { return "dash_separator" }

func (DashSeparator) Apply(lines []string) (Headline, bool) {
	if !strings.Contains(lines[0], " - ") || len(lines) < 2 {
		return Headline{}, false
	}
	return Headline{Role: lines[0], Company: lines[1], Consumed: 2}, true
}

// SingleLine 兜底：首行整体为职位，无公司
type SingleLine struct{}

func (SingleLine) Name() string { return "single_line" }

func (SingleLine) Apply(lines []string) (Headline, bool) {
	return Headline{Role: lines[0], Consumed: 1}, true
}

// DefaultExperienceRules 默认规则顺序
func DefaultExperienceRules() []ExperienceRule {
	return []ExperienceRule{AtSeparator{}, DashSeparator{}, SingleLine{}}
}

// ExtractExperience 以空行切块，逐块解析日期区间、职位、公司与描述。
// 只有一行且不含日期的块，若下一块首行整行就是日期区间，则与下一块合并。
func (e *Extractor) ExtractExperience(sectionText string) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	if strings.TrimSpace(sectionText) == "" {
		return entries
	}

	for _, lines := range mergeDetachedHeadlines(sectionBlocks(sectionText)) {
		entries = append(entries, e.parseExperienceBlock(lines))
	}
	return entries
}

func (e *Extractor) parseExperienceBlock(lines []string) types.ExperienceEntry {
	var entry types.ExperienceEntry

	// 在整块上查找，区间可跨行
	if m := dateRangePattern.FindStringSubmatch(strings.Join(lines, "\n")); m != nil {
		entry.StartDate = optional(strings.TrimSpace(m[1]))
		entry.EndDate = optional(strings.TrimSpace(m[2]))
	}

	for _, rule := range e.experienceRules {
		headline, ok := rule.Apply(lines)
		if !ok {
			continue
		}
		entry.Role = optional(headline.Role)
		entry.Company = optional(headline.Company)
		if headline.Consumed < len(lines) {
			entry.Description = optional(strings.Join(lines[headline.Consumed:], "\n"))
		}
		break
	}
	return entry
}

// sectionBlocks 切块并去掉空块
func sectionBlocks(text string) [][]string {
	var blocks [][]string
	for _, block := range splitBlocks(text) {
		if lines := nonBlankLines(block); len(lines) > 0 {
			blocks = append(blocks, lines)
		}
	}
	return blocks
}

func mergeDetachedHeadlines(blocks [][]string) [][]string {
	merged := make([][]string, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		block := blocks[i]
		if len(block) == 1 && !dateRangePattern.MatchString(block[0]) &&
			i+1 < len(blocks) && isDateRangeLine(blocks[i+1][0]) {
			joined := make([]string, 0, 1+len(blocks[i+1]))
			joined = append(joined, block[0])
			joined = append(joined, blocks[i+1]...)
			merged = append(merged, joined)
			i++
			continue
		}
		merged = append(merged, block)
	}
	return merged
}

// isDateRangeLine 整行（去掉首尾空白）恰好是一个日期区间
func isDateRangeLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	loc := dateRangePattern.FindStringIndex(trimmed)
	return loc != nil && loc[0] == 0 && loc[1] == len(trimmed)
}

package extractor

import (
	"regexp"
	"strings"

	"resume-extractor/internal/types"
)

var yearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)

// ExtractEducation 以空行切块，只保留含学位词的块。
//
// 院校取块内第一个非空行；学位取词表顺序中第一个出现的学位词；
// 年份按出现顺序取前两个，只有一个时起止相同。
func (e *Extractor) ExtractEducation(sectionText string) []types.EducationEntry {
	entries := []types.EducationEntry{}
	if strings.TrimSpace(sectionText) == "" {
		return entries
	}

	for _, block := range splitBlocks(sectionText) {
		lines := nonBlankLines(block)
		if len(lines) == 0 {
			continue
		}

		degree, ok := e.vocab.FirstDegree(strings.ToLower(block))
		if !ok {
			continue
		}

		entry := types.EducationEntry{
			Institution: optional(lines[0]),
			Degree:      optional(degree),
		}
		years := yearPattern.FindAllString(block, -1)
		switch {
		case len(years) >= 2:
			entry.StartYear, entry.EndYear = optional(years[0]), optional(years[1])
		case len(years) == 1:
			entry.StartYear, entry.EndYear = optional(years[0]), optional(years[0])
		}
		entries = append(entries, entry)
	}
	return entries
}

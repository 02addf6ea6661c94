package extractor

import (
	"strings"

	"resume-extractor/internal/types"
)

// SplitSections 按表头词表把全文切成章节。
//
// 单遍扫描：当前标签初始为 "other"；一行小写去空白后等于或以某个表头开头，
// 即切换到该表头并清空其已累积内容（重复出现的表头以最后一次为准）；
// 其余非空行追加到当前标签下。最后按换行拼接、去空白，丢弃空章节。
func (e *Extractor) SplitSections(text string) types.SectionMap {
	current := types.SectionOther
	buffers := make(map[string][]string)

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if header, ok := e.vocab.MatchHeader(strings.ToLower(trimmed)); ok {
			current = header
			buffers[current] = nil
			continue
		}
		if trimmed == "" {
			continue
		}
		buffers[current] = append(buffers[current], line)
	}

	sections := make(types.SectionMap, len(buffers))
	for label, lines := range buffers {
		if joined := strings.TrimSpace(strings.Join(lines, "\n")); joined != "" {
			sections[label] = joined
		}
	}
	return sections
}

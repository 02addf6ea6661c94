package extractor

import "strings"

var lineBreakNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// splitLines 按行切分，兼容 \r\n 与 \r
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(lineBreakNormalizer.Replace(text), "\n")
}

// splitBlocks 以空行（字面的连续两个换行）切分段落块
func splitBlocks(text string) []string {
	return strings.Split(lineBreakNormalizer.Replace(text), "\n\n")
}

// nonBlankLines 返回块内去空白后的非空行
func nonBlankLines(block string) []string {
	var lines []string
	for _, line := range splitLines(block) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// optional 空白值视为缺失
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

package extractor

import (
	"sort"
	"strings"
)

// isSkillDelimiter 技能分隔符：逗号、换行、分号、项目符号、竖线
func isSkillDelimiter(r rune) bool {
	switch r {
	case ',', '\n', ';', '•', '·', '|':
		return true
	}
	return false
}

// ExtractSkills 切分章节文本并与已知技能精确匹配，结果去重并按字典序排列。
// 空输入返回空切片。
func (e *Extractor) ExtractSkills(sectionText string) []string {
	found := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(strings.ToLower(sectionText), isSkillDelimiter) {
		cleaned := strings.TrimSpace(token)
		if e.vocab.IsSkill(cleaned) {
			found[cleaned] = struct{}{}
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

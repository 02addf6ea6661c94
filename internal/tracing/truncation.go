package tracing

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	DefaultMaxLength = 200
	MaxSQLLength     = 500
	MaxRedisLength   = 100
	MaxResumeLength  = 150
)

// 属性名包含这些关键字时值需要掩码
var maskPIILookup = map[string]bool{
	"email":    true,
	"phone":    true,
	"password": true,
	"address":  true,
	"location": true,
	"name":     true,
	"姓名":       true,
	"地址":       true,
	"secret":   true,
	"token":    true,
	"api_key":  true,
}

var (
	emailInText = regexp.MustCompile(`[\w.+\-]+@[\w\-]+\.[\w.\-]+`)
	phoneInText = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
)

// SafeAttributeValue 敏感属性名掩码，其余超长时截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lower := strings.ToLower(name)
	for keyword := range maskPIILookup {
		if strings.Contains(lower, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 掩码单个敏感值：短值保留首尾各一个字符，长值保留首尾各两个
func MaskPII(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	n := len(runes)
	switch {
	case n <= 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	}
	return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
}

// MaskPIIInText 把自由文本中出现的邮箱和电话号码替换为掩码
func MaskPIIInText(text string) string {
	text = emailInText.ReplaceAllStringFunc(text, MaskPII)
	return phoneInText.ReplaceAllStringFunc(text, MaskPII)
}

// SafeFilename 文件名常含候选人姓名：主干部分掩码，保留扩展名
func SafeFilename(name string) string {
	base := filepath.Base(name)
	if name == "" || base == "." {
		return ""
	}
	ext := filepath.Ext(base)
	return MaskPII(TruncateString(strings.TrimSuffix(base, ext), DefaultMaxLength)) + ext
}

// TruncateString 超长时保留首尾，中间用 ... 连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

func SafeSQL(sql string) string { return TruncateString(sql, MaxSQLLength) }

func SafeRedisKey(key string) string { return TruncateString(key, MaxRedisLength) }

// SafeResumeContent 简历文本先掩码再截断
func SafeResumeContent(content string) string {
	return TruncateString(MaskPIIInText(content), MaxResumeLength)
}

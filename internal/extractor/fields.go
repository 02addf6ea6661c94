package extractor

import (
	"regexp"
	"sort"
	"strings"
)

// 字段级正则，作用于全文，不感知章节
var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// 宽松匹配：可能误命中其他 10 位数字（如订单号）
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[-\s]?)?(?:\d{10}|\d{3}[-\s]?\d{3}[-\s]?\d{4})`)
	linkPattern  = regexp.MustCompile(`https?://[^\s]+|(?:www\.)?linkedin\.com/[^\s]+|github\.com/[^\s]+`)

	linkSchemePrefix = regexp.MustCompile(`(?i)^https?://`)
)

// ExtractEmail 返回全文中第一个邮箱地址
func ExtractEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	return m, m != ""
}

// ExtractPhone 返回全文中第一个电话号码
func ExtractPhone(text string) (string, bool) {
	m := phonePattern.FindString(text)
	return m, m != ""
}

// ExtractLinks 返回全文中的全部链接，去重后按字典序排列。
// 带协议与不带协议（以及 www. 前缀）的同一地址视为重复，保留带协议的写法。
func ExtractLinks(text string) []string {
	matches := linkPattern.FindAllString(text, -1)
	byKey := make(map[string]string, len(matches))
	for _, m := range matches {
		key := linkKey(m)
		prev, seen := byKey[key]
		if !seen || (!hasScheme(prev) && hasScheme(m)) {
			byKey[key] = m
		}
	}

	links := make([]string, 0, len(byKey))
	for _, link := range byKey {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

func linkKey(link string) string {
	key := linkSchemePrefix.ReplaceAllString(link, "")
	host, path, _ := strings.Cut(key, "/")
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return host + "/" + path
}

func hasScheme(link string) bool {
	return linkSchemePrefix.MatchString(link)
}

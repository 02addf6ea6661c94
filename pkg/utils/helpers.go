package utils

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// StringPtr 返回字符串的指针，空串也返回非 nil 指针
func StringPtr(s string) *string {
	return &s
}

// OptionalString 空白字符串返回 nil
func OptionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// TimePtr 零值返回 nil
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// CalculateMD5 计算字节内容的 MD5 十六进制串
func CalculateMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ToJSON 序列化为 gorm JSON 列，失败或 nil 时返回 null
func ToJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// Paginate 把 1 起始的页码换算成 offset/limit，越界值回落到默认值
func Paginate(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

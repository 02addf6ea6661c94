package constants

import "time"

const (
	// ServiceName 日志与链路中使用的服务名
	ServiceName = "resume-extractor"

	// DefaultRecordTTL 结构化结果缓存的默认时长
	DefaultRecordTTL = 24 * time.Hour

	// HeaderRequestID 请求 ID 头
	HeaderRequestID = "X-Request-ID"
	// HeaderAPIKey API Key 头
	HeaderAPIKey = "X-API-Key"
)

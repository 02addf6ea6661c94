package constants

// Redis Key 统一格式: app:{module}:{entity}:{unique_id}
const (
	AppPrefix = "app"

	ExtractModulePrefix = "extract"
	FileModulePrefix    = "file"

	EntityRecord    = "record"
	EntityMD5ToUUID = "md5_to_uuid"

	// KeyRecordByTextMD5 结构化结果缓存 (STRING, JSON)
	// 格式: app:extract:record:{textMD5}
	KeyRecordByTextMD5 = AppPrefix + ":" + ExtractModulePrefix + ":" + EntityRecord + ":%s"

	// KeyFileMD5ToSubmissionUUID 原文件 MD5 到 SubmissionUUID 的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"
)

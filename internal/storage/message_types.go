package storage

import "time"

// ExtractionRequestMessage 异步抽取请求，消费者据此下载原文件并处理
type ExtractionRequestMessage struct {
	SubmissionUUID   string    `json:"submission_uuid"`
	OriginalFilename string    `json:"original_filename"`
	FileExtension    string    `json:"file_extension"`
	OriginalFilePath string    `json:"original_file_path"` // MinIO 对象键
	RawFileMD5       string    `json:"raw_file_md5,omitempty"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// ExtractionCompletedEvent 抽取完成事件，经外发件箱发布
type ExtractionCompletedEvent struct {
	SubmissionUUID string    `json:"submission_uuid"`
	Status         string    `json:"status"`
	TextMD5        string    `json:"text_md5,omitempty"`
	ParsedTextPath string    `json:"parsed_text_path,omitempty"`
	SkillCount     int       `json:"skill_count"`
	CompletedAt    time.Time `json:"completed_at"`
}

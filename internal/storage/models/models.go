package models

import (
	"time"

	"gorm.io/datatypes"
)

// 提交状态
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	// StatusDuplicate 仅出现在接口响应中，表示同一文件已提交过
	StatusDuplicate = "DUPLICATE"
)

// ExtractionSubmission 异步抽取提交记录
type ExtractionSubmission struct {
	SubmissionUUID   string         `gorm:"type:char(36);primaryKey"`
	OriginalFilename string         `gorm:"type:varchar(255)"`
	FileExtension    string         `gorm:"type:varchar(16)"`
	RawFileMD5       string         `gorm:"type:char(32);index:idx_es_raw_file_md5"`
	TextMD5          string         `gorm:"type:char(32);index:idx_es_text_md5"`
	OriginalFilePath string         `gorm:"type:varchar(1024)"`
	ParsedTextPath   string         `gorm:"type:varchar(1024)"`
	Record           datatypes.JSON `gorm:"type:json"`
	Status           string         `gorm:"type:varchar(32);default:'PENDING';index:idx_es_status"`
	ErrorMessage     string         `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_es_created_at"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
	CompletedAt      *time.Time     `gorm:"type:datetime(6);null"`
}

func (ExtractionSubmission) TableName() string {
	return "extraction_submissions"
}

// AllModels 自动迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{&ExtractionSubmission{}, &OutboxMessage{}}
}

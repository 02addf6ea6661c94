package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/storage/models"
	"resume-extractor/internal/tracing"
)

// ErrSubmissionNotFound 提交记录不存在
var ErrSubmissionNotFound = errors.New("submission not found")

var mysqlTracer = otel.Tracer("resume-extractor/storage/mysql")

type spanContextKey struct{}

// GormTracingPlugin 为 gorm 的增删改查注册 span
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{tracer: mysqlTracer, dbName: dbName}
}

func (p *GormTracingPlugin) Name() string { return "GormOpenTelemetryPlugin" }

// Initialize 注册 before/after 回调
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op       string
		register func(before, after func(*gorm.DB)) error
	}{
		{"CREATE", func(b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("otel:before_create", b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("otel:after_create", a)
		}},
		{"SELECT", func(b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("otel:before_query", b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("otel:after_query", a)
		}},
		{"UPDATE", func(b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("otel:before_update", b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("otel:after_update", a)
		}},
		{"DELETE", func(b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("otel:after_delete", a)
		}},
		{"RAW", func(b, a func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", b); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("otel:after_raw", a)
		}},
	}
	for _, h := range hooks {
		if err := h.register(p.before(h.op), p.after()); err != nil {
			return err
		}
	}
	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		ctx, span := p.tracer.Start(ctx, operation+" "+table,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", table),
			),
		)
		db.Statement.Context = context.WithValue(ctx, spanContextKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(spanContextKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if sql := db.Statement.SQL.String(); sql != "" {
			span.SetAttributes(attribute.String("db.statement", tracing.SafeSQL(sql)))
		}
		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Ok, "record not found")
		default:
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// MySQL 提交记录与 outbox 的持久化
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 连接并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.ConnectTimeoutSeconds)

	logLevel := gormlogger.Silent
	switch cfg.LogLevel {
	case 2:
		logLevel = gormlogger.Error
	case 3:
		logLevel = gormlogger.Warn
	case 4:
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("MySQL 已连接并完成迁移")
	return &MySQL{db: db, cfg: cfg}, nil
}

// DB 底层 gorm 连接
func (m *MySQL) DB() *gorm.DB { return m.db }

func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateSubmission 插入新的提交记录
func (m *MySQL) CreateSubmission(ctx context.Context, sub *models.ExtractionSubmission) error {
	if err := m.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("插入提交记录失败: %w", err)
	}
	return nil
}

// GetSubmission 按 UUID 查询
func (m *MySQL) GetSubmission(ctx context.Context, submissionUUID string) (*models.ExtractionSubmission, error) {
	var sub models.ExtractionSubmission
	err := m.db.WithContext(ctx).Where("submission_uuid = ?", submissionUUID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return &sub, nil
}

// ListSubmissions 按创建时间倒序分页，status 为空时不过滤
func (m *MySQL) ListSubmissions(ctx context.Context, offset, limit int, status string) ([]models.ExtractionSubmission, int64, error) {
	query := m.db.WithContext(ctx).Model(&models.ExtractionSubmission{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计提交记录失败: %w", err)
	}

	var subs []models.ExtractionSubmission
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&subs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("分页查询提交记录失败: %w", err)
	}
	return subs, total, nil
}

// UpdateSubmissionStatus 更新状态与错误信息
func (m *MySQL) UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, errMsg string) error {
	res := m.db.WithContext(ctx).Model(&models.ExtractionSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Updates(map[string]interface{}{"status": status, "error_message": errMsg})
	if res.Error != nil {
		return fmt.Errorf("更新提交状态失败: %w", res.Error)
	}
	return nil
}

// CompleteSubmission 在同一事务中写入结果并登记 outbox 消息
func (m *MySQL) CompleteSubmission(ctx context.Context, submissionUUID string, updates map[string]interface{}, msg *models.OutboxMessage) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ExtractionSubmission{}).
			Where("submission_uuid = ?", submissionUUID).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("更新提交结果失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrSubmissionNotFound
		}
		if msg != nil {
			if err := tx.Create(msg).Error; err != nil {
				return fmt.Errorf("写入 outbox 消息失败: %w", err)
			}
		}
		return nil
	})
}

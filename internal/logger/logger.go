// Package logger 封装全局 zerolog 日志实例
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger 全局日志实例
var Logger = log.Logger

// Config 日志配置
type Config struct {
	Level        string `json:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal disabled"`
	Format       string `json:"format" yaml:"format" validate:"omitempty,oneof=json pretty"`
	TimeFormat   string `json:"time_format" yaml:"time_format"`
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"`
	// Output stdout 或 stderr，命令行工具用 stderr 以免污染 JSON 输出
	Output string `json:"output" yaml:"output" validate:"omitempty,oneof=stdout stderr"`
}

// Init 按配置替换全局日志实例
func Init(config Config) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if config.Output == "stderr" {
		out = os.Stderr
	}
	InitWithWriter(config, out)
}

// InitWithWriter 与 Init 相同，但写入指定的 writer，测试时常用
func InitWithWriter(config Config, out io.Writer) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}

	if config.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: config.TimeFormat}
	}
	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	ctxLogger := zerolog.New(out).Level(level).With().Timestamp()
	if config.ReportCaller {
		ctxLogger = ctxLogger.Caller()
	}

	Logger = ctxLogger.Logger()
	log.Logger = Logger
}

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

// Fatal 记录后进程退出
func Fatal() *zerolog.Event { return Logger.Fatal() }

// Ctx 取 ctx 中的 logger，没有时返回全局实例
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &Logger
}

// WithContext 把全局 logger 放进 ctx
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

// WithFields 带上固定字段的子 logger 放进 ctx，例如 request_id、submission_uuid
func WithFields(ctx context.Context, fields map[string]string) context.Context {
	c := Ctx(ctx).With()
	for k, v := range fields {
		c = c.Str(k, v)
	}
	l := c.Logger()
	return l.WithContext(ctx)
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
)

// Storage 聚合所有外部存储依赖。未启用或初始化失败的组件保持 nil。
type Storage struct {
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
	MySQL    *MySQL
	Redis    *Redis
}

// NewStorage 按配置初始化各组件。单个组件失败只记录警告，
// 只有启用的组件全部失败时才返回错误。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var initErrors []string
	enabled := 0

	if cfg.Redis.Enabled {
		enabled++
		r, err := NewRedis(&cfg.Redis)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		} else {
			s.Redis = r
		}
	}

	if cfg.MinIO.Enabled {
		enabled++
		m, err := NewMinIO(&cfg.MinIO)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		} else {
			s.MinIO = m
		}
	}

	if cfg.MySQL.Enabled {
		enabled++
		db, err := NewMySQL(&cfg.MySQL)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		} else {
			s.MySQL = db
		}
	}

	if cfg.RabbitMQ.Enabled {
		enabled++
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		} else {
			s.RabbitMQ = mq
		}
	}

	if len(initErrors) > 0 {
		if len(initErrors) == enabled {
			return nil, fmt.Errorf("所有存储组件初始化失败: %s", strings.Join(initErrors, "; "))
		}
		logger.Ctx(ctx).Warn().Strs("errors", initErrors).Msg("部分存储组件初始化失败")
	}
	return s, nil
}

// AsyncReady 异步提交所需组件是否都可用
func (s *Storage) AsyncReady() bool {
	return s != nil && s.MinIO != nil && s.MySQL != nil && s.RabbitMQ != nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s == nil {
		return
	}
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}

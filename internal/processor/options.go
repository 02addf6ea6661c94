package processor

import (
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/constants"
	"resume-extractor/internal/storage"
)

// ServiceOption 配置 ExtractionService
type ServiceOption func(*ExtractionService)

// WithRecordCache 启用结果缓存
func WithRecordCache(c RecordCache, ttl time.Duration) ServiceOption {
	return func(s *ExtractionService) {
		s.cache = c
		if ttl > 0 {
			s.recordTTL = ttl
		}
	}
}

// WithFileDeduper 启用异步提交的文件去重
func WithFileDeduper(d FileDeduper) ServiceOption {
	return func(s *ExtractionService) { s.deduper = d }
}

// WithObjectStore 设置对象存储
func WithObjectStore(o ObjectStore) ServiceOption {
	return func(s *ExtractionService) { s.objects = o }
}

// WithSubmissionStore 设置提交记录存储
func WithSubmissionStore(st SubmissionStore) ServiceOption {
	return func(s *ExtractionService) { s.submissions = st }
}

// WithPublisher 设置消息发布器
func WithPublisher(p Publisher) ServiceOption {
	return func(s *ExtractionService) { s.publisher = p }
}

// WithQueueConfig 设置交换机、路由键与消费重试策略
func WithQueueConfig(cfg config.RabbitMQConfig) ServiceOption {
	return func(s *ExtractionService) {
		s.queue = cfg
		s.retryInterval = config.GetDuration(cfg.RetryInterval, s.retryInterval)
		if cfg.MaxRetries >= 0 {
			s.maxRetries = cfg.MaxRetries
		}
	}
}

// WithStorage 按已初始化的存储组件装配，nil 组件跳过
func WithStorage(st *storage.Storage, cfg *config.Config) ServiceOption {
	return func(s *ExtractionService) {
		if st == nil {
			return
		}
		if st.Redis != nil {
			WithRecordCache(st.Redis, st.Redis.RecordTTL())(s)
			WithFileDeduper(st.Redis)(s)
		}
		if st.MinIO != nil {
			WithObjectStore(st.MinIO)(s)
		}
		if st.MySQL != nil {
			WithSubmissionStore(st.MySQL)(s)
		}
		if st.RabbitMQ != nil {
			WithPublisher(st.RabbitMQ)(s)
		}
		if cfg != nil {
			WithQueueConfig(cfg.RabbitMQ)(s)
		}
	}
}

func defaultService() *ExtractionService {
	return &ExtractionService{
		recordTTL:     constants.DefaultRecordTTL,
		retryInterval: time.Second,
		maxRetries:    2,
		now:           time.Now,
	}
}

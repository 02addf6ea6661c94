package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"resume-extractor/internal/api/handler"
	"resume-extractor/internal/api/router"
	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/nlp"
	"resume-extractor/internal/outbox"
	"resume-extractor/internal/parser"
	"resume-extractor/internal/processor"
	"resume-extractor/internal/storage"
	"resume-extractor/internal/tracing"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	var (
		configPath  string
		writeSample string
		showVersion bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (默认按搜索路径查找)")
	pflag.StringVar(&writeSample, "write-sample-config", "", "写出示例配置文件后退出")
	pflag.BoolVarP(&showVersion, "version", "v", false, "Print version and exit")
	pflag.Parse()

	if showVersion {
		os.Stdout.WriteString("resume-extractor " + version + "\n")
		return
	}
	if writeSample != "" {
		if err := config.CreateSampleConfig(writeSample); err != nil {
			logger.Fatal().Err(err).Msg("写出示例配置失败")
		}
		logger.Info().Str("path", writeSample).Msg("示例配置已写出")
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg.Logger)
	logger.Info().Str("version", version).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()

	svc, err := buildService(ctx, cfg, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化抽取服务失败")
	}

	var wg sync.WaitGroup
	startBackground(ctx, &wg, cfg, storageManager, svc)

	h := newServer(cfg)
	router.RegisterRoutes(h, handler.NewExtractionHandler(svc), router.Options{APIKeys: cfg.Server.APIKeys})
	logger.Info().
		Str("address", cfg.Server.Address).
		Bool("async", svc.AsyncEnabled()).
		Strs("extensions", svc.SupportedExtensions()).
		Msg("HTTP 服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancelShutdown()

	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP 服务器关闭失败")
	}

	// 停止消费者和 relay，等它们退出后再关闭连接
	cancel()
	wg.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("关闭链路追踪失败")
	}
	logger.Info().Msg("优雅退出完成")
}

func initLogger(cfg config.LoggerConfig) {
	logger.Init(logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		TimeFormat:   cfg.TimeFormat,
		ReportCaller: cfg.ReportCaller,
		Output:       cfg.Output,
	})

	hlog.SetLogger(hertzadapter.From(logger.Logger))
	switch logger.Logger.GetLevel() {
	case zerolog.TraceLevel:
		hlog.SetLevel(hlog.LevelTrace)
	case zerolog.DebugLevel:
		hlog.SetLevel(hlog.LevelDebug)
	case zerolog.WarnLevel:
		hlog.SetLevel(hlog.LevelWarn)
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		hlog.SetLevel(hlog.LevelError)
	default:
		hlog.SetLevel(hlog.LevelInfo)
	}
}

func buildService(ctx context.Context, cfg *config.Config, st *storage.Storage) (*processor.ExtractionService, error) {
	dispatcher, err := parser.NewDispatcherFromConfig(ctx, cfg.Extractor, cfg.Tika)
	if err != nil {
		return nil, err
	}

	recognizer, err := nlp.NewRecognizer(cfg.NLP)
	if err != nil {
		return nil, err
	}

	opts := []extractor.Option{
		extractor.WithRecognizer(recognizer),
		extractor.WithMaxRecognizerInput(cfg.Extractor.MaxRecognizerInput),
	}
	if cfg.Extractor.VocabularyPath != "" {
		vocab, err := extractor.LoadVocabularyFile(cfg.Extractor.VocabularyPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, extractor.WithVocabulary(vocab))
		logger.Info().Str("path", cfg.Extractor.VocabularyPath).Msg("已加载自定义词表")
	}
	core := extractor.New(opts...)

	return processor.NewExtractionService(dispatcher, core, processor.WithStorage(st, cfg)), nil
}

// startBackground 启动抽取请求消费者与外发件箱 relay
func startBackground(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, st *storage.Storage, svc *processor.ExtractionService) {
	if st.MySQL != nil && st.RabbitMQ != nil {
		relay := outbox.NewMessageRelay(st.MySQL.DB(), st.RabbitMQ, cfg.Outbox)
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx)
		}()
	}

	if reason := asyncDisabledReason(cfg, st); reason != "" {
		logger.Warn().Str("reason", reason).Msg("异步抽取已禁用")
		return
	}

	done, err := st.RabbitMQ.StartConsumer(ctx, cfg.RabbitMQ.ExtractionQueue,
		cfg.RabbitMQ.PrefetchCount, cfg.RabbitMQ.ConsumerWorkers, svc.HandleDelivery)
	if err != nil {
		logger.Error().Err(err).Msg("启动抽取消费者失败")
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-done
	}()
}

// asyncDisabledReason 异步链路不可用的原因，可用时返回空串
func asyncDisabledReason(cfg *config.Config, st *storage.Storage) string {
	switch {
	case st.AsyncReady():
		return ""
	case !cfg.StorageEnabled():
		return "minio/mysql/rabbitmq 未全部启用"
	default:
		return "存储组件已启用但初始化失败"
	}
}

func newServer(cfg *config.Config) *server.Hertz {
	opts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxUploadMB << 20),
		server.WithExitWaitTime(time.Second),
	}

	if !cfg.Tracing.Enabled {
		return server.New(opts...)
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(append(opts, tracer)...)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	return h
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fx-sentiment/internal/bot"
	"fx-sentiment/internal/cache"
	"fx-sentiment/internal/config"
	"fx-sentiment/internal/handler"
	"fx-sentiment/internal/job"
	"fx-sentiment/internal/logging"
	"fx-sentiment/internal/mcpserver"
	"fx-sentiment/internal/provider"
	"fx-sentiment/internal/sentiment"
	"fx-sentiment/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "fx-sentiment/docs"
)

const (
	serviceName    = "fx-sentiment"
	serviceVersion = "1.0.0"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initLoggingFunc        = logging.Init
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newClockFunc           = clockwork.NewRealClock
	newLLMClientFunc       = provider.NewOpenAIClient
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           FX Sentiment API
// @version         1.0
// @description     Cached forex market sentiment fetched from an LLM provider, with retry, staleness and rate-limit handling.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	if err := loadEnvFunc(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}

	cfg := loadConfigFunc()
	initLoggingFunc(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, serviceName, serviceVersion)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Snapshot mirror is optional: the controller keeps serving from memory without it
	var publisher job.SnapshotPublisher
	if cfg.RedisURL != "" {
		client, err := initRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, snapshot mirror disabled", "err", err)
		} else {
			defer client.Close()
			publisher = cache.NewSnapshotStore(tracer, client, cfg.SnapshotTTL())
		}
	}

	clock := newClockFunc()
	llm := newLLMClientFunc(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMRequestTimeout())
	limiter := provider.NewPerMinuteLimiter(clock, cfg.LLMRateLimitPerMin)
	fetcher := provider.NewReportFetcher(tracer, llm, limiter, cfg.LLMModel, cfg.Instruments)

	controller := job.NewSentimentController(
		tracer, clock, fetcher, sentiment.NewExtractor(), bot.LogNotifier{}, publisher,
		job.ControllerConfig{
			Instruments:     cfg.Instruments,
			RefetchInterval: cfg.RefetchInterval(),
			StaleAfter:      cfg.StaleAfter(),
			MaxRetries:      cfg.MaxRetries,
			BaseBackoff:     cfg.BaseBackoff(),
			MaxBackoff:      cfg.MaxBackoff(),
		},
	)

	// Start Telegram bot; alerts go to the configured chat when there is one
	telegram, err := startTelegramBotFunc(cfg.TelegramBotToken, controller)
	if err != nil {
		log.Error("Telegram bot disabled", "err", err)
	}
	if telegram != nil {
		defer telegram.Stop()
		if cfg.TelegramAlertChatID != 0 {
			controller.SetNotifier(bot.NewTelegramNotifier(telegram, cfg.TelegramAlertChatID))
		}
	}

	controller.Start(ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, clock, controller)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(serviceName))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.MCPHTTPEnabled {
		mcpHandler := mcpserver.New(tracer, clock, controller, serviceVersion).HTTPHandler()
		r.Any("/mcp", gin.WrapH(mcpHandler))
		log.Info("MCP endpoint enabled", "path", "/mcp")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	startHTTPServer := startHTTPServerFunc
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := startHTTPServer(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	controller.Stop()
	select {
	case <-controller.Done():
	case <-time.After(5 * time.Second):
		log.Warn("sentiment controller did not stop in time")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "err", err)
	}

	log.Info("Server exiting")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iconidentify/vidtoot/internal/api"
	"github.com/iconidentify/vidtoot/internal/api/handler"
	"github.com/iconidentify/vidtoot/internal/config"
	"github.com/iconidentify/vidtoot/internal/downloader"
	"github.com/iconidentify/vidtoot/internal/enhancer"
	"github.com/iconidentify/vidtoot/internal/history"
	"github.com/iconidentify/vidtoot/internal/jobs"
	"github.com/iconidentify/vidtoot/internal/publisher"
	"github.com/iconidentify/vidtoot/internal/service"
	"github.com/iconidentify/vidtoot/internal/summary"
	"github.com/iconidentify/vidtoot/internal/transcript"
	"github.com/iconidentify/vidtoot/pkg/ffmpeg"
	"github.com/iconidentify/vidtoot/pkg/mastodon"
	"github.com/iconidentify/vidtoot/pkg/openrouter"
	"github.com/iconidentify/vidtoot/pkg/whisper"
	"github.com/iconidentify/vidtoot/pkg/ytdlp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vidtoot-server %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// .env files keep parity with compose deployments; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting vidtoot server",
		"version", Version,
		"build_time", BuildTime,
	)

	// Ensure the history root exists
	if err := os.MkdirAll(cfg.Storage.DataPath, 0755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// External tools
	ytdlpClient, err := ytdlp.NewClient()
	if err != nil {
		logger.Error("yt-dlp not available", "error", err)
		os.Exit(1)
	}
	ffmpegProc, err := ffmpeg.NewProcessor()
	if err != nil {
		logger.Error("ffmpeg not available", "error", err)
		os.Exit(1)
	}

	// Model gateway and optional speech transcription
	llm := openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.OpenRouter.APIKey,
		BaseURL: cfg.OpenRouter.BaseURL,
		Timeout: cfg.OpenRouter.Timeout,
	})

	var speech whisper.Client
	if cfg.Whisper.APIKey != "" {
		speech = whisper.NewClient(whisper.Config{
			APIKey:  cfg.Whisper.APIKey,
			BaseURL: cfg.Whisper.BaseURL,
			Model:   cfg.Whisper.Model,
			Timeout: cfg.Whisper.Timeout,
		})
	}

	// Publishing target; without credentials only dry runs can finish.
	var masto mastodon.Client
	if cfg.Mastodon.Configured() {
		masto = mastodon.NewClient(mastodon.Config{
			BaseURL:     cfg.Mastodon.BaseURL,
			AccessToken: cfg.Mastodon.AccessToken,
		})
	} else {
		logger.Warn("mastodon credentials not configured, only dry runs will succeed")
	}

	// Pipeline stages
	dl := downloader.NewYtDlpDownloader(ytdlpClient, ffmpegProc, logger)
	transcripts := transcript.NewResolver(ytdlpClient, ffmpegProc, speech, logger)
	frames := enhancer.New(ffmpegProc, llm, cfg.OpenRouter.EnhanceModel, cfg.Prompts.ImageAnalysis, logger)
	store := history.NewStore(cfg.Storage.DataPath, logger)
	contexts := history.NewContextBuilder(store, llm, cfg.OpenRouter.ContextModel, cfg.Prompts.Context, logger)
	summarizer := summary.New(llm, cfg.OpenRouter.Model, cfg.Prompts.System, cfg.Prompts.User, logger)
	pub := publisher.New(masto, cfg.Mastodon.MediaTimeout(), logger)

	pipeline := service.NewPipeline(
		dl,
		transcripts,
		frames,
		store,
		contexts,
		summarizer,
		ffmpegProc,
		pub,
		cfg.Transcode.Enabled,
		cfg.Transcode.Timeout(),
		logger,
	)

	manager := jobs.NewManager(pipeline, logger)

	// HTTP surface
	jobHandler := handler.NewJobHandler(manager, logger)
	healthHandler := handler.NewHealthHandler(manager, cfg.Storage.DataPath, Version)
	uiHandler := handler.NewUIHandler(Version)

	router := api.NewRouter(jobHandler, healthHandler, uiHandler, cfg.Server.User, cfg.Server.Password, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server",
			"addr", srv.Addr,
			"basic_auth", cfg.Server.BasicAuthEnabled(),
		)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Cancel in-flight pipeline runs and wait for their goroutines
	if err := manager.Close(ctx); err != nil {
		logger.Error("job manager shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newLogger builds the root logger from the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

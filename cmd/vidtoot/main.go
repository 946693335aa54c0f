package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iconidentify/vidtoot/internal/config"
	"github.com/iconidentify/vidtoot/internal/downloader"
	"github.com/iconidentify/vidtoot/internal/enhancer"
	"github.com/iconidentify/vidtoot/internal/history"
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
	enhance := flag.Bool("enhance", false, "Analyze video frames with the image model")
	dryRun := flag.Bool("dry-run", false, "Run the pipeline without posting to Mastodon")
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vidtoot %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vidtoot [flags] <video-url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	url := flag.Arg(0)

	// .env files keep parity with the server; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Results go to stdout, logs to stderr.
	logger := newLogger(cfg.Logging.Level)

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

	var masto mastodon.Client
	if cfg.Mastodon.Configured() {
		masto = mastodon.NewClient(mastodon.Config{
			BaseURL:     cfg.Mastodon.BaseURL,
			AccessToken: cfg.Mastodon.AccessToken,
		})
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, err := pipeline.Run(ctx, url, service.Options{Enhance: *enhance, DryRun: *dryRun}, func(stage string) {
		logger.Info(stage)
	})
	if err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Title:    %s\n", outcome.Title)
	fmt.Printf("Uploader: %s\n", outcome.Uploader)
	fmt.Printf("Platform: %s\n", outcome.Platform)
	fmt.Printf("Summary:  %s\n", outcome.Summary)
	if outcome.DryRun {
		fmt.Println("Dry run completed successfully")
	} else {
		fmt.Printf("Posted:   %s\n", outcome.StatusURL)
	}
}

// newLogger builds a stderr text logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

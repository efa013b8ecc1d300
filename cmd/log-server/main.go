package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/StarsWhere/log-server/internal/api"
	"github.com/StarsWhere/log-server/internal/config"
	"github.com/StarsWhere/log-server/internal/database"
	"github.com/StarsWhere/log-server/internal/logfile"
	"github.com/StarsWhere/log-server/internal/repository"
	"github.com/StarsWhere/log-server/internal/response"
	"github.com/StarsWhere/log-server/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg           *config.Config
	bestEffortLog bool
)

func main() {
	cfg = config.Load()

	rootCmd := &cobra.Command{
		Use:   "log-server",
		Short: "Diagnostic HTTP sink that records every request",
		Long: `log-server accepts arbitrary HTTP requests on any method and path,
answers every one with a fixed response body loaded from a file at
startup, and appends each request's full content to a log file,
including ready-to-run curl, httpie and python-requests replay commands.

Examples:
  # Serve the contents of ok.json for every request, log to requests.log
  log-server --response-file ok.json

  # Bind elsewhere, wipe the old log first
  log-server --host 127.0.0.1 --port 8080 --response-file ok.json --clear-log

  # Binary response with an explicit content type
  log-server --response-file blob.bin --content-type application/octet-stream

  # Keep a queryable SQLite index of captures alongside the text log
  log-server --response-file ok.json --index-db captures.db`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}

	f := rootCmd.Flags()
	f.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Bind host")
	f.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "Bind port")
	f.StringVar(&cfg.Server.LogLevel, "log-level", cfg.Server.LogLevel, "Operational log level: debug, info, warn, error")
	f.StringVar(&cfg.Response.File, "response-file", cfg.Response.File, "File whose contents are returned for every request (read once at startup)")
	f.StringVar(&cfg.Response.ContentType, "content-type", cfg.Response.ContentType, "Content-Type for responses (default: detected from the response file)")
	f.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "Path to append request capture blocks")
	f.BoolVar(&cfg.Log.Clear, "clear-log", cfg.Log.Clear, "Truncate the capture log at startup")
	f.BoolVar(&cfg.Log.Echo, "echo", cfg.Log.Echo, "Mirror capture blocks to stdout")
	f.BoolVar(&bestEffortLog, "best-effort-log", !cfg.Log.FailFast, "Keep serving when a capture log append fails (default: fail fast)")
	f.IntVar(&cfg.Log.MaxSizeMB, "log-max-size-mb", cfg.Log.MaxSizeMB, "Rotate the capture log above this size (0 disables rotation)")
	f.IntVar(&cfg.Log.MaxBackups, "log-max-backups", cfg.Log.MaxBackups, "Rotated capture logs to retain")
	f.IntVar(&cfg.Log.MaxAgeDays, "log-max-age-days", cfg.Log.MaxAgeDays, "Days to retain rotated capture logs")
	f.BoolVar(&cfg.Log.Compress, "log-compress", cfg.Log.Compress, "Gzip rotated capture logs")
	f.StringVar(&cfg.Index.Path, "index-db", cfg.Index.Path, "Optional SQLite capture index path (empty disables)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg.Log.FailFast = !bestEffortLog
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	// Load the fixed response before anything can accept a connection.
	cache, err := response.Load(cfg.Response.File, cfg.Response.ContentType)
	if err != nil {
		return fmt.Errorf("load response: %w", err)
	}

	writerOpts := logfile.Options{
		Path:       cfg.Log.File,
		Truncate:   cfg.Log.Clear,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	if cfg.Log.Echo {
		writerOpts.Echo = os.Stdout
	}
	writer, err := logfile.Open(writerOpts)
	if err != nil {
		return fmt.Errorf("open capture log: %w", err)
	}
	defer writer.Close()

	var index *repository.CaptureRepository
	if cfg.Index.Path != "" {
		db, err := database.New(cfg.Index.Path)
		if err != nil {
			return fmt.Errorf("init capture index: %w", err)
		}
		defer db.Close()
		index = repository.NewCaptureRepository(db, logger)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := api.NewServer(api.ServerDeps{
		Cache:        cache,
		Writer:       writer,
		Index:        index,
		FallbackHost: addr,
		FailFast:     cfg.Log.FailFast,
		Logger:       logger,
	})

	responsePath, _ := filepath.Abs(cfg.Response.File)
	logger.Info("starting log-server",
		zap.String("version", version.Short()),
		zap.String("addr", addr),
		zap.String("response_file", responsePath),
		zap.String("content_type", cache.ContentType),
		zap.String("log_file", cfg.Log.File),
		zap.Bool("fail_fast", cfg.Log.FailFast),
	)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     server,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", addr))

	// Wait for shutdown signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newLogger builds the operational console logger. The capture log has
// its own writer and format; zap never touches it.
func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug", "DEBUG":
		zapLevel = zap.DebugLevel
	case "warn", "WARN":
		zapLevel = zap.WarnLevel
	case "error", "ERROR":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	// stdout for DEBUG/INFO, stderr for WARN/ERROR+
	stdoutCore := zapcore.NewCore(
		encoder,
		zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l < zapcore.WarnLevel
		}),
	)
	stderrCore := zapcore.NewCore(
		encoder,
		zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l >= zapcore.WarnLevel
		}),
	)

	core := zapcore.NewTee(stdoutCore, stderrCore)

	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel)), nil
}

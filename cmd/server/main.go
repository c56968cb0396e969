// Command server runs the adminguard console.
//
// Configuration is read from a YAML file (--config, ADMINGUARD_CONFIG,
// ./config.yaml or /etc/adminguard/config.yaml) with ADMINGUARD_*
// environment overrides, for example:
//
//	ADMINGUARD_PORT              - Listen port (default: 8080)
//	ADMINGUARD_REMEMBER_ME_KEY   - Remember-me signing key (required, >= 16 bytes)
//	ADMINGUARD_DIRECTORY_FILE    - users.properties path (default: users.properties)
//	ADMINGUARD_DEBUG             - Debug categories (pipeline,auth,session,...,all)
//	ADMINGUARD_LOG_LEVEL         - ERROR, WARN, INFO, DEBUG or TRACE
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rhuss/adminguard/pkg/config"
	"github.com/rhuss/adminguard/pkg/console"
	"github.com/rhuss/adminguard/pkg/debug"
	"github.com/rhuss/adminguard/pkg/security"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if unknown := debug.Init(cfg.Logging.Debug, cfg.Logging.Level); len(unknown) > 0 {
		slog.Warn("unknown debug categories", "categories", unknown, "known", debug.Known)
	}
	if cats := debug.Categories(); len(cats) > 0 {
		slog.Info("debug logging enabled", "categories", cats)
	}

	// The directory is loaded once; a broken directory is fatal.
	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dir, err := security.LoadDirectory(loadCtx, cfg.Directory)
	cancel()
	if err != nil {
		return fmt.Errorf("loading user directory: %w", err)
	}

	sec, err := security.New(security.FromConfig(cfg, dir))
	if err != nil {
		return err
	}

	handler := console.NewRouter(console.Options{
		Security:  cfg.Security,
		Metrics:   cfg.Observability.Metrics,
		StaticDir: cfg.Server.StaticDir,
		Pipeline:  sec.Middleware(),
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"port", cfg.Server.Port,
			"directory", cfg.Directory.Source,
			"metrics", cfg.Observability.Metrics.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

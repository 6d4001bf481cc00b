// Command reportd serves report assembly over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/config"
	"github.com/wudi/reportkit/observability"
	"github.com/wudi/reportkit/report"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "reportd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
	}
	logger, err := observability.BuildZap(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	fetcher := assets.NewRouter(cfg.Assets.BaseDir,
		assets.WithClient(&http.Client{Timeout: cfg.Assets.HTTPTimeout}),
		assets.WithMaxBytes(cfg.Assets.MaxBytes))
	opts := append(report.FromConfig(cfg), report.WithLogger(observability.NewZap(logger)))
	a, err := report.New(fetcher, opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      (&server{assembler: a, maxBody: cfg.Server.MaxBodyBytes, logger: logger}).routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	appLog "schedcal/internal/log"
	"schedcal/internal/spool"
	"schedcal/internal/web"
)

const shutdownTimeout = 10 * time.Second

var listenFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload UI and HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "HTTP listen address (overrides config if set)")
}

func runServe(_ *cobra.Command, _ []string) error {
	appLog.Info("schedcal starting", "version", version)

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	// CLI --listen overrides config file listen if provided.
	if listenFlag != "" {
		conf.Listen = listenFlag
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"log_level", conf.LogLevel,
		"concurrency", conf.Concurrency,
		"ai_provider", conf.AI.Provider,
		"ai_model", conf.AI.Model,
		"ai_enabled", conf.AI.Enabled(),
		"spool_dir", conf.Upload.SpoolDir,
		"sweep", conf.Upload.Sweep,
	)

	ctx, cancel := signalContext()
	defer cancel()

	orch, err := newOrchestrator(ctx, conf)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}

	sp, err := spool.New(conf.Upload.SpoolDir)
	if err != nil {
		return err
	}
	maxAge := time.Duration(conf.Upload.MaxAgeMinutes) * time.Minute
	if err := sp.StartSweeper(ctx, conf.Upload.Sweep, maxAge); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(conf, orch, sp).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http shutdown failed", err)
	}

	appLog.Info("schedcal exiting")
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"schedcal/internal/ai"
	"schedcal/internal/config"
	"schedcal/internal/extract"
	appLog "schedcal/internal/log"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "schedcal",
	Short:         "Extract dated course items from outlines and export them as a calendar",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
	rootCmd.AddCommand(serveCmd, extractCmd)
}

func main() {
	defer appLog.Sync()

	if err := rootCmd.Execute(); err != nil {
		appLog.Error("schedcal failed", err)
		appLog.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the config file, overlays the environment and applies
// the log level.
func loadConfig() (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		if conf == nil {
			return nil, err
		}
	}
	conf.ApplyEnv(os.Getenv)
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	return conf, nil
}

// newOrchestrator builds the extractor for conf. Without an API key every
// document goes to the heuristic extractor.
func newOrchestrator(ctx context.Context, conf *config.Config) (*extract.Orchestrator, error) {
	completer, err := ai.NewFromConfig(ctx, conf.AI)
	if err != nil {
		return nil, err
	}
	if completer == nil {
		appLog.Info("no AI key configured, using heuristic extractor")
	}
	return extract.New(completer,
		extract.WithModel(conf.AI.Model),
		extract.WithConcurrency(conf.Concurrency),
	), nil
}

// signalContext is canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

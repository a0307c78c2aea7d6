// Package main runs the issuesmith Temporal worker.
//
// The worker hosts the fix-issue workflow and its activities: it listens on
// the configured task queue, clones repositories, generates fixes, and opens
// pull requests on behalf of submitted runs.
//
// Usage:
//
//	ISSUESMITH_GITHUB_TOKEN=ghp_xxx \
//	ISSUESMITH_TEMPORAL_HOST_PORT=localhost:7233 \
//	./issuesmith-worker
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuesmith/internal/config"
	"github.com/fyrsmithlabs/issuesmith/internal/fixgen"
	"github.com/fyrsmithlabs/issuesmith/internal/logging"
	"github.com/fyrsmithlabs/issuesmith/internal/workflows"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default ~/.config/issuesmith/config.yaml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "issuesmith worker starting",
		zap.String("temporal_host", cfg.Temporal.HostPort),
		zap.String("namespace", cfg.Temporal.Namespace),
		zap.String("task_queue", cfg.Temporal.TaskQueue),
	)

	if !cfg.GitHub.Token.IsSet() {
		return fmt.Errorf("github.token not set (ISSUESMITH_GITHUB_TOKEN)")
	}

	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing fix generator: %w", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	logger.Info(ctx, "temporal client connected", zap.String("host", cfg.Temporal.HostPort))

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.FixIssueWorkflow)
	w.RegisterActivity(workflows.NewActivities(cfg, gen))

	workerErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "worker starting")
		workerErrors <- w.Run(worker.InterruptCh())
	}()

	select {
	case err := <-workerErrors:
		if err != nil {
			return fmt.Errorf("worker error: %w", err)
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	logger.Info(ctx, "worker stopped gracefully")
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	logCfg.Format = cfg.Logging.Format
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	return logging.NewLogger(logCfg, nil)
}

// newGenerator picks the fix generator: the Anthropic-backed one when an API
// key is configured, otherwise the deterministic append fallback.
func newGenerator(ctx context.Context, cfg *config.Config, logger *logging.Logger) (fixgen.Generator, error) {
	if cfg.Anthropic.APIKey.IsSet() {
		logger.Info(ctx, "using model-backed fix generator", zap.String("model", cfg.Anthropic.Model))
		return fixgen.NewModelGenerator(cfg.Anthropic.APIKey.Value(), cfg.Anthropic.Model)
	}
	logger.Warn(ctx, "anthropic.api_key not set, using append fallback generator")
	return fixgen.NewAppendGenerator(), nil
}

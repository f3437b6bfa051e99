package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/handle-probe/internal/app"
	"github.com/Adda-Baaj/handle-probe/internal/config"
	"github.com/Adda-Baaj/handle-probe/internal/logger"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "examples start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := twitter.New(cfg.Credentials(), twitter.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("init twitter client: %w", err)
	}

	if err := app.NewExamples(client, nil, log).Run(ctx, os.Stdout); err != nil {
		return fmt.Errorf("examples run: %w", err)
	}
	return nil
}

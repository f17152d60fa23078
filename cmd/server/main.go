package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/iudanet/carelink/internal/server"
	"github.com/iudanet/carelink/internal/server/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := config.Flags()
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// Show version and exit if requested
	if v, _ := fs.GetBool("version"); v {
		printVersion()
		return nil
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger.InfoContext(ctx, "CareLink dev backend starting",
		slog.String("version", Version),
		slog.String("addr", cfg.Addr),
		slog.String("db", cfg.DBPath),
		slog.Bool("rotate_refresh", cfg.Rotate))

	app, err := server.NewApp(ctx, cfg, logger, Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close app", slog.Any("error", err))
		}
	}()

	return app.Run(ctx)
}

func printVersion() {
	fmt.Printf("CareLink Dev Backend\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

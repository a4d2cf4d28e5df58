package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/csvdesk/csvdesk/internal/buildinfo"
	"github.com/csvdesk/csvdesk/internal/client/cli"
	"github.com/csvdesk/csvdesk/internal/client/config"
	"github.com/csvdesk/csvdesk/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app := cli.NewApp(ctx, cfg, log)
	app.Run(ctx)
}

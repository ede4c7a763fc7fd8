// xmrestore — restore captured xMatters instance data to a live instance.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xmatters/xm-labs-restore-instance-data/cmd"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/config"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/exitcode"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

// Build information (set by ldflags)
var (
	version   = "1.0.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Cancel on interrupt so a partial run still reports what it did
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.New()
	cfg.Version = version
	cfg.BuildTime = buildTime
	cfg.GitCommit = gitCommit

	// Console logger for startup; commands switch to the run's file logger
	log := logger.New(cfg.LogLevel(), cfg.LogFormat)

	if err := cmd.Execute(ctx, cfg, log); err != nil {
		log.Error("Restore failed", "error", err)
		os.Exit(exitcode.ForError(err))
	}
}

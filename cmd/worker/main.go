package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/boxdesk/boxdesk/internal/bootstrap"
	"github.com/boxdesk/boxdesk/internal/infrastructure/database"
	"github.com/boxdesk/boxdesk/internal/infrastructure/scheduler"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/cliutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse environment from command line or env variable
	flags := cliutil.Flags{Env: "development"}
	if len(os.Args) > 1 {
		flags.Env = os.Args[1]
	}
	if len(os.Args) > 2 {
		flags.ConfigPath = os.Args[2]
	}

	cfg, log, err := flags.LoadWithDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	log = log.Named("worker")
	log.Infow("starting delinquency sweep worker", "environment", flags.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := bootstrap.NewBilling(ctx, database.Get(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	sweeper, err := scheduler.NewSweepScheduler(b.UseCases.Sweep, cfg.Billing.SweepCron, log)
	if err != nil {
		return err
	}

	// Catch up on a day missed while the worker was down.
	log.Infow("running initial delinquency sweep")
	if _, err := sweeper.RunOnce(ctx); err != nil {
		log.Errorw("initial delinquency sweep failed", "error", err)
	}

	sweeper.Start(ctx)
	<-ctx.Done()

	log.Infow("received signal, shutting down")
	sweeper.Stop()
	log.Infow("delinquency sweep worker stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/praio-service/internal/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Usage:
//
//	worker                  run ingestion and aggregation on their schedules
//	worker once             run one ingestion cycle and one aggregation pass, then exit
//	worker rate CODE...     recompute the ratings of the given points, then exit
func main() {
	run := fx.Invoke(startWorkers)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "once":
			run = fx.Invoke(runOnce)
		case "rate":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: worker rate CODE...")
				os.Exit(2)
			}
			run = fx.Invoke(runRate(os.Args[2:]))
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
			os.Exit(2)
		}
	}

	app := fx.New(
		fx.Provide(
			config.Load,
			ProvideLogger,
			ProvideVoteRepository,
			ProvideRegistry,
			ProvideSnapshots,
			ProvideForecast,
			ProvideReadings,
			ProvideBulletin,
			ProvideCompliance,
			ProvideNotifier,
			ProvideIngestion,
			ProvideAggregation,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		run,
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		if startCtx.Err() == context.DeadlineExceeded {
			fmt.Fprintln(os.Stderr, "worker did not start within 30s, check that the vote store and Redis are reachable")
		}
		fmt.Fprintln(os.Stderr, "failed to start worker:", err)
		os.Exit(1)
	}

	// SIGINT, SIGTERM or a Shutdowner call from once or rate mode
	signal := <-app.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "error stopping worker:", err)
	}

	os.Exit(signal.ExitCode)
}

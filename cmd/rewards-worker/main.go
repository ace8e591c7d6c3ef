package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"rewards/internal/amqp"
	"rewards/internal/cli"
	applog "rewards/internal/log"
	"rewards/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting rewards-worker", applog.FieldOperation, applog.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		amqp.WithPrefetch(cfg.WorkerPrefetch))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	pointsWorker := worker.NewPointsWorker(logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeTransactionRecorded(gctx, pointsWorker.HandleTransactionRecorded)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.WorkerStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				pointsWorker.LogStats(context.Background())
				return nil
			case <-ticker.C:
				pointsWorker.LogStats(gctx)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

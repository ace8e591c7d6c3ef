package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"rewards/internal/amqp"
	"rewards/internal/cli"
	apphttp "rewards/internal/http"
	applog "rewards/internal/log"
	"rewards/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	result, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	// Publishing is optional. The interface must stay nil, not hold a nil
	// *amqp.Client, when AMQP is disabled.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(result.Store, result.Store, publisher, logger)
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Ledger close failed", applog.FieldError, err)
		}
	}()
	rewards := services.NewRewardService(result.Store, logger)

	srv := apphttp.NewServer(cfg.Addr(), ledger, rewards, result.Store, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting rewards server", applog.FieldOperation, applog.OpStartup,
			"addr", cfg.Addr(), "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "addr", cfg.Addr())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"urenlogger/internal/amqp"
	"urenlogger/internal/cli"
	"urenlogger/internal/config"
	"urenlogger/internal/log"
	"urenlogger/internal/worker"
)

func requireAMQP(c *config.Config) error {
	if !c.AMQPEnabled() {
		return fmt.Errorf("missing required environment variables: AMQP_URL")
	}
	return nil
}

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting report-worker")

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateMail, requireAMQP)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)

	store := cli.InitStore(ctx, logger.Logger, cfg)
	defer store.Cleanup()

	session := cli.InitDiscordSession(logger.Logger, cfg)
	reports, err := cli.NewReportService(ctx, logger.Logger, cfg, store.Store, session)
	if err != nil {
		logger.Error("Failed to initialize report service", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportWorker := worker.NewReportWorker(reports, store.Store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeReportRequests(gctx, reportWorker.HandleReportRequest)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}

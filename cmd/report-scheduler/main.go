package main

import (
	"context"
	"os"
	"time"

	"urenlogger/internal/amqp"
	"urenlogger/internal/cli"
	"urenlogger/internal/config"
	"urenlogger/internal/log"
	"urenlogger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentScheduler)
	logger.Info("Starting report-scheduler")

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateMail)

	var scheduler *services.ReportScheduler
	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if scheduler == nil {
			return
		}
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Failed to stop scheduler", "error", err)
		}
	})

	store := cli.InitStore(ctx, logger.Logger, cfg)
	defer store.Cleanup()

	session := cli.InitDiscordSession(logger.Logger, cfg)
	reports, err := cli.NewReportService(ctx, logger.Logger, cfg, store.Store, session)
	if err != nil {
		logger.Error("Failed to initialize report service", "error", err)
		os.Exit(1)
	}

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, reports are sent inline", "error", err)
		} else {
			defer amqpClient.Close()
			reports.WithPublisher(amqpClient)
		}
	}

	scheduler = services.NewReportScheduler(reports, store.Store, services.ReportSchedulerConfig{
		CheckInterval: cfg.ReportCheckInterval,
		RetryAfter:    cfg.ReportRetryAfter,
	})
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	logger.Info("Scheduler running", "check_interval", cfg.ReportCheckInterval, "timezone", cfg.Timezone)

	cli.WaitForShutdown(ctx, done)
}

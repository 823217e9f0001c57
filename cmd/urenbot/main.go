package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"urenlogger/internal/amqp"
	"urenlogger/internal/cli"
	"urenlogger/internal/config"
	"urenlogger/internal/discord"
	apphttp "urenlogger/internal/http"
	"urenlogger/internal/log"
	"urenlogger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	logger.Info("Starting urenbot")

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateInteractions)
	loc := cli.MustLocation(logger.Logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cli.InitStore(ctx, logger.Logger, cfg)
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	session := cli.InitDiscordSession(logger.Logger, cfg)
	publicKey, err := cfg.PublicKey()
	if err != nil {
		logger.Error("Invalid Discord public key", "error", err)
		os.Exit(1)
	}

	hours := services.NewHoursService(store.Store, loc)

	deps := apphttp.Deps{
		Commands:  discord.NewDispatcher(hours),
		Responder: discord.NewResponder(session),
		Logger:    logger,
	}
	if p, ok := store.Store.(apphttp.Pinger); ok {
		deps.Health = p
	}

	// The cron endpoint needs mail settings; without them it answers 503.
	var amqpClient *amqp.Client
	if err := cfg.ValidateMail(); err != nil {
		logger.Warn("Monthly report endpoint disabled", "error", err)
	} else {
		reports, err := cli.NewReportService(ctx, logger.Logger, cfg, store.Store, session)
		if err != nil {
			logger.Error("Failed to initialize report service", "error", err)
			os.Exit(1)
		}
		if cfg.AMQPEnabled() {
			amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				logger.Warn("Failed to initialize AMQP client, reports are sent inline", "error", err)
			} else {
				reports.WithPublisher(amqpClient)
				logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			}
		}
		deps.Reports = reports
	}
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		PublicKey:      publicKey,
		CronSecret:     cfg.CronSecret,
		CommandTimeout: cfg.CommandTimeout,
		TrustedProxies: cfg.TrustedProxies,
	}, deps)
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend, "reports", deps.Reports != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

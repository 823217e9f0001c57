// Package cli provides common CLI initialization utilities shared by
// cmd/urenbot, cmd/report-worker, cmd/report-scheduler and cmd/urenctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"urenlogger/internal/backend"
	"urenlogger/internal/config"
	"urenlogger/internal/discord"
	"urenlogger/internal/log"
	"urenlogger/internal/logstore"
	"urenlogger/internal/mail"
	"urenlogger/internal/services"
	gsheet "urenlogger/internal/sheets/google"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL and
// installs it as the default logger.
func SetupLogger(level, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// ConfigCheck is a binary-specific requirement such as
// (*config.Config).ValidateMail.
type ConfigCheck func(*config.Config) error

// LoadConfig loads configuration and runs the shared and extra checks.
func LoadConfig(checks ...ConfigCheck) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadAndValidateConfig is LoadConfig that exits the process on failure.
func LoadAndValidateConfig(logger *slog.Logger, checks ...ConfigCheck) *config.Config {
	cfg, err := LoadConfig(checks...)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// MustLocation resolves TIMEZONE or exits.
func MustLocation(logger *slog.Logger, cfg *config.Config) *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", "error", err)
		os.Exit(1)
	}
	return loc
}

// InitStore creates the configured log store.
// Returns the store or exits the process on failure.
func InitStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	return res
}

// InitDiscordSession opens a REST session when a bot token is configured.
func InitDiscordSession(logger *slog.Logger, cfg *config.Config) *discordgo.Session {
	if cfg.DiscordBotToken == "" {
		return nil
	}
	s, err := discord.NewSession(cfg.DiscordBotToken)
	if err != nil {
		logger.Error("Failed to create Discord session", "error", err)
		os.Exit(1)
	}
	return s
}

// NewReportService builds the report pipeline: SMTP delivery plus the
// optional Sheets export and Discord notices. session may be nil.
func NewReportService(ctx context.Context, logger *slog.Logger, cfg *config.Config, store logstore.Store, session *discordgo.Session) (*services.ReportService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	mailer, err := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		Timeout:  cfg.MailTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	reports := services.NewReportService(store, mailer, services.ReportConfig{
		From:      cfg.FromEmail,
		BossEmail: cfg.BossEmail,
	}, loc)

	if cfg.SheetsEnabled() {
		exporter, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleReportSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			// Export is best effort; the mail still goes out.
			logger.WarnContext(ctx, "Sheets export disabled", "error", err)
		} else {
			reports.WithExporter(exporter)
		}
	}

	if session != nil && cfg.LogChannelID != "" {
		reports.WithNotifier(discord.NewChannelNotifier(session, cfg.LogChannelID))
	}

	return reports, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

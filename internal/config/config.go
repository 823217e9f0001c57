package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	// HTTP Server
	Port           string
	TrustedProxies []string
	CommandTimeout time.Duration

	// Database
	DataBackend   string
	SQLiteDBPath  string
	DataDirectory string

	// AMQP (optional; reports are sent inline without it)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Discord
	DiscordBotToken      string
	DiscordApplicationID string
	DiscordPublicKey     string
	DiscordGuildID       string
	LogChannelID         string

	// Mail
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	FromEmail   string
	BossEmail   string
	CronSecret  string
	Timezone    string
	MailTimeout time.Duration

	// Scheduler
	ReportCheckInterval time.Duration
	ReportRetryAfter    time.Duration

	// Google Sheets report export (optional)
	GoogleSpreadsheetID      string
	GoogleReportSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		CommandTimeout: getEnvDuration("COMMAND_TIMEOUT", 30*time.Second),

		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/urenlogger.db"),
		DataDirectory: getEnv("DATA_DIRECTORY", "data"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "urenlogger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_requests"),

		DiscordBotToken:      getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordApplicationID: getEnv("DISCORD_APPLICATION_ID", ""),
		DiscordPublicKey:     getEnv("DISCORD_PUBLIC_KEY", ""),
		DiscordGuildID:       getEnv("DISCORD_GUILD_ID", ""),
		LogChannelID:         getEnv("LOG_CHANNEL_ID", ""),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnvInt("SMTP_PORT", 587),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		FromEmail:   getEnv("YOUR_EMAIL_ADDRESS", ""),
		BossEmail:   getEnv("BOSS_EMAIL", ""),
		CronSecret:  getEnv("CRON_SECRET", ""),
		Timezone:    getEnv("TIMEZONE", "Europe/Amsterdam"),
		MailTimeout: getEnvDuration("SMTP_TIMEOUT", 30*time.Second),

		ReportCheckInterval: getEnvDuration("REPORT_CHECK_INTERVAL", time.Hour),
		ReportRetryAfter:    getEnvDuration("REPORT_RETRY_AFTER", 6*time.Hour),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleReportSheetName:    getEnv("GOOGLE_REPORT_SHEET_NAME", "Uren"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate checks settings that every binary shares. Requirements of a
// single binary are checked by ValidateInteractions, ValidateCommands and
// ValidateMail.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.DiscordPublicKey != "" {
		if _, err := c.PublicKey(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTPPort))
	}
	for name, addr := range map[string]string{"YOUR_EMAIL_ADDRESS": c.FromEmail, "BOSS_EMAIL": c.BossEmail} {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", name, addr, err))
		}
	}

	if c.ReportCheckInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid report check interval %v: must be at least 1 minute", c.ReportCheckInterval))
	} else if c.ReportCheckInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report check interval %v: must be at most 24 hours", c.ReportCheckInterval))
	}
	if c.ReportRetryAfter < c.ReportCheckInterval {
		errors = append(errors, fmt.Sprintf("invalid report retry %v: must be at least the check interval %v", c.ReportRetryAfter, c.ReportCheckInterval))
	}
	if c.CommandTimeout < time.Second || c.CommandTimeout > 15*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid command timeout %v: must be between 1 second and 15 minutes", c.CommandTimeout))
	}

	if c.GoogleSpreadsheetID != "" {
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided when GOOGLE_SPREADSHEET_ID is set")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateInteractions checks what the interactions endpoint needs.
func (c *Config) ValidateInteractions() error {
	return requireVars(map[string]string{
		"DISCORD_PUBLIC_KEY":     c.DiscordPublicKey,
		"DISCORD_BOT_TOKEN":      c.DiscordBotToken,
		"DISCORD_APPLICATION_ID": c.DiscordApplicationID,
	})
}

// ValidateCommands checks what slash command registration needs.
func (c *Config) ValidateCommands() error {
	return requireVars(map[string]string{
		"DISCORD_BOT_TOKEN":      c.DiscordBotToken,
		"DISCORD_APPLICATION_ID": c.DiscordApplicationID,
	})
}

// ValidateMail checks what report delivery needs.
func (c *Config) ValidateMail() error {
	return requireVars(map[string]string{
		"SMTP_HOST":          c.SMTPHost,
		"SMTP_USER":          c.SMTPUser,
		"SMTP_PASS":          c.SMTPPass,
		"YOUR_EMAIL_ADDRESS": c.FromEmail,
		"BOSS_EMAIL":         c.BossEmail,
	})
}

func requireVars(vars map[string]string) error {
	var missing []string
	for name, value := range vars {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}

// Location returns the configured time zone; "today" is computed in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PublicKey decodes DISCORD_PUBLIC_KEY.
func (c *Config) PublicKey() (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(c.DiscordPublicKey))
	if err != nil {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: want %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

func (c *Config) AMQPEnabled() bool   { return c.AMQPURL != "" }
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// NotifyEnabled reports whether report notices can be posted to Discord.
func (c *Config) NotifyEnabled() bool {
	return c.LogChannelID != "" && c.DiscordBotToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"urenlogger/internal/cli"
	"urenlogger/internal/config"
	"urenlogger/internal/log"
)

var (
	logLevel string
	nowFunc  = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "urenctl",
	Short: "Admin tool for the urenlogger Discord bot",
	Long: `urenctl registers the slash commands, sends monthly and test reports
by hand and helps debugging date expressions and billing periods.
Settings are read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
		cli.SetupLogger(logLevel, log.ComponentCLI)
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "Log level: debug, info, warn, error")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(sendReportCmd)
	rootCmd.AddCommand(testEmailCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(parseDateCmd)
	rootCmd.AddCommand(periodCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig loads and validates the environment for one command.
func loadConfig(checks ...cli.ConfigCheck) (*config.Config, *time.Location, error) {
	cfg, err := cli.LoadConfig(checks...)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loc, nil
}

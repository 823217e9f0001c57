package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"urenlogger/internal/amqp"
	"urenlogger/internal/cli"
	"urenlogger/internal/config"
	"urenlogger/internal/dates"
	"urenlogger/internal/i18n"
	"urenlogger/internal/report"
	"urenlogger/internal/services"
)

var (
	reportMonth string
	reportQueue bool
	previewHTML bool
)

var sendReportCmd = &cobra.Command{
	Use:   "send-report",
	Short: "Send the monthly report now",
	Long: `Sends the report for the period ending on the 21st of the current
month, or for the period starting in --month. With --queue the request
is published to AMQP for the report worker instead.`,
	Args: cobra.NoArgs,
	RunE: runSendReport,
}

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Mail a test report to the supervisor only",
	Long: `Mails the current period up to today to BOSS_EMAIL without CC and
then removes entries whose description starts with TEST.`,
	Args: cobra.NoArgs,
	RunE: runTestEmail,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print a report without sending it",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	sendReportCmd.Flags().StringVar(&reportMonth, "month", "", `Period start month, e.g. "sep 2025"`)
	sendReportCmd.Flags().BoolVar(&reportQueue, "queue", false, "Publish the request to AMQP")
	previewCmd.Flags().StringVar(&reportMonth, "month", "", `Period start month, e.g. "sep 2025"`)
	previewCmd.Flags().BoolVar(&previewHTML, "html", false, "Print the HTML body instead of plain text")
}

func reportPeriod(svc *services.ReportService) (dates.Period, error) {
	if reportMonth == "" {
		return svc.MonthlyPeriod(), nil
	}
	p, ok := dates.PeriodForMonth(reportMonth, nowFunc())
	if !ok {
		return dates.Period{}, fmt.Errorf("%s", i18n.UrenInvalidMonth(reportMonth))
	}
	return p, nil
}

func runSendReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, _, err := loadConfig((*config.Config).ValidateMail)
	if err != nil {
		return err
	}

	store := cli.InitStore(ctx, slog.Default(), cfg)
	defer store.Cleanup()

	reports, err := cli.NewReportService(ctx, slog.Default(), cfg, store.Store, cli.InitDiscordSession(slog.Default(), cfg))
	if err != nil {
		return err
	}
	period, err := reportPeriod(reports)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportQueue {
		if !cfg.AMQPEnabled() {
			return fmt.Errorf("--queue needs AMQP_URL")
		}
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()
		reports.WithPublisher(client)
		queued, err := reports.RequestReport(ctx, period, "urenctl")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Report for %s requested (queued=%v)\n", period.Label, queued)
		return nil
	}

	outcome, err := reports.SendReport(ctx, amqp.KindMonthly, period)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sent %q to %d recipients: %s over %d users\n",
		outcome.Subject, outcome.Recipients, i18n.Hours(outcome.TotalHours), outcome.TotalUsers)
	if outcome.SheetRef != "" {
		fmt.Fprintf(out, "Exported to %s\n", outcome.SheetRef)
	}
	return nil
}

func runTestEmail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, _, err := loadConfig((*config.Config).ValidateMail)
	if err != nil {
		return err
	}

	store := cli.InitStore(ctx, slog.Default(), cfg)
	defer store.Cleanup()

	reports, err := cli.NewReportService(ctx, slog.Default(), cfg, store.Store, nil)
	if err != nil {
		return err
	}
	outcome, err := reports.SendTestReport(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %q to %s, removed %d test entries\n",
		outcome.Subject, cfg.BossEmail, outcome.Removed)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, loc, err := loadConfig()
	if err != nil {
		return err
	}

	store := cli.InitStore(ctx, slog.Default(), cfg)
	defer store.Cleanup()

	now := nowFunc().In(loc)
	period := dates.PreviousPeriod(now)
	if reportMonth != "" {
		p, ok := dates.PeriodForMonth(reportMonth, now)
		if !ok {
			return fmt.Errorf("%s", i18n.UrenInvalidMonth(reportMonth))
		}
		period = p
	}

	entries, err := store.Store.EntriesByRange(ctx, period.StartKey(), period.EndKey())
	if err != nil {
		return err
	}
	r := report.Build(period, entries, now)

	out := cmd.OutOrStdout()
	if previewHTML {
		body, err := report.RenderHTML(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, body)
		return nil
	}
	fmt.Fprintln(out, services.MonthlySubject(period))
	fmt.Fprintln(out)
	fmt.Fprint(out, report.RenderPlainText(r))
	return nil
}

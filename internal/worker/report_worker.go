package worker

import (
	"context"
	"fmt"
	"log/slog"

	"urenlogger/internal/amqp"
	"urenlogger/internal/dates"
	"urenlogger/internal/logstore"
	"urenlogger/internal/services"
)

// ReportSender builds and mails the report for a period.
type ReportSender interface {
	SendReport(ctx context.Context, kind string, period dates.Period) (services.ReportOutcome, error)
}

// ReportWorker handles report requests consumed from AMQP
type ReportWorker struct {
	reports ReportSender
	runs    logstore.RunRecorder
}

func NewReportWorker(reports ReportSender, runs logstore.RunRecorder) *ReportWorker {
	return &ReportWorker{
		reports: reports,
		runs:    runs,
	}
}

// HandleReportRequest processes a single report request. Monthly requests
// for a period that already has a recorded run are acknowledged without
// sending again.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	slog.InfoContext(ctx, "Processing report request",
		"id", msg.ID,
		"kind", msg.Kind,
		"period_start", msg.PeriodStart,
		"period_end", msg.PeriodEnd,
		"requested_by", msg.RequestedBy)

	start, err := dates.ParseKey(msg.PeriodStart)
	if err != nil {
		return fmt.Errorf("parse period start: %w", err)
	}
	end, err := dates.ParseKey(msg.PeriodEnd)
	if err != nil {
		return fmt.Errorf("parse period end: %w", err)
	}

	if msg.Kind == amqp.KindMonthly {
		last, err := w.runs.LastReportRun(ctx, msg.PeriodStart)
		if err != nil {
			return fmt.Errorf("load last report run: %w", err)
		}
		if last != nil {
			slog.InfoContext(ctx, "Report already sent for period, skipping",
				"id", msg.ID,
				"period_start", msg.PeriodStart,
				"sent_at", last.SentAt)
			return nil
		}
	}

	out, err := w.reports.SendReport(ctx, msg.Kind, dates.NewPeriod(start, end))
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	slog.InfoContext(ctx, "Report request completed",
		"id", msg.ID,
		"recipients", out.Recipients,
		"hours", out.TotalHours,
		"sheet_ref", out.SheetRef)
	return nil
}

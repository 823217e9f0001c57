package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"urenlogger/internal/amqp"
	"urenlogger/internal/core"
	"urenlogger/internal/dates"
	"urenlogger/internal/i18n"
	"urenlogger/internal/logstore"
	"urenlogger/internal/mail"
	"urenlogger/internal/report"
	"urenlogger/internal/sheets"
)

// ReportPublisher queues report requests for the report worker.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

// Notifier posts a short notice to the team's log channel.
type Notifier interface {
	Notify(ctx context.Context, content string) error
}

// ReportConfig holds the fixed mail addressing of the report.
type ReportConfig struct {
	From      string
	BossEmail string
}

// ReportOutcome summarizes one delivered report.
type ReportOutcome struct {
	Period     dates.Period
	Subject    string
	Recipients int
	TotalHours float64
	TotalUsers int
	SheetRef   string
	Removed    int
}

// ReportService builds, renders and mails billing period reports.
type ReportService struct {
	store     logstore.Store
	mailer    mail.Sender
	exporter  sheets.ReportExporter
	notifier  Notifier
	publisher ReportPublisher
	cfg       ReportConfig
	location  *time.Location
	clock     func() time.Time
}

// NewReportService wires the report pipeline. exporter, notifier and
// publisher are optional.
func NewReportService(store logstore.Store, mailer mail.Sender, cfg ReportConfig, location *time.Location) *ReportService {
	if location == nil {
		location = time.Local
	}
	return &ReportService{
		store:    store,
		mailer:   mailer,
		cfg:      cfg,
		location: location,
		clock:    time.Now,
	}
}

func (s *ReportService) WithExporter(e sheets.ReportExporter) *ReportService {
	s.exporter = e
	return s
}

func (s *ReportService) WithNotifier(n Notifier) *ReportService {
	s.notifier = n
	return s
}

func (s *ReportService) WithPublisher(p ReportPublisher) *ReportService {
	s.publisher = p
	return s
}

func (s *ReportService) now() time.Time {
	return s.clock().In(s.location)
}

// MonthlySubject is "Maandelijks Urenrapport - oktober 2025" for a period
// ending in October 2025.
func MonthlySubject(p dates.Period) string {
	return report.Title + " - " + dates.FormatMonthYear(p.End)
}

// TestSubject marks a report sent by SendTestReport.
func TestSubject(p dates.Period) string {
	return "🧪 TEST - Huidige Maand Uren (sinds 22e) - " + dates.FormatMonthYear(p.End)
}

// MonthlyPeriod is the period the monthly report covers at now: the one
// ending on the 21st of now's month.
func (s *ReportService) MonthlyPeriod() dates.Period {
	return dates.PreviousPeriod(s.now())
}

// SendMonthlyReport mails the report for MonthlyPeriod.
func (s *ReportService) SendMonthlyReport(ctx context.Context) (ReportOutcome, error) {
	return s.SendReport(ctx, amqp.KindMonthly, s.MonthlyPeriod())
}

// SendTestReport mails the current period up to today to the supervisor
// only, then removes entries whose description starts with "TEST".
func (s *ReportService) SendTestReport(ctx context.Context) (ReportOutcome, error) {
	now := s.now()
	period := dates.NewPeriod(dates.CurrentPeriod(now).Start, core.DateOf(now))
	return s.SendReport(ctx, amqp.KindTest, period)
}

// RequestMonthlyReport queues the monthly report when a publisher is
// configured and sends it inline otherwise. It reports whether the request
// was queued.
func (s *ReportService) RequestMonthlyReport(ctx context.Context, requestedBy string) (dates.Period, bool, error) {
	period := s.MonthlyPeriod()
	queued, err := s.RequestReport(ctx, period, requestedBy)
	return period, queued, err
}

// RequestReport is RequestMonthlyReport for an explicit period.
func (s *ReportService) RequestReport(ctx context.Context, period dates.Period, requestedBy string) (bool, error) {
	if s.publisher != nil {
		msg := amqp.NewReportRequestMessage(amqp.KindMonthly, period.StartKey(), period.EndKey(), requestedBy)
		err := s.publisher.PublishReportRequest(ctx, msg)
		if err == nil {
			return true, nil
		}
		slog.WarnContext(ctx, "Failed to queue report request, sending inline",
			"error", err,
			"period_start", period.StartKey())
	}
	_, err := s.SendReport(ctx, amqp.KindMonthly, period)
	return false, err
}

// SendReport builds the report for period, mails it and runs the follow-up
// steps for kind. Monthly reports are recorded, exported and announced in
// the log channel; test reports clean up test entries.
func (s *ReportService) SendReport(ctx context.Context, kind string, period dates.Period) (ReportOutcome, error) {
	out, err := s.deliver(ctx, kind, period)
	if kind != amqp.KindMonthly {
		return out, err
	}

	if err != nil {
		s.notify(ctx, i18n.ReportFailedNotice(period.Label, err))
		return out, err
	}

	if rerr := s.store.RecordReportRun(ctx, logstore.ReportRun{
		PeriodStart: period.StartKey(),
		PeriodEnd:   period.EndKey(),
		Recipients:  out.Recipients,
		TotalHours:  out.TotalHours,
		SentAt:      s.now(),
	}); rerr != nil {
		slog.ErrorContext(ctx, "Failed to record report run", "error", rerr, "period_start", period.StartKey())
	}
	s.notify(ctx, i18n.ReportSentNotice(period.Label, out.TotalUsers, out.TotalHours, out.Recipients))
	return out, nil
}

func (s *ReportService) deliver(ctx context.Context, kind string, period dates.Period) (ReportOutcome, error) {
	if s.mailer == nil {
		return ReportOutcome{}, errors.New("no mailer configured")
	}

	entries, err := s.store.EntriesByRange(ctx, period.StartKey(), period.EndKey())
	if err != nil {
		return ReportOutcome{}, fmt.Errorf("load entries: %w", err)
	}
	if len(entries) == 0 {
		slog.WarnContext(ctx, "No hours logged for period, sending empty report",
			"period_start", period.StartKey(),
			"period_end", period.EndKey())
	}

	r := report.Build(period, entries, s.now())
	html, err := report.RenderHTML(r)
	if err != nil {
		return ReportOutcome{}, err
	}

	msg := mail.Message{
		From:    s.cfg.From,
		To:      []string{s.cfg.BossEmail},
		Subject: MonthlySubject(period),
		Text:    report.RenderPlainText(r),
		HTML:    html,
	}
	if kind == amqp.KindTest {
		msg.Subject = TestSubject(period)
	} else {
		cc, err := s.ccAddresses(ctx)
		if err != nil {
			return ReportOutcome{}, err
		}
		msg.Cc = cc
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return ReportOutcome{}, fmt.Errorf("send report: %w", err)
	}

	out := ReportOutcome{
		Period:     period,
		Subject:    msg.Subject,
		Recipients: msg.Recipients(),
		TotalHours: r.TotalHours,
		TotalUsers: r.TotalUsers,
	}
	slog.InfoContext(ctx, "Report sent",
		"kind", kind,
		"period_start", period.StartKey(),
		"period_end", period.EndKey(),
		"users", r.TotalUsers,
		"hours", r.TotalHours,
		"recipients", out.Recipients)

	switch kind {
	case amqp.KindMonthly:
		if s.exporter != nil {
			ref, err := s.exporter.ExportReport(ctx, r)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to export report to sheet", "error", err)
			}
			out.SheetRef = ref
		}
	case amqp.KindTest:
		n, err := s.store.DeleteTestEntries(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to remove test entries", "error", err)
		}
		out.Removed = n
	}
	return out, nil
}

// ccAddresses returns the registered addresses of all users, skipping the
// supervisor's own address.
func (s *ReportService) ccAddresses(ctx context.Context) ([]string, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var cc []string
	for _, u := range users {
		if u.HasEmail() && u.Email != s.cfg.BossEmail {
			cc = append(cc, u.Email)
		}
	}
	return cc, nil
}

func (s *ReportService) notify(ctx context.Context, content string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, content); err != nil {
		slog.WarnContext(ctx, "Could not post to log channel", "error", err)
	}
}

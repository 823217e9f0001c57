package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"urenlogger/internal/amqp"
	"urenlogger/internal/core"
	"urenlogger/internal/logstore/memory"
	"urenlogger/internal/mail"
	sheetmem "urenlogger/internal/sheets/memory"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingNotifier struct {
	notices []string
}

func (n *recordingNotifier) Notify(_ context.Context, content string) error {
	n.notices = append(n.notices, content)
	return nil
}

type recordingPublisher struct {
	msgs []*amqp.ReportRequestMessage
	err  error
}

func (p *recordingPublisher) PublishReportRequest(_ context.Context, msg *amqp.ReportRequestMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type reportFixture struct {
	svc      *ReportService
	store    *memory.Store
	mailer   *recordingMailer
	notifier *recordingNotifier
	exporter *sheetmem.Exporter
}

func newReportFixture(t *testing.T, now time.Time) *reportFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	for _, u := range []core.User{
		{ID: "u1", Name: "Piet", Email: "piet@example.com"},
		{ID: "u2", Name: "Klaas"},
		{ID: "u3", Name: "Baas", Email: "boss@example.com"},
	} {
		if err := store.RegisterUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []core.HourEntry{
		{UserID: "u1", DisplayName: "Piet", Hours: 8, Date: core.NewDate(2025, 9, 22), Description: "Bouwen"},
		{UserID: "u1", DisplayName: "Piet", Hours: 4.5, Date: core.NewDate(2025, 10, 21)},
		{UserID: "u2", DisplayName: "Klaas", Hours: 6, Date: core.NewDate(2025, 10, 1), Description: "TEST invoer"},
		{UserID: "u2", DisplayName: "Klaas", Hours: 2, Date: core.NewDate(2025, 9, 21)},
	} {
		if _, err := store.CreateEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	f := &reportFixture{
		store:    store,
		mailer:   &recordingMailer{},
		notifier: &recordingNotifier{},
		exporter: sheetmem.New(),
	}
	f.svc = NewReportService(store, f.mailer, ReportConfig{From: "bot@example.com", BossEmail: "boss@example.com"}, time.UTC).
		WithExporter(f.exporter).
		WithNotifier(f.notifier)
	f.svc.clock = func() time.Time { return now }
	return f
}

func TestReportService_SendMonthlyReport(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 10, 22, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	out, err := f.svc.SendMonthlyReport(ctx)
	if err != nil {
		t.Fatalf("SendMonthlyReport: %v", err)
	}
	if out.Period.StartKey() != "2025-09-22" || out.Period.EndKey() != "2025-10-21" {
		t.Errorf("period = [%s, %s]", out.Period.StartKey(), out.Period.EndKey())
	}
	if out.TotalHours != 18.5 || out.TotalUsers != 2 {
		t.Errorf("totals = %.2f hours, %d users", out.TotalHours, out.TotalUsers)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(f.mailer.sent))
	}
	msg := f.mailer.sent[0]
	if msg.Subject != "Maandelijks Urenrapport - oktober 2025" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "boss@example.com" {
		t.Errorf("to = %v", msg.To)
	}
	if len(msg.Cc) != 1 || msg.Cc[0] != "piet@example.com" {
		t.Errorf("cc = %v", msg.Cc)
	}
	if out.Recipients != 2 {
		t.Errorf("recipients = %d", out.Recipients)
	}
	if !strings.Contains(msg.Text, "Piet") || !strings.Contains(msg.HTML, "Klaas") {
		t.Error("bodies should name both users")
	}

	run, err := f.store.LastReportRun(ctx, "2025-09-22")
	if err != nil || run == nil {
		t.Fatalf("expected recorded run, got %v, %v", run, err)
	}
	if run.Recipients != 2 || run.TotalHours != 18.5 {
		t.Errorf("run = %+v", run)
	}

	if len(f.exporter.Reports()) != 1 || out.SheetRef == "" {
		t.Errorf("expected one export with a reference, got %d / %q", len(f.exporter.Reports()), out.SheetRef)
	}
	if len(f.notifier.notices) != 1 || !strings.Contains(f.notifier.notices[0], "22 september 2025 - 21 oktober 2025") {
		t.Errorf("notices = %v", f.notifier.notices)
	}

	// Monthly reports keep test entries.
	entries, _ := f.store.EntriesByRange(ctx, "2025-01-01", "2025-12-31")
	if len(entries) != 4 {
		t.Errorf("entries after monthly report = %d", len(entries))
	}
}

func TestReportService_SendMonthlyReportFailure(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 10, 22, 9, 0, 0, 0, time.UTC))
	f.mailer.err = errors.New("connection refused")
	ctx := context.Background()

	if _, err := f.svc.SendMonthlyReport(ctx); err == nil {
		t.Fatal("expected error")
	}
	if run, _ := f.store.LastReportRun(ctx, "2025-09-22"); run != nil {
		t.Error("failed report must not be recorded")
	}
	if len(f.exporter.Reports()) != 0 {
		t.Error("failed report must not be exported")
	}
	if len(f.notifier.notices) != 1 || !strings.Contains(f.notifier.notices[0], "connection refused") {
		t.Errorf("notices = %v", f.notifier.notices)
	}
}

func TestReportService_SendTestReport(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 10, 16, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	out, err := f.svc.SendTestReport(ctx)
	if err != nil {
		t.Fatalf("SendTestReport: %v", err)
	}
	if out.Period.StartKey() != "2025-09-22" || out.Period.EndKey() != "2025-10-16" {
		t.Errorf("period = [%s, %s]", out.Period.StartKey(), out.Period.EndKey())
	}
	if out.TotalHours != 14 {
		t.Errorf("total = %.2f", out.TotalHours)
	}
	if out.Removed != 1 {
		t.Errorf("removed = %d", out.Removed)
	}

	msg := f.mailer.sent[0]
	if !strings.Contains(msg.Subject, "TEST - Huidige Maand Uren (sinds 22e) - oktober 2025") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if len(msg.Cc) != 0 {
		t.Errorf("test report must not cc users: %v", msg.Cc)
	}

	if run, _ := f.store.LastReportRun(ctx, "2025-09-22"); run != nil {
		t.Error("test report must not be recorded")
	}
	if len(f.exporter.Reports()) != 0 || len(f.notifier.notices) != 0 {
		t.Error("test report must not be exported or announced")
	}
	entries, _ := f.store.EntriesByRange(ctx, "2025-01-01", "2025-12-31")
	for _, e := range entries {
		if strings.HasPrefix(e.Description, "TEST") {
			t.Errorf("test entry left behind: %+v", e)
		}
	}
}

func TestReportService_EmptyPeriodStillSends(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 3, 25, 9, 0, 0, 0, time.UTC))

	out, err := f.svc.SendMonthlyReport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalUsers != 0 || out.TotalHours != 0 {
		t.Errorf("out = %+v", out)
	}
	if !strings.Contains(f.mailer.sent[0].Text, "Geen uren gelogd in deze periode") {
		t.Errorf("text = %q", f.mailer.sent[0].Text)
	}
}

func TestReportService_RequestMonthlyReport(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 10, 21, 18, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}
	f.svc.WithPublisher(pub)

	period, queued, err := f.svc.RequestMonthlyReport(context.Background(), "cron")
	if err != nil {
		t.Fatal(err)
	}
	if !queued {
		t.Error("expected request to be queued")
	}
	if len(f.mailer.sent) != 0 {
		t.Error("queued request must not send inline")
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.Kind != amqp.KindMonthly || msg.PeriodStart != period.StartKey() || msg.PeriodEnd != "2025-10-21" || msg.RequestedBy != "cron" {
		t.Errorf("message = %+v", msg)
	}

	// Broker unavailable: falls back to sending inline.
	pub.err = errors.New("circuit breaker is open")
	_, queued, err = f.svc.RequestMonthlyReport(context.Background(), "cron")
	if err != nil {
		t.Fatal(err)
	}
	if queued || len(f.mailer.sent) != 1 {
		t.Errorf("expected inline send, queued=%v sent=%d", queued, len(f.mailer.sent))
	}
}

func TestReportScheduler_CheckDue(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before end day", time.Date(2025, 10, 20, 23, 0, 0, 0, time.UTC), false},
		{"on end day", time.Date(2025, 10, 21, 8, 0, 0, 0, time.UTC), true},
		{"after end day", time.Date(2025, 10, 28, 8, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReportFixture(t, tt.now)
			s := NewReportScheduler(f.svc, f.store, DefaultReportSchedulerConfig())
			got, err := s.CheckDue(ctx, tt.now)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CheckDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReportScheduler_OncePerPeriod(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 21, 8, 0, 0, 0, time.UTC)
	f := newReportFixture(t, now)
	s := NewReportScheduler(f.svc, f.store, DefaultReportSchedulerConfig())

	if ok, err := s.CheckDue(ctx, now); err != nil || !ok {
		t.Fatalf("first check = %v, %v", ok, err)
	}
	if ok, _ := s.CheckDue(ctx, now.Add(time.Hour)); ok {
		t.Error("recorded period requested again")
	}
	if len(f.mailer.sent) != 1 {
		t.Errorf("sent %d mails", len(f.mailer.sent))
	}

	// Next month is a new period.
	next := time.Date(2025, 11, 21, 8, 0, 0, 0, time.UTC)
	if ok, _ := s.CheckDue(ctx, next); !ok {
		t.Error("next period not requested")
	}
}

func TestReportScheduler_RetryAfterQueuedRequest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 21, 8, 0, 0, 0, time.UTC)
	f := newReportFixture(t, now)
	pub := &recordingPublisher{}
	f.svc.WithPublisher(pub)
	s := NewReportScheduler(f.svc, f.store, ReportSchedulerConfig{CheckInterval: time.Hour, RetryAfter: 6 * time.Hour})

	s.CheckDue(ctx, now)
	s.CheckDue(ctx, now.Add(time.Hour))
	if len(pub.msgs) != 1 {
		t.Errorf("expected one request within retry window, got %d", len(pub.msgs))
	}
	s.CheckDue(ctx, now.Add(7*time.Hour))
	if len(pub.msgs) != 2 {
		t.Errorf("expected retry after window, got %d", len(pub.msgs))
	}
}

func TestReportScheduler_StartStop(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC))
	s := NewReportScheduler(f.svc, f.store, ReportSchedulerConfig{CheckInterval: time.Hour})
	ctx := context.Background()

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	if !s.IsRunning() {
		t.Error("expected running")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatal(err)
	}
	if s.IsRunning() {
		t.Error("expected stopped")
	}
}

func TestReportScheduler_StopTwiceAfterTimeout(t *testing.T) {
	f := newReportFixture(t, time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC))
	s := NewReportScheduler(f.svc, f.store, ReportSchedulerConfig{CheckInterval: time.Hour})

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	_ = s.Stop(expired) // may report a timeout

	if s.IsRunning() {
		t.Error("expected stopped after Stop returned")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

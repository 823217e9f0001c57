package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"urenlogger/internal/amqp"
	"urenlogger/internal/dates"
	"urenlogger/internal/logstore"
	"urenlogger/internal/logstore/memory"
	"urenlogger/internal/services"
)

type recordingSender struct {
	calls []dates.Period
	kinds []string
	err   error
}

func (r *recordingSender) SendReport(_ context.Context, kind string, p dates.Period) (services.ReportOutcome, error) {
	r.calls = append(r.calls, p)
	r.kinds = append(r.kinds, kind)
	if r.err != nil {
		return services.ReportOutcome{}, r.err
	}
	return services.ReportOutcome{Period: p, Recipients: 1}, nil
}

func TestHandleReportRequest_SendsPeriod(t *testing.T) {
	sender := &recordingSender{}
	w := NewReportWorker(sender, memory.New())

	msg := amqp.NewReportRequestMessage(amqp.KindMonthly, "2025-09-22", "2025-10-21", "test")
	if err := w.HandleReportRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleReportRequest: %v", err)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.calls))
	}
	p := sender.calls[0]
	if p.StartKey() != "2025-09-22" || p.EndKey() != "2025-10-21" {
		t.Errorf("period = [%s, %s]", p.StartKey(), p.EndKey())
	}
	if p.Label != "22 september 2025 - 21 oktober 2025" {
		t.Errorf("label = %q", p.Label)
	}
}

func TestHandleReportRequest_SkipsRecordedMonthlyRun(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.RecordReportRun(ctx, logstore.ReportRun{
		PeriodStart: "2025-09-22",
		PeriodEnd:   "2025-10-21",
		SentAt:      time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	sender := &recordingSender{}
	w := NewReportWorker(sender, store)

	msg := amqp.NewReportRequestMessage(amqp.KindMonthly, "2025-09-22", "2025-10-21", "test")
	if err := w.HandleReportRequest(ctx, msg); err != nil {
		t.Fatalf("HandleReportRequest: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Errorf("expected no send for recorded period, got %d", len(sender.calls))
	}

	// Test reports are never deduplicated.
	msg = amqp.NewReportRequestMessage(amqp.KindTest, "2025-09-22", "2025-10-21", "test")
	if err := w.HandleReportRequest(ctx, msg); err != nil {
		t.Fatalf("HandleReportRequest: %v", err)
	}
	if len(sender.calls) != 1 || sender.kinds[0] != amqp.KindTest {
		t.Errorf("expected one test send, got %v", sender.kinds)
	}
}

func TestHandleReportRequest_Errors(t *testing.T) {
	sendErr := errors.New("smtp down")
	w := NewReportWorker(&recordingSender{err: sendErr}, memory.New())

	msg := amqp.NewReportRequestMessage(amqp.KindMonthly, "2025-09-22", "2025-10-21", "test")
	if err := w.HandleReportRequest(context.Background(), msg); !errors.Is(err, sendErr) {
		t.Errorf("expected wrapped send error, got %v", err)
	}

	bad := amqp.NewReportRequestMessage(amqp.KindMonthly, "22-09-2025", "2025-10-21", "test")
	if err := w.HandleReportRequest(context.Background(), bad); err == nil {
		t.Error("expected error for malformed period start")
	}
}

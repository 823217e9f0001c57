package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"urenlogger/internal/dates"
	"urenlogger/internal/logstore"
)

// ReportSchedulerConfig holds configuration for the report scheduler
type ReportSchedulerConfig struct {
	// CheckInterval is how often dueness is evaluated (default: 1h)
	CheckInterval time.Duration

	// RetryAfter is how long to wait before requesting the same period again
	// while no run has been recorded for it (default: 6h)
	RetryAfter time.Duration
}

// DefaultReportSchedulerConfig returns sensible defaults
func DefaultReportSchedulerConfig() ReportSchedulerConfig {
	return ReportSchedulerConfig{
		CheckInterval: time.Hour,
		RetryAfter:    6 * time.Hour,
	}
}

// IsReportDue reports whether the monthly report for the period ending this
// month should go out: the end day has been reached and no run is recorded.
func IsReportDue(now time.Time, last *logstore.ReportRun) bool {
	if last != nil {
		return false
	}
	return now.Day() >= dates.EndDay
}

// ReportScheduler periodically requests the monthly report once it is due.
type ReportScheduler struct {
	reports *ReportService
	runs    logstore.RunRecorder
	config  ReportSchedulerConfig

	lastRequested   string
	lastRequestedAt time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReportScheduler(reports *ReportService, runs logstore.RunRecorder, config ReportSchedulerConfig) *ReportScheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Hour
	}
	if config.RetryAfter <= 0 {
		config.RetryAfter = 6 * time.Hour
	}
	return &ReportScheduler{
		reports: reports,
		runs:    runs,
		config:  config,
	}
}

// CheckDue requests the monthly report when it is due at now. It returns
// whether a request was made.
func (s *ReportScheduler) CheckDue(ctx context.Context, now time.Time) (bool, error) {
	now = now.In(s.reports.location)
	period := dates.PreviousPeriod(now)

	last, err := s.runs.LastReportRun(ctx, period.StartKey())
	if err != nil {
		return false, fmt.Errorf("load last report run: %w", err)
	}
	if !IsReportDue(now, last) {
		return false, nil
	}

	s.mu.Lock()
	recent := s.lastRequested == period.StartKey() && now.Sub(s.lastRequestedAt) < s.config.RetryAfter
	s.mu.Unlock()
	if recent {
		return false, nil
	}

	queued, err := s.reports.RequestReport(ctx, period, "scheduler")
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.lastRequested = period.StartKey()
	s.lastRequestedAt = now
	s.mu.Unlock()

	slog.InfoContext(ctx, "Monthly report requested",
		"period_start", period.StartKey(),
		"period_end", period.EndKey(),
		"queued", queued)
	return true, nil
}

// Start begins the check loop. Returns an error if already running.
func (s *ReportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("report scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Report scheduler started", "check_interval", s.config.CheckInterval)
	return nil
}

// Stop stops the loop and waits for the current check to finish.
func (s *ReportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	select {
	case <-s.doneCh:
		slog.InfoContext(ctx, "Report scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Report scheduler stop timed out")
		return ctx.Err()
	}
	return nil
}

func (s *ReportScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ReportScheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	s.check(ctx, s.reports.clock())

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.check(ctx, now)
		}
	}
}

func (s *ReportScheduler) check(ctx context.Context, now time.Time) {
	if _, err := s.CheckDue(ctx, now); err != nil {
		slog.ErrorContext(ctx, "Report check failed", "error", err)
	}
}

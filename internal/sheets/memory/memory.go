package memory

import (
	"context"
	"fmt"
	"sync"

	"urenlogger/internal/report"
	ports "urenlogger/internal/sheets"
)

// Exporter keeps exported reports in memory. It backs the memory data
// backend and serves as a fake in tests.
type Exporter struct {
	mu      sync.Mutex
	reports []report.MonthlyReport
}

var _ ports.ReportExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// ExportReport stores the report and returns a synthetic reference.
func (e *Exporter) ExportReport(_ context.Context, r report.MonthlyReport) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, r)
	return fmt.Sprintf("mem:%s:%d", r.Period.StartKey(), len(e.reports)), nil
}

// Reports returns a copy of everything exported so far.
func (e *Exporter) Reports() []report.MonthlyReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]report.MonthlyReport(nil), e.reports...)
}

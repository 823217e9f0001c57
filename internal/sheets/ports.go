// Package sheets declares the spreadsheet export port for billing period
// reports. The google subpackage appends to a Google Sheet, the memory
// subpackage records exports in process.
package sheets

import (
	"context"

	"urenlogger/internal/report"
)

// Ports for outbound adapters.
type (
	// ReportExporter writes a report to a spreadsheet and returns a reference
	// to the range it wrote.
	ReportExporter interface {
		ExportReport(ctx context.Context, r report.MonthlyReport) (ref string, err error)
	}
)

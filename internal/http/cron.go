package http

import (
	"net/http"

	"urenlogger/internal/log"
)

// handleMonthlyReportCron is hit by an external scheduler. Authentication is
// done by the BearerAuth middleware on the route group.
func (s *Server) handleMonthlyReportCron(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.deps.Reports == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"error":   "reports are not configured",
		})
		return
	}

	s.appMetrics.reportsRequested.Add(1)
	period, queued, err := s.deps.Reports.RequestMonthlyReport(ctx, "cron")
	if err != nil {
		s.sl.LogError(ctx, "Monthly report failed", err, log.ComponentReport, log.OpSend,
			log.NewFields().WithPeriod(period.StartKey(), period.EndKey()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to send monthly report",
		})
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Monthly report triggered",
		log.FieldPeriodStart, period.StartKey(),
		log.FieldPeriodEnd, period.EndKey(),
		"queued", queued)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"queued":  queued,
		"period": map[string]string{
			"start": period.StartKey(),
			"end":   period.EndKey(),
			"label": period.Label,
		},
	})
}

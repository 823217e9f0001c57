package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "in_memory"
	}

	if s.deps.Reports != nil {
		checks["reports"] = "ok"
	} else {
		checks["reports"] = "not_configured"
	}

	checks["rate_limiter"] = map[string]any{
		"interaction_clients": s.interactionLimits.ActiveClients(),
		"cron_clients":        s.cronLimits.ActiveClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides counters in a Prometheus-like plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	interactionLimits := s.interactionLimits.GetMetrics()
	cronLimits := s.cronLimits.GetMetrics()

	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	counter("commands_total", "Slash commands executed", s.appMetrics.commandsTotal.Load())
	counter("commands_failed_total", "Slash commands whose reply could not be delivered", s.appMetrics.commandsFailed.Load())
	counter("unknown_commands_total", "Interactions naming an unknown command", s.appMetrics.unknownCommands.Load())
	counter("rejected_signatures_total", "Interactions with an invalid signature", s.appMetrics.rejectedSignatures.Load())
	counter("reports_requested_total", "Monthly reports triggered by cron", s.appMetrics.reportsRequested.Load())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total{route=\"interactions\"} %d\n", interactionLimits.TotalHits)
	fmt.Fprintf(w, "rate_limit_hits_total{route=\"cron\"} %d\n\n", cronLimits.TotalHits)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.appMetrics.uptime).Seconds())
}

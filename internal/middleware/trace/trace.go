// Package trace logs every HTTP request with the request ID assigned by
// chi's RequestID middleware and counts requests for the metrics endpoint.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"urenlogger/internal/log"
)

// Middleware must be mounted after chimw.RequestID.
type Middleware struct {
	logger    *log.Logger
	sl        *log.StructuredLogger
	extractIP func(*http.Request) string

	totalRequests atomic.Int64
	errors        atomic.Int64
}

func New(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		logger:    logger,
		sl:        log.NewStructuredLogger(logger),
		extractIP: extractIP,
	}
}

// Handler attaches a request-scoped logger to the context and logs completion.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.totalRequests.Add(1)

		requestID := chimw.GetReqID(r.Context())
		reqLogger := m.logger.WithComponent(log.ComponentHTTP).With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= 500 {
			m.errors.Add(1)
		}
		m.sl.LogHTTPEnd(ctx, r, status, time.Since(start), m.extractIP(r))
	})
}

// Metrics holds request counters.
type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests: m.totalRequests.Load(),
		ServerErrors:  m.errors.Load(),
	}
}

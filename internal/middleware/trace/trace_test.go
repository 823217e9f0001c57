package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	"urenlogger/internal/log"
)

func TestMiddleware_LogsRequestWithID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)})
	m := New(logger, func(r *http.Request) string { return "203.0.113.7" })

	var ctxComponent string
	h := chimw.RequestID(m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxComponent = log.FromContext(r.Context()).Component()
		w.WriteHeader(http.StatusInternalServerError)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if ctxComponent != log.ComponentHTTP {
		t.Errorf("context logger component = %q", ctxComponent)
	}
	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=500", "client_ip=203.0.113.7", "path=/readyz"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	got := m.GetMetrics()
	if got.TotalRequests != 1 || got.ServerErrors != 1 {
		t.Errorf("metrics = %+v", got)
	}
}

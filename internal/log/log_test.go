package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_ComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentDiscord)

	l.Info("hello", FieldUserID, "u1")

	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Errorf("expected exactly one component attribute: %s", out)
	}
	if !strings.Contains(out, "component=discord") || !strings.Contains(out, "user_id=u1") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestMiddleware_FromContext(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	var got *Logger
	h := ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(NewContext(req.Context(), base)))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("logger from context = %+v", got)
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger for empty context")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	ctx := context.Background()

	r := httptest.NewRequest(http.MethodPost, "/interactions", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusUnauthorized, 3*time.Millisecond, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=401") {
		t.Errorf("http end: %s", buf.String())
	}

	buf.Reset()
	sl.LogCommandExecuted(ctx, "uren", "u1", "i1", 2, time.Second)
	if !strings.Contains(buf.String(), "command=uren") || !strings.Contains(buf.String(), "chunks=2") {
		t.Errorf("command: %s", buf.String())
	}

	buf.Reset()
	sl.LogError(ctx, "send failed", errors.New("boom"), ComponentMail, OpSend, nil)
	if !strings.Contains(buf.String(), "error=boom") || !strings.Contains(buf.String(), "operation=send") {
		t.Errorf("error: %s", buf.String())
	}
}

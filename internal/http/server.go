// Package http serves the Discord interactions endpoint, the cron trigger
// for the monthly report and the health probes.
package http

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"urenlogger/internal/dates"
	"urenlogger/internal/log"
	"urenlogger/internal/middleware/ratelimit"
	"urenlogger/internal/middleware/security"
	"urenlogger/internal/middleware/trace"
)

// CommandExecutor runs a slash command and returns the full reply text.
type CommandExecutor interface {
	Execute(ctx context.Context, i *discordgo.Interaction) string
}

// InteractionResponder delivers replies for a deferred interaction.
type InteractionResponder interface {
	EditOriginal(ctx context.Context, i *discordgo.Interaction, content string) error
	FollowUp(ctx context.Context, i *discordgo.Interaction, content string) error
}

// MonthlyReporter triggers the monthly report.
type MonthlyReporter interface {
	RequestMonthlyReport(ctx context.Context, requestedBy string) (dates.Period, bool, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr       string
	PublicKey  ed25519.PublicKey
	CronSecret string

	// CommandTimeout bounds the background work for one interaction.
	// Interaction tokens stay valid for 15 minutes.
	CommandTimeout time.Duration

	InteractionsPerMinute int
	CronPerMinute         int
	TrustedProxies        []string
	MaxBodyBytes          int64
}

func DefaultConfig() Config {
	return Config{
		Addr:                  ":3000",
		CommandTimeout:        30 * time.Second,
		InteractionsPerMinute: 300,
		CronPerMinute:         10,
		MaxBodyBytes:          64 << 10,
	}
}

type Deps struct {
	Commands  CommandExecutor
	Responder InteractionResponder
	Reports   MonthlyReporter
	// Health is optional; the memory backend has nothing to ping.
	Health Pinger
	Logger *log.Logger
}

type appMetrics struct {
	commandsTotal      atomic.Int64
	commandsFailed     atomic.Int64
	unknownCommands    atomic.Int64
	rejectedSignatures atomic.Int64
	reportsRequested   atomic.Int64
	uptime             time.Time
}

type Server struct {
	http.Server
	cfg  Config
	deps Deps

	logger *log.Logger
	sl     *log.StructuredLogger

	ips               *security.ClientIPResolver
	interactionLimits *ratelimit.Limiter
	cronLimits        *ratelimit.Limiter
	tracer            *trace.Middleware

	inflight     sync.WaitGroup
	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer wires the routes and returns a server ready for ListenAndServe.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Commands == nil || deps.Responder == nil {
		return nil, fmt.Errorf("http server: command executor and responder are required")
	}
	if len(cfg.PublicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("http server: invalid discord public key length %d", len(cfg.PublicKey))
	}
	defaults := DefaultConfig()
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = defaults.CommandTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.InteractionsPerMinute <= 0 {
		cfg.InteractionsPerMinute = defaults.InteractionsPerMinute
	}
	if cfg.CronPerMinute <= 0 {
		cfg.CronPerMinute = defaults.CronPerMinute
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	ips := security.NewClientIPResolver()
	for _, cidr := range cfg.TrustedProxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("http server: %w", err)
		}
	}

	s := &Server{
		cfg:               cfg,
		deps:              deps,
		logger:            logger,
		sl:                log.NewStructuredLogger(logger),
		ips:               ips,
		interactionLimits: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.InteractionsPerMinute}),
		cronLimits:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.CronPerMinute}),
		tracer:            trace.New(logger, ips.ClientIP),
	}
	s.appMetrics.uptime = time.Now()

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.tracer.Handler)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.With(s.interactionLimits.Middleware(s.ips.ClientIP, nil), log.ComponentMiddleware(log.ComponentDiscord)).
		Post("/interactions", s.handleInteraction)

	r.Route("/api/cron", func(r chi.Router) {
		r.Use(s.cronLimits.Middleware(s.ips.ClientIP, nil))
		r.Use(log.ComponentMiddleware(log.ComponentReport))
		r.Use(security.BearerAuth(s.cfg.CronSecret))
		r.Get("/monthly-report", s.handleMonthlyReportCron)
		r.Post("/monthly-report", s.handleMonthlyReportCron)
	})

	return r
}

// Shutdown stops accepting requests, then waits for in-flight commands to
// deliver their replies or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.interactionLimits.Stop()
		s.cronLimits.Stop()

		shutdownErr = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.inflight.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if shutdownErr == nil {
				shutdownErr = fmt.Errorf("waiting for in-flight commands: %w", ctx.Err())
			}
		}
	})

	return shutdownErr
}

package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/log"
	"famledger/internal/middleware/ratelimit"
	"famledger/internal/middleware/security"
	"famledger/internal/services"
	"famledger/internal/summary"
)

// Ledger is the service the API exposes. *services.LedgerService implements it.
type Ledger interface {
	SubmitIntent(ctx context.Context, in core.TransactionIntent) ([]core.LedgerRecord, error)
	MonthView(ctx context.Context, view summary.ViewState) (services.MonthView, error)
	Edit(ctx context.Context, id string, patch core.RecordPatch) (core.LedgerRecord, error)
	PlanDelete(ctx context.Context, id string) (services.DeletePlan, error)
	Delete(ctx context.Context, id string, confirmer services.Confirmer) (services.DeletePlan, error)
}

// Config wires a Server.
type Config struct {
	Addr           string
	Ledger         Ledger
	Catalog        catalog.Reader
	Ready          func(ctx context.Context) error
	Logger         *log.Logger
	AllowedOrigins []string
	RateLimit      ratelimit.Config
	Headers        security.HeadersConfig
}

type Server struct {
	http.Server
	ledger  Ledger
	catalog catalog.Reader
	ready   func(ctx context.Context) error
	logger  *log.Logger
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if cfg.Headers == (security.HeadersConfig{}) {
		cfg.Headers = security.DefaultHeadersConfig()
	}

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:  cfg.Ledger,
		catalog: cfg.Catalog,
		ready:   cfg.Ready,
		logger:  logger,
		limiter: ratelimit.NewLimiter(cfg.RateLimit),
	}
	s.Handler = s.routes(cfg)
	return s
}

func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(log.Middleware(s.logger, func(r *http.Request) string {
		return chimiddleware.GetReqID(r.Context())
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(security.NewHeadersMiddleware(cfg.Headers).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware(extractClientIP, nil))

		r.Get("/categories", s.handleListCategories)
		r.Post("/intents", s.handleSubmitIntent)
		r.Get("/months/{year}/{month}", s.handleMonthView)
		r.Route("/records/{id}", func(r chi.Router) {
			r.Patch("/", s.handleEditRecord)
			r.Get("/delete-plan", s.handleDeletePlan)
			r.Delete("/", s.handleDeleteRecord)
		})
	})

	return r
}

// requestLogger logs each completed request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.FromContext(r.Context()).LogHTTPEnd(r.Context(), r, status, time.Since(start).Milliseconds(), extractClientIP(r))
	})
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		m := s.limiter.GetMetrics()
		s.logger.Info("Rate limiter stopped", "rejected", m.TotalHits, "clients", m.ClientCount)
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

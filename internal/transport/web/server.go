package web

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/log"
	"golang.org/x/time/rate"
)

const (
	apiRateLimit = 5 // requests per second across all clients
	apiRateBurst = 10
)

// Responder answers /api/chat requests.
type Responder interface {
	Respond(ctx context.Context, message string, history []core.Message) (string, error)
}

// Deps are the optional parts the server exposes. A nil Responder disables
// the API, a nil Exchanger disables the chat page.
type Deps struct {
	Responder Responder
	Turns     core.TurnRepository
	Cars      core.CarRepository
	Exchanger core.Exchanger
}

type Server struct {
	srv      *http.Server
	deps     Deps
	limiter  *rate.Limiter
	sessions *sessionStore
	page     *template.Template
	opts     []transcript.Option

	scrollDelay time.Duration
}

func NewServer(ctx context.Context, cfg *config.AppConfig, deps Deps) *Server {
	s := &Server{
		deps:     deps,
		limiter:  rate.NewLimiter(rate.Limit(apiRateLimit), apiRateBurst),
		sessions: newSessionStore(sessionIdleTTL, maxSessions),
		page:     pageTemplate,

		scrollDelay: cfg.GetScrollDelay(),
		opts: []transcript.Option{
			// The browser performs the delayed scroll itself after each load.
			transcript.WithScrollDelay(0),
			transcript.WithTimestampLayout(cfg.GetTimestampLayout()),
		},
	}

	s.srv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return s
}

// Handler returns the router with every enabled endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.deps.Responder != nil {
		mux.Handle("POST /api/chat", s.rateLimited(http.HandlerFunc(s.handleChat)))
	}
	if s.deps.Turns != nil {
		mux.HandleFunc("GET /api/turns", s.handleTurns)
	}
	if s.deps.Cars != nil {
		mux.HandleFunc("GET /api/cars", s.handleCars)
	}
	if s.deps.Exchanger != nil {
		mux.HandleFunc("GET /{$}", s.handleIndex)
		mux.HandleFunc("POST /send", s.handleSend)
		mux.HandleFunc("GET /transcript.txt", s.handleTranscript)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return s.logRequests(mux)
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting web server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(r.Context(), w, http.StatusTooManyRequests, core.ChatResponse{Error: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.FromCtx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

// Package health serves the read-only status surface: liveness, aggregate
// counters and Prometheus metrics.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/themebot/bot/catalog"
	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/logger"
)

// DefaultListen is the address used when Options.Listen is empty.
const DefaultListen = ":8080"

// Sessions reports registry counters.
type Sessions interface {
	Stats() session.Stats
}

// Catalog provides the current catalog snapshot.
type Catalog interface {
	Snapshot() *catalog.Snapshot
}

// Options configures a Server. Sessions and Catalog are required.
type Options struct {
	Listen          string
	Name            string
	Version         string
	TokenConfigured bool
	AdminConfigured bool
	Sessions        Sessions
	Catalog         Catalog
	// Metrics gains session and catalog gauges; a Metrics value serves one Server.
	Metrics *Metrics
}

// Server is the HTTP status surface.
type Server struct {
	opts    Options
	handler http.Handler
	srv     *http.Server
}

// New builds the router. Nothing listens until Start.
func New(opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	s := &Server{opts: opts}
	s.watch()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.home)
	r.Get("/health", s.health)
	r.Get("/status", s.status)
	r.Get("/templates", s.templates)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	s.handler = r
	return s
}

func (s *Server) watch() {
	m := s.opts.Metrics
	m.gauge("sessions_total", "Sessions held in the registry.", func() float64 {
		return float64(s.opts.Sessions.Stats().Total)
	})
	m.gauge("sessions_active", "Sessions active within the activity window.", func() float64 {
		return float64(s.opts.Sessions.Stats().Active)
	})
	m.gauge("catalog_templates", "Templates in the current catalog snapshot.", func() float64 {
		return float64(s.opts.Catalog.Snapshot().Counts().Templates)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the bound address once Start has succeeded, else the configured one.
func (s *Server) Addr() string {
	if s.srv != nil && s.srv.Addr != "" {
		return s.srv.Addr
	}
	return s.opts.Listen
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		logger.LogEvent(ctx, logger.Health, slog.LevelError, "health.start",
			slog.String("status", "fail"),
			slog.String("listen", s.opts.Listen),
			slog.String("err", err.Error()),
		)
		return err
	}
	s.srv = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.LogEvent(ctx, logger.Health, slog.LevelInfo, "health.start",
		slog.String("status", "ok"),
		slog.String("listen", s.srv.Addr),
	)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogEvent(context.Background(), logger.Health, slog.LevelError, "health.serve",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests. It is a no-op before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	status := "ok"
	if err != nil {
		status = "fail"
	}
	logger.LogEvent(ctx, logger.Health, slog.LevelInfo, "health.stop", slog.String("status", status))
	return err
}

type homeResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Status:  "success",
		Message: s.opts.Name + " is running",
		Version: s.opts.Version,
		Endpoints: map[string]string{
			"/health":    "liveness and configuration check",
			"/status":    "session and catalog counters",
			"/templates": "template catalog",
			"/metrics":   "Prometheus metrics",
		},
	})
}

type healthResponse struct {
	Status      string `json:"status"`
	BotToken    string `json:"bot_token"`
	AdminChatID string `json:"admin_chat_id"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		BotToken:    configured(s.opts.TokenConfigured),
		AdminChatID: configured(s.opts.AdminConfigured),
	})
}

type sessionCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type catalogCounts struct {
	TemplateCount int       `json:"templateCount"`
	Categories    int       `json:"categories"`
	Source        string    `json:"source"`
	Demo          bool      `json:"demo"`
	LoadedAt      time.Time `json:"loadedAt"`
}

type statusResponse struct {
	Status   string        `json:"status"`
	Sessions sessionCounts `json:"sessions"`
	Catalog  catalogCounts `json:"catalog"`
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	st := s.opts.Sessions.Stats()
	snap := s.opts.Catalog.Snapshot()
	counts := snap.Counts()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:   "running",
		Sessions: sessionCounts{Total: st.Total, Active: st.Active},
		Catalog: catalogCounts{
			TemplateCount: counts.Templates,
			Categories:    counts.Categories,
			Source:        snap.Source(),
			Demo:          snap.IsDemo(),
			LoadedAt:      snap.LoadedAt(),
		},
	})
}

type templateView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency,omitempty"`
	Features    []string `json:"features"`
	Description string   `json:"description,omitempty"`
	Preview     string   `json:"preview_image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type categoryView struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type templatesResponse struct {
	Source     string                  `json:"source"`
	Templates  []templateView          `json:"templates"`
	Categories map[string]categoryView `json:"categories"`
}

func (s *Server) templates(w http.ResponseWriter, _ *http.Request) {
	snap := s.opts.Catalog.Snapshot()
	list := snap.Templates()
	resp := templatesResponse{
		Source:     snap.Source(),
		Templates:  make([]templateView, 0, len(list)),
		Categories: map[string]categoryView{},
	}
	for _, t := range list {
		features := t.Features
		if features == nil {
			features = []string{}
		}
		resp.Templates = append(resp.Templates, templateView{
			ID:          t.ID,
			Name:        t.Name,
			Category:    t.Category,
			Price:       t.Price.Amount,
			Currency:    t.Price.Currency,
			Features:    features,
			Description: t.Description,
			Preview:     t.Preview,
			Tags:        t.Tags,
		})
	}
	for key, c := range snap.Categories() {
		resp.Categories[key] = categoryView{Name: c.Name, Icon: c.Icon}
	}
	writeJSON(w, http.StatusOK, resp)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Package web serves the dashboard: HTML pages, JSON view models, view-state
// endpoints and the live claim feed
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/broadcast"
	"github.com/ppiankov/clarifai/internal/layout"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/worker"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options wires a Server to its collaborators
type Options struct {
	Store     *backend.Store
	Sessions  *layout.SessionStore
	Briefings *broadcast.Manager
	Panels    *worker.PanelLoader
	Feed      *FeedHub
	Robots    string // robots.txt body; empty serves model.DefaultRobots
	Logger    *zap.Logger
}

// Server renders the dashboard
type Server struct {
	store     *backend.Store
	sessions  *layout.SessionStore
	briefings *broadcast.Manager
	panels    *worker.PanelLoader
	feed      *FeedHub
	robots    string
	pages     map[string]*template.Template
	logger    *zap.Logger
	now       func() time.Time
}

// NewServer parses the page templates and validates the robots.txt body
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Sessions == nil || opts.Briefings == nil {
		return nil, fmt.Errorf("web server needs a store, a session store and a briefing manager")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Panels == nil {
		opts.Panels = worker.NewPanelLoader(4)
	}
	if opts.Robots == "" {
		opts.Robots = model.DefaultRobots
	}
	if _, err := robotstxt.FromString(opts.Robots); err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Server{
		store:     opts.Store,
		sessions:  opts.Sessions,
		briefings: opts.Briefings,
		panels:    opts.Panels,
		feed:      opts.Feed,
		robots:    opts.Robots,
		pages:     pages,
		logger:    opts.Logger,
		now:       time.Now,
	}, nil
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/healthz", s.handleHealthz)
	r.Get("/robots.txt", s.handleRobots)
	if s.feed != nil {
		r.Get("/ws/claims", s.feed.ServeWS)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/news", s.handleNews)
		r.Get("/news/{id}", s.handleTopic)
		r.Get("/sources", s.handleSources)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/graph", s.handleGraph)
		r.Get("/anchor", s.handleAnchor)
		r.Get("/settings", s.handleSettings)

		r.Route("/ui", func(r chi.Router) {
			r.Post("/sidebar", s.handleSidebar)
			r.Post("/theme", s.handleTheme)
			r.Post("/theme/toggle", s.handleThemeToggle)
			r.Post("/notifications/{key}", s.handleNotification)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/credibility", s.apiCredibility)
			r.Get("/claims", s.apiClaims)
			r.Post("/claims/verify", s.apiVerifyClaim)
			r.Get("/topics", s.apiTopics)
			r.Post("/topics/analyze", s.apiAnalyzeTopics)
			r.Get("/topics/{id}", s.apiTopic)
			r.Get("/charts/{chart}", s.apiChart)
			r.Get("/graph", s.apiGraph)
			r.Get("/stats", s.apiStats)

			r.Get("/briefings", s.apiListBriefings)
			r.Post("/briefings", s.apiSubmitBriefing)
			r.Get("/briefings/preview", s.apiPreviewBriefing)
			r.Get("/briefings/{id}", s.apiGetBriefing)
			r.Post("/briefings/{id}/cancel", s.apiCancelBriefing)
		})
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"mode":   s.store.Mode(),
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.robots))
}

// panelTimeout bounds the data loads behind one page
const panelTimeout = 20 * time.Second

func (s *Server) panelContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), panelTimeout)
}

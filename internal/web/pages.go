package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/broadcast"
	"github.com/ppiankov/clarifai/internal/layout"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/present"
)

// dashboardTopSources is how many sources the dashboard credibility panel shows
const dashboardTopSources = 5

type dashboardData struct {
	Stats     []present.StatCard
	Feed      []present.FeedItem
	Sources   []present.CredibilityRow
	Topics    []present.TopicCard
	Breakdown present.DonutChart
	Errors    map[string]*present.Banner
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.panelContext(r)
	defer cancel()

	p := s.loadPanels(ctx,
		panelJob("stats", s.statCards),
		panelJob("feed", func(ctx context.Context) ([]present.FeedItem, backend.Meta, error) {
			return s.claimFeed(ctx, "")
		}),
		panelJob("sources", s.credibility),
		panelJob("topics", func(ctx context.Context) (topicsView, backend.Meta, error) {
			return s.topicCards(ctx, "", false)
		}),
		panelJob("breakdown", s.claimsChart),
	)

	data := dashboardData{
		Stats:     pick[[]present.StatCard](p, "stats"),
		Feed:      pick[[]present.FeedItem](p, "feed"),
		Sources:   pick[[]present.CredibilityRow](p, "sources"),
		Topics:    pick[topicsView](p, "topics").Cards,
		Breakdown: pick[present.DonutChart](p, "breakdown"),
		Errors:    p.errors,
	}
	if len(data.Sources) > dashboardTopSources {
		data.Sources = data.Sources[:dashboardTopSources]
	}

	s.render(w, r, http.StatusOK, "dashboard", "Dashboard", p.banners(), data)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.panelContext(r)
	defer cancel()

	level, _ := present.ParseRiskLevel(r.URL.Query().Get("risk"))
	view, meta, err := s.topicCards(ctx, level, r.URL.Query().Get("refresh") == "true")
	if err != nil {
		s.render(w, r, statusFor(err), "news", "Today's News", []present.Banner{bannerForError(err)}, topicsView{Levels: present.RiskLevels})
		return
	}
	s.render(w, r, http.StatusOK, "news", "Today's News", bannersFor(meta), view)
}

// topicData backs the topic detail page
type topicData struct {
	Card       present.TopicCard
	Feed       []present.FeedItem
	Comparison *present.ClaimPair
	Graph      graphView
	Errors     map[string]*present.Banner
}

func newTopicData(detail *model.TopicDetail, now time.Time) *topicData {
	sortClaims(detail.Claims)
	feed := present.BuildFeed(detail.Claims, now)
	return &topicData{
		Card:       present.TopicCards([]model.Topic{detail.Topic}, "")[0],
		Feed:       feed,
		Comparison: present.PairDisputed(feed),
	}
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.panelContext(r)
	defer cancel()

	detail, meta, err := s.store.Topic(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.render(w, r, statusFor(err), "topic", "Topic", []present.Banner{bannerForError(err)}, (*topicData)(nil))
		return
	}

	// The graph API filters by keywords, so the title narrows it
	p := s.loadPanels(ctx, panelJob("graph", func(ctx context.Context) (graphView, backend.Meta, error) {
		return s.graph(ctx, detail.Topic.Title)
	}))
	data := newTopicData(detail, s.now())
	data.Graph = pick[graphView](p, "graph")
	data.Errors = p.errors
	p.metas = append(p.metas, meta)

	s.render(w, r, http.StatusOK, "topic", detail.Topic.Title, p.banners(), data)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.panelContext(r)
	defer cancel()

	rows, meta, err := s.credibility(ctx)
	if err != nil {
		s.render(w, r, statusFor(err), "sources", "Sources", []present.Banner{bannerForError(err)}, rows)
		return
	}
	banners := bannersFor(meta)
	if len(rows) == 0 {
		banners = append(banners, present.BannerNoData)
	}
	s.render(w, r, http.StatusOK, "sources", "Sources", banners, rows)
}

type analyticsData struct {
	Trend   present.AreaChart
	Sources present.BarChart
	Claims  present.DonutChart
	Errors  map[string]*present.Banner
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.panelContext(r)
	defer cancel()

	p := s.loadPanels(ctx,
		panelJob("trend", s.trendChart),
		panelJob("sources", s.sourcesChart),
		panelJob("claims", s.claimsChart),
	)
	data := analyticsData{
		Trend:   pick[present.AreaChart](p, "trend"),
		Sources: pick[present.BarChart](p, "sources"),
		Claims:  pick[present.DonutChart](p, "claims"),
		Errors:  p.errors,
	}
	s.render(w, r, http.StatusOK, "analytics", "Analytics", p.banners(), data)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.panelContext(r)
	defer cancel()

	view, meta, err := s.graph(ctx, strings.TrimSpace(r.URL.Query().Get("topic")))
	if err != nil {
		s.render(w, r, statusFor(err), "graph", "Narrative Graph", []present.Banner{bannerForError(err)}, view)
		return
	}
	banners := bannersFor(meta)
	if len(view.Graph.Nodes) == 0 {
		banners = append(banners, present.BannerNoData)
	}
	s.render(w, r, http.StatusOK, "graph", "Narrative Graph", banners, view)
}

type anchorData struct {
	Jobs      []model.BriefingJob
	Topic     string
	Tone      string
	Duration  string
	Tones     []string
	Durations []string
}

var (
	anchorTones     = []string{"professional", "casual", "urgent"}
	anchorDurations = []string{model.DurationShort, model.DurationMedium, model.DurationDetailed}
)

func (s *Server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	s.renderAnchor(w, r, http.StatusOK, nil, broadcast.Request{Topic: strings.TrimSpace(r.URL.Query().Get("topic"))})
}

func (s *Server) renderAnchor(w http.ResponseWriter, r *http.Request, status int, banners []present.Banner, req broadcast.Request) {
	s.render(w, r, status, "anchor", "AI Anchor", banners, anchorData{
		Jobs:      s.briefings.List(),
		Topic:     req.Topic,
		Tone:      req.Tone,
		Duration:  req.Duration,
		Tones:     anchorTones,
		Durations: anchorDurations,
	})
}

type settingsData struct {
	Themes        []layout.Theme
	Notifications []string
	Mode          string
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "settings", "Settings", nil, settingsData{
		Themes:        []layout.Theme{layout.ThemeLight, layout.ThemeDark, layout.ThemeSystem},
		Notifications: layout.NotificationKeys,
		Mode:          s.store.Mode(),
	})
}

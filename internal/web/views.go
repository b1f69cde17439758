package web

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/present"
	"github.com/ppiankov/clarifai/internal/worker"
)

// loaded is a panel value with the metadata of the load that produced it
type loaded[T any] struct {
	Value T
	Meta  backend.Meta
}

func panelJob[T any](name string, load func(context.Context) (T, backend.Meta, error)) *worker.PanelJob {
	return &worker.PanelJob{
		Name: name,
		Load: func(ctx context.Context) (any, error) {
			v, meta, err := load(ctx)
			if err != nil {
				return nil, err
			}
			return loaded[T]{Value: v, Meta: meta}, nil
		},
	}
}

// panels collects typed results and the banners they raise
type panels struct {
	results map[string]*worker.PanelResult
	metas   []backend.Meta
	errors  map[string]*present.Banner
}

func (s *Server) loadPanels(ctx context.Context, jobs ...*worker.PanelJob) *panels {
	return &panels{
		results: s.panels.Load(ctx, jobs...),
		errors:  make(map[string]*present.Banner),
	}
}

func pick[T any](p *panels, name string) T {
	if v, ok := worker.Value[loaded[T]](p.results, name); ok {
		p.metas = append(p.metas, v.Meta)
		return v.Value
	}
	if r, ok := p.results[name]; ok && r.Err != nil {
		b := bannerForError(r.Err)
		p.errors[name] = &b
	}
	var zero T
	return zero
}

func (p *panels) banners() []present.Banner {
	return bannersFor(p.metas...)
}

func (s *Server) credibility(ctx context.Context) ([]present.CredibilityRow, backend.Meta, error) {
	sources, meta, err := s.store.Sources(ctx)
	if err != nil {
		return nil, meta, err
	}
	return present.RankSources(sources), meta, nil
}

func (s *Server) claimFeed(ctx context.Context, topic string) ([]present.FeedItem, backend.Meta, error) {
	claims, meta, err := s.store.Claims(ctx, topic)
	if err != nil {
		return nil, meta, err
	}
	sortClaims(claims)
	return present.BuildFeed(claims, s.now()), meta, nil
}

// sortClaims puts the most recent claim first; undated claims sink
func sortClaims(claims []model.Claim) {
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Timestamp.After(claims[j].Timestamp.Time)
	})
}

// topicsView backs the news page
type topicsView struct {
	Cards  []present.TopicCard       `json:"cards"`
	Counts map[present.RiskLevel]int `json:"counts"`
	Level  present.RiskLevel         `json:"level,omitempty"`
	Levels []present.RiskLevel       `json:"-"`
}

func (s *Server) topicCards(ctx context.Context, level present.RiskLevel, refresh bool) (topicsView, backend.Meta, error) {
	topics, meta, err := s.store.Topics(ctx, refresh)
	if err != nil {
		return topicsView{}, meta, err
	}
	return newTopicsView(topics, level), meta, nil
}

func newTopicsView(topics []model.Topic, level present.RiskLevel) topicsView {
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].RiskScore > topics[j].RiskScore
	})
	return topicsView{
		Cards:  present.TopicCards(topics, level),
		Counts: present.RiskCounts(topics),
		Level:  level,
		Levels: present.RiskLevels,
	}
}

func (s *Server) statCards(ctx context.Context) ([]present.StatCard, backend.Meta, error) {
	stats, meta, err := s.store.Stats(ctx)
	if err != nil {
		return nil, meta, err
	}
	return present.StatCards(*stats), meta, nil
}

func (s *Server) claimsChart(ctx context.Context) (present.DonutChart, backend.Meta, error) {
	counts, meta, err := s.store.ClaimCounts(ctx)
	if err != nil {
		return present.DonutChart{}, meta, err
	}
	return present.BreakdownDonut(present.BreakdownFromCounts(counts)), meta, nil
}

func (s *Server) sourcesChart(ctx context.Context) (present.BarChart, backend.Meta, error) {
	accuracy, meta, err := s.store.SourceAccuracy(ctx)
	if err != nil {
		return present.BarChart{}, meta, err
	}
	data := make([]present.BarDatum, 0, len(accuracy))
	for _, a := range accuracy {
		data = append(data, present.BarDatum{Name: a.Name, Value: a.Accuracy, Claims: a.Claims})
	}
	return present.NewBarChart(data, 0, true), meta, nil
}

func (s *Server) trendChart(ctx context.Context) (present.AreaChart, backend.Meta, error) {
	series, meta, err := s.store.WeeklyTrend(ctx)
	if err != nil {
		return present.AreaChart{}, meta, err
	}
	return present.NewAreaChart(series, 0, true), meta, nil
}

// graphView backs the narrative graph page
type graphView struct {
	Graph  *model.GraphResponse   `json:"graph"`
	Counts map[model.NodeType]int `json:"counts"`
	Totals model.GraphStats       `json:"totals,omitempty"` // Whole graph, by label
	Labels map[string]string      `json:"-"`
}

func (s *Server) graph(ctx context.Context, topic string) (graphView, backend.Meta, error) {
	g, meta, err := s.store.Graph(ctx, topic)
	if err != nil {
		return graphView{}, meta, err
	}
	view := graphView{
		Graph:  g,
		Counts: make(map[model.NodeType]int),
		Labels: make(map[string]string, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		view.Counts[n.Type]++
		view.Labels[n.ID] = n.Label
	}

	totals, _, err := s.store.GraphStats(ctx)
	if err != nil {
		s.logger.Debug("graph stats unavailable", zap.Error(err))
	} else {
		view.Totals = totals
	}
	return view, meta, nil
}

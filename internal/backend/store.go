package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/demo"
	"github.com/ppiankov/clarifai/internal/model"
)

// Store is the dashboard's data source. Depending on the mode it serves the
// API, the demo data, or the API with a demo fallback.
type Store struct {
	client      *Client // nil in demo mode
	mode        string
	claimsLimit int
	graphLimit  int
	now         func() time.Time
	logger      *zap.Logger
}

// NewStore creates a store. client may be nil, which forces demo mode.
func NewStore(client *Client, cfg model.APIConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := cfg.Mode
	switch mode {
	case model.ModeAPI, model.ModeDemo, model.ModeAuto:
	default:
		mode = model.ModeAuto
	}
	if client == nil {
		mode = model.ModeDemo
	}

	return &Store{
		client:      client,
		mode:        mode,
		claimsLimit: positive(cfg.ClaimsLimit, 20),
		graphLimit:  positive(cfg.GraphLimit, 50),
		now:         time.Now,
		logger:      logger,
	}
}

// Mode returns the effective data mode
func (s *Store) Mode() string {
	return s.mode
}

// Client returns the API client, nil in demo mode
func (s *Store) Client() *Client {
	return s.client
}

// Sources returns every tracked source
func (s *Store) Sources(ctx context.Context) ([]model.Source, Meta, error) {
	return load(ctx, s, "sources", s.clientSources, func() ([]model.Source, error) {
		return demo.Sources(), nil
	})
}

func (s *Store) clientSources(ctx context.Context) ([]model.Source, Meta, error) {
	return s.client.Sources(ctx)
}

// Claims returns the claim feed, newest first as the API orders it
func (s *Store) Claims(ctx context.Context, topic string) ([]model.Claim, Meta, error) {
	return load(ctx, s, "claims",
		func(ctx context.Context) ([]model.Claim, Meta, error) {
			return s.client.Claims(ctx, topic, s.claimsLimit)
		},
		func() ([]model.Claim, error) {
			claims := demo.Claims(s.now())
			if len(claims) > s.claimsLimit {
				claims = claims[:s.claimsLimit]
			}
			return claims, nil
		})
}

// Topics returns the trending topics
func (s *Store) Topics(ctx context.Context, refresh bool) ([]model.Topic, Meta, error) {
	return load(ctx, s, "topics",
		func(ctx context.Context) ([]model.Topic, Meta, error) {
			resp, meta, err := s.client.Topics(ctx, refresh)
			if err != nil {
				return nil, meta, err
			}
			return resp.Topics, meta, nil
		},
		func() ([]model.Topic, error) {
			return demo.Topics(), nil
		})
}

// Topic returns one topic with its claims
func (s *Store) Topic(ctx context.Context, id string) (*model.TopicDetail, Meta, error) {
	return load(ctx, s, "topic",
		func(ctx context.Context) (*model.TopicDetail, Meta, error) {
			return s.client.Topic(ctx, id)
		},
		func() (*model.TopicDetail, error) {
			for _, t := range demo.Topics() {
				if t.ID == id {
					// Demo claims all belong to the headline topic
					var claims []model.Claim
					if t.IsNew {
						claims = demo.Claims(s.now())
					}
					return &model.TopicDetail{Topic: t, Claims: claims}, nil
				}
			}
			return nil, fmt.Errorf("topic %s: %w", id, ErrNotFound)
		})
}

// Graph returns the knowledge graph, optionally narrowed to a topic
func (s *Store) Graph(ctx context.Context, topic string) (*model.GraphResponse, Meta, error) {
	return load(ctx, s, "graph",
		func(ctx context.Context) (*model.GraphResponse, Meta, error) {
			return s.client.Graph(ctx, topic, s.graphLimit)
		},
		func() (*model.GraphResponse, error) {
			g := demo.Graph()
			g.Topic = topic
			return &g, nil
		})
}

// GraphStats returns node counts by label across the whole graph
func (s *Store) GraphStats(ctx context.Context) (model.GraphStats, Meta, error) {
	return load(ctx, s, "graph stats",
		func(ctx context.Context) (model.GraphStats, Meta, error) {
			return s.client.GraphStats(ctx)
		},
		func() (model.GraphStats, error) {
			stats := make(model.GraphStats)
			for _, n := range demo.Graph().Nodes {
				stats[string(n.Type)]++
			}
			return stats, nil
		})
}

// AnalyzeTopics asks the API to recompute the trending topics and returns them
func (s *Store) AnalyzeTopics(ctx context.Context) ([]model.Topic, Meta, error) {
	return load(ctx, s, "analyze topics",
		func(ctx context.Context) ([]model.Topic, Meta, error) {
			resp, err := s.client.AnalyzeTopics(ctx)
			if err != nil {
				return nil, Meta{Origin: OriginAPI}, err
			}
			return resp.Topics, Meta{Origin: OriginAPI}, nil
		},
		func() ([]model.Topic, error) {
			return demo.Topics(), nil
		})
}

// Stats returns the headline numbers
func (s *Store) Stats(ctx context.Context) (*model.SystemStats, Meta, error) {
	return load(ctx, s, "stats", s.clientStats, func() (*model.SystemStats, error) {
		stats := demo.Stats()
		return &stats, nil
	})
}

func (s *Store) clientStats(ctx context.Context) (*model.SystemStats, Meta, error) {
	return s.client.Stats(ctx)
}

// ClaimCounts returns claim totals per status. The API exposes no
// aggregate, so live counts come from the claim feed.
func (s *Store) ClaimCounts(ctx context.Context) (map[model.ClaimStatus]int, Meta, error) {
	return load(ctx, s, "claim counts",
		func(ctx context.Context) (map[model.ClaimStatus]int, Meta, error) {
			claims, meta, err := s.client.Claims(ctx, "", s.claimsLimit)
			if err != nil {
				return nil, meta, err
			}
			counts := make(map[model.ClaimStatus]int, len(model.ClaimStatuses))
			for _, c := range claims {
				counts[c.Status]++
			}
			return counts, meta, nil
		},
		func() (map[model.ClaimStatus]int, error) {
			return demo.ClaimBreakdown(), nil
		})
}

// SourceAccuracy returns per-source accuracy for the top-sources chart,
// best first
func (s *Store) SourceAccuracy(ctx context.Context) ([]model.SourceAccuracy, Meta, error) {
	return load(ctx, s, "source accuracy",
		func(ctx context.Context) ([]model.SourceAccuracy, Meta, error) {
			sources, meta, err := s.client.Sources(ctx)
			if err != nil {
				return nil, meta, err
			}
			out := make([]model.SourceAccuracy, 0, len(sources))
			for _, src := range sources {
				out = append(out, model.SourceAccuracy{
					Name:     src.Name,
					Accuracy: src.TrustScore,
					Claims:   src.VerifiedClaims + src.Contradictions,
				})
			}
			return out, meta, nil
		},
		func() ([]model.SourceAccuracy, error) {
			return demo.TopSources(), nil
		})
}

// WeeklyTrend returns the claims-per-weekday series. The API has no time
// series endpoint, so this is always demo data.
func (s *Store) WeeklyTrend(context.Context) ([]model.SeriesPoint, Meta, error) {
	return demo.WeeklyTrend(), Meta{Origin: OriginDemo}, nil
}

// VerifyClaim needs the API; there is no offline verdict
func (s *Store) VerifyClaim(ctx context.Context, req model.VerifyRequest) (*model.ClaimVerdict, error) {
	req.Claim = strings.TrimSpace(req.Claim)
	if req.Claim == "" {
		return nil, &model.DataError{Entity: "verify request", Field: "claim", Reason: "is empty"}
	}
	if s.client == nil {
		return nil, &model.ServiceError{Service: "api", Endpoint: "/claims/verify", Err: errors.New("demo mode has no API")}
	}
	return s.client.VerifyClaim(ctx, req)
}

// SourceNames lists the names of every source the dashboard knows, for
// strict citation checks
func (s *Store) SourceNames(ctx context.Context) ([]string, error) {
	sources, _, err := s.Sources(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
	}
	return names, nil
}

// load runs fromAPI, falling back to fromDemo in auto mode when the API is
// unreachable or returns a malformed payload
func load[T any](
	ctx context.Context,
	s *Store,
	what string,
	fromAPI func(context.Context) (T, Meta, error),
	fromDemo func() (T, error),
) (T, Meta, error) {
	if s.mode == model.ModeDemo {
		v, err := fromDemo()
		return v, Meta{Origin: OriginDemo}, err
	}

	v, meta, err := fromAPI(ctx)
	if err == nil {
		return v, meta, nil
	}

	if s.mode == model.ModeAPI || !fallbackable(err) {
		var zero T
		return zero, meta, err
	}

	s.logger.Warn("api unavailable, serving demo data", zap.String("panel", what), zap.Error(err))
	dv, derr := fromDemo()
	return dv, Meta{Origin: OriginDemo, Err: err}, derr
}

func fallbackable(err error) bool {
	return errors.Is(err, model.ErrUnreachableService) || errors.Is(err, model.ErrInvalidDataShape)
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

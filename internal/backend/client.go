// Package backend talks to the ClarifAI API and falls back to cached or
// demo data when it cannot
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/cache"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/util"
	"github.com/ppiankov/clarifai/internal/worker"
)

// Origin says where a response came from
type Origin string

const (
	OriginAPI   Origin = "api"   // Live API response
	OriginCache Origin = "cache" // Fresh cache hit
	OriginStale Origin = "stale" // Last known good response, API unreachable
	OriginDemo  Origin = "demo"  // Built-in demo data
)

// Meta describes how a result was obtained
type Meta struct {
	Origin   Origin
	Rejected int   // Records dropped at the boundary
	Err      error // API failure behind a stale or demo result
}

// Degraded reports whether the result is not live data the user asked for
func (m Meta) Degraded() bool {
	return m.Err != nil
}

// Client calls the ClarifAI API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      *cache.LayeredCache // nil disables caching
	userAgent  string
	maxBytes   int64
	attempts   int
	logger     *zap.Logger
}

// NewClient creates an API client from cfg
func NewClient(cfg *model.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.API.URL, "/"),
		httpClient: util.NewHTTPClient(cfg.HTTP),
		limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		attempts:   max(cfg.HTTP.MaxRetries, 1),
		logger:     logger.With(zap.String("service", "api")),
	}
	if c.maxBytes <= 0 {
		c.maxBytes = 4 << 20
	}
	if cfg.Cache.Enabled {
		c.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
	}
	return c
}

// ClearCache drops every cached response, on disk included
func (c *Client) ClearCache() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Clear()
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Topics fetches the trending topics. refresh bypasses the fresh cache and
// asks the API to recompute.
func (c *Client) Topics(ctx context.Context, refresh bool) (*model.TopicsResponse, Meta, error) {
	var wire struct {
		Topics      records[model.Topic] `json:"topics"`
		Total       int                  `json:"total"`
		LastUpdated *model.Timestamp     `json:"last_updated,omitempty"`
	}
	meta, err := c.getJSON(ctx, "/topics", url.Values{"refresh": {strconv.FormatBool(refresh)}}, &wire, !refresh)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch topics: %w", err)
	}
	resp := &model.TopicsResponse{Total: wire.Total, LastUpdated: wire.LastUpdated}
	resp.Topics, meta.Rejected = filter(c, "topic", wire.Topics, model.ValidateTopic)
	return resp, meta, nil
}

// Topic fetches one topic with its claims
func (c *Client) Topic(ctx context.Context, id string) (*model.TopicDetail, Meta, error) {
	var wire struct {
		Topic  model.Topic          `json:"topic"`
		Claims records[model.Claim] `json:"claims"`
	}
	meta, err := c.getJSON(ctx, "/topics/"+url.PathEscape(id), nil, &wire, true)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch topic %s: %w", id, err)
	}
	if err := model.ValidateTopic(wire.Topic); err != nil {
		return nil, meta, fmt.Errorf("fetch topic %s: %w", id, err)
	}
	resp := &model.TopicDetail{Topic: wire.Topic}
	resp.Claims, meta.Rejected = filter(c, "claim", wire.Claims, model.ValidateClaim)
	c.normalizeClaims(resp.Claims)
	return resp, meta, nil
}

// AnalyzeTopics asks the API to re-run topic selection
func (c *Client) AnalyzeTopics(ctx context.Context) (*model.AnalyzeResponse, error) {
	var wire struct {
		Success    bool                 `json:"success"`
		Topics     records[model.Topic] `json:"topics"`
		AnalyzedAt *model.Timestamp     `json:"analyzed_at,omitempty"`
	}
	if err := c.postJSON(ctx, "/topics/analyze", nil, &wire); err != nil {
		return nil, fmt.Errorf("analyze topics: %w", err)
	}
	resp := &model.AnalyzeResponse{Success: wire.Success, AnalyzedAt: wire.AnalyzedAt}
	resp.Topics, _ = filter(c, "topic", wire.Topics, model.ValidateTopic)
	return resp, nil
}

// Sources fetches every tracked source
func (c *Client) Sources(ctx context.Context) ([]model.Source, Meta, error) {
	var wire struct {
		Sources records[model.Source] `json:"sources"`
	}
	meta, err := c.getJSON(ctx, "/sources", nil, &wire, true)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch sources: %w", err)
	}
	var sources []model.Source
	sources, meta.Rejected = filter(c, "source", wire.Sources, model.ValidateSource)
	return sources, meta, nil
}

// Claims fetches the claim feed, optionally for one topic
func (c *Client) Claims(ctx context.Context, topic string, limit int) ([]model.Claim, Meta, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if topic != "" {
		q.Set("topic", topic)
	}

	var wire struct {
		Claims records[model.Claim] `json:"claims"`
	}
	meta, err := c.getJSON(ctx, "/claims", q, &wire, true)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch claims: %w", err)
	}
	var claims []model.Claim
	claims, meta.Rejected = filter(c, "claim", wire.Claims, model.ValidateClaim)
	c.normalizeClaims(claims)
	return claims, meta, nil
}

// VerifyClaim asks the API for an on-demand verdict
func (c *Client) VerifyClaim(ctx context.Context, req model.VerifyRequest) (*model.ClaimVerdict, error) {
	var verdict model.ClaimVerdict
	if err := c.postJSON(ctx, "/claims/verify", req, &verdict); err != nil {
		return nil, fmt.Errorf("verify claim: %w", err)
	}
	verdict.Status = c.normalizeStatus(verdict.Status, "")
	return &verdict, nil
}

// Graph fetches knowledge-graph nodes and edges
func (c *Client) Graph(ctx context.Context, topic string, limit int) (*model.GraphResponse, Meta, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if topic != "" {
		q.Set("topic", topic)
	}

	var wire struct {
		Nodes records[model.GraphNode] `json:"nodes"`
		Edges records[model.GraphEdge] `json:"edges"`
		Topic string                   `json:"topic,omitempty"`
	}
	meta, err := c.getJSON(ctx, "/graph/nodes", q, &wire, true)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch graph: %w", err)
	}

	resp := &model.GraphResponse{Topic: wire.Topic}
	var badNodes, badEdges int
	resp.Nodes, badNodes = filter(c, "graph node", wire.Nodes, model.ValidateGraphNode)
	resp.Edges, badEdges = filter(c, "graph edge", wire.Edges, model.ValidateGraphEdge)
	meta.Rejected = badNodes + badEdges
	for i := range resp.Nodes {
		t, err := model.ParseNodeType(string(resp.Nodes[i].Type))
		if err != nil {
			c.logger.Debug("unknown node type", zap.String("node", resp.Nodes[i].ID), zap.Error(err))
		}
		resp.Nodes[i].Type = t
	}
	resp.TotalNodes, resp.TotalEdges = len(resp.Nodes), len(resp.Edges)
	return resp, meta, nil
}

// GraphStats fetches node counts by label
func (c *Client) GraphStats(ctx context.Context) (model.GraphStats, Meta, error) {
	var stats model.GraphStats
	meta, err := c.getJSON(ctx, "/graph/stats", nil, &stats, true)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch graph stats: %w", err)
	}
	return stats, meta, nil
}

// GenerateAnchor asks the API to write a briefing script
func (c *Client) GenerateAnchor(ctx context.Context, topic, tone, duration string) (*model.AnchorScript, error) {
	body := map[string]string{"topic": topic, "tone": tone, "duration": duration}
	var script model.AnchorScript
	if err := c.postJSON(ctx, "/anchor/generate", body, &script); err != nil {
		return nil, fmt.Errorf("generate anchor script: %w", err)
	}
	return &script, nil
}

// Stats fetches the headline numbers
func (c *Client) Stats(ctx context.Context) (*model.SystemStats, Meta, error) {
	var stats model.SystemStats
	meta, err := c.getJSON(ctx, "/stats", nil, &stats, true)
	if err != nil {
		return nil, meta, fmt.Errorf("fetch stats: %w", err)
	}
	return &stats, meta, nil
}

// Health checks the API without touching the cache
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	var h model.Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("health check: %w", decodeError("/health", err))
	}
	return &h, nil
}

// getJSON decodes a GET response into out. A fresh cache hit skips the
// network when useFresh is set; when the API is unreachable the last known
// good response is served with Meta.Err set. A 404 evicts the entry.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any, useFresh bool) (Meta, error) {
	key := cache.Key(path, query)
	if c.cache != nil && useFresh {
		if body, ok := c.cache.Get(key); ok && json.Unmarshal(body, out) == nil {
			return Meta{Origin: OriginCache}, nil
		}
	}

	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		if c.cache != nil && errors.Is(err, model.ErrUnreachableService) {
			if stale, ok := c.cache.LastKnown(key); ok && json.Unmarshal(stale, out) == nil {
				c.logger.Warn("serving last known response", zap.String("endpoint", path), zap.Error(err))
				return Meta{Origin: OriginStale, Err: err}, nil
			}
		}
		if c.cache != nil && errors.Is(err, ErrNotFound) {
			_ = c.cache.Delete(key)
		}
		return Meta{}, err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return Meta{}, decodeError(path, err)
	}
	if c.cache != nil {
		if err := c.cache.Set(key, body, 0); err != nil {
			c.logger.Debug("cache write failed", zap.String("endpoint", path), zap.Error(err))
		}
	}
	return Meta{Origin: OriginAPI}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return decodeError(path, err)
	}
	return nil
}

// do sends a request, retrying transient failures with exponential backoff
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request",
				zap.String("endpoint", path),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			if err := sleepFunc(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}

		body, err := c.once(ctx, method, endpoint, path, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, endpoint, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &model.ServiceError{Service: "api", Endpoint: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, &model.ServiceError{Service: "api", Endpoint: path, Err: fmt.Errorf("read body: %w", err)}
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &model.ServiceError{Service: "api", Endpoint: path, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Detail: apiDetail(body)}
	}
	return body, nil
}

// apiDetail extracts the "detail" message the API puts in error bodies
func apiDetail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Detail
}

func decodeError(path string, err error) error {
	return &model.DataError{Entity: "response", ID: path, Field: "body", Reason: "is not valid JSON: " + err.Error()}
}

// normalizeClaims maps status literals onto the four known values
func (c *Client) normalizeClaims(claims []model.Claim) {
	for i := range claims {
		claims[i].Status = c.normalizeStatus(claims[i].Status, claims[i].ID)
	}
}

func (c *Client) normalizeStatus(raw model.ClaimStatus, id string) model.ClaimStatus {
	status, err := model.ParseClaimStatus(string(raw))
	if err != nil {
		c.logger.Debug("unknown claim status", zap.String("claim", id), zap.Error(err))
	}
	return status
}

// records is a JSON list decoded one element at a time, so a record with a
// wrong-typed field is rejected on its own instead of failing the payload
type records[T any] struct {
	items []T
	bad   []error
}

func (r *records[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.items = make([]T, 0, len(raw))
	r.bad = nil
	for i, msg := range raw {
		var v T
		if err := json.Unmarshal(msg, &v); err != nil {
			r.bad = append(r.bad, &model.DataError{
				ID:     recordID(msg, i),
				Field:  "record",
				Reason: "does not decode: " + err.Error(),
			})
			continue
		}
		r.items = append(r.items, v)
	}
	return nil
}

// recordID returns the record's id when it has a string one, else its index
func recordID(msg json.RawMessage, index int) string {
	var ident struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(msg, &ident) == nil && ident.ID != "" {
		return ident.ID
	}
	return "#" + strconv.Itoa(index)
}

// filter drops records that failed to decode or validate and logs each
// rejection
func filter[T any](c *Client, what string, list records[T], validate func(T) error) ([]T, int) {
	kept, rejected := model.FilterValid(list.items, validate)
	for _, err := range list.bad {
		var de *model.DataError
		if errors.As(err, &de) {
			de.Entity = what
		}
		rejected = append(rejected, err)
	}
	for _, err := range rejected {
		c.logger.Warn("dropping malformed record", zap.String("list", what), zap.Error(err))
	}
	return kept, len(rejected)
}

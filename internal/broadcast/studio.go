// Package broadcast submits briefing scripts to the broadcast studio and
// tracks the resulting render jobs
package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/util"
)

// Studio is the render service behind the anchor panel
type Studio interface {
	Submit(ctx context.Context, script *model.AnchorScript) (*RemoteJob, error)
	Status(ctx context.Context, id string) (*RemoteJob, error)
	Cancel(ctx context.Context, id string) error
}

// RemoteJob is the studio's view of a job
type RemoteJob struct {
	ID       string          `json:"id"`
	Status   model.JobStatus `json:"status"`
	Progress int             `json:"progress"`
	VideoURL string          `json:"video_url,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// StudioClient talks to the studio jobs API over HTTP
type StudioClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewStudioClient creates a client for the studio at baseURL
func NewStudioClient(baseURL string, cfg model.HTTPConfig) *StudioClient {
	return &StudioClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: util.NewHTTPClient(cfg),
		userAgent:  cfg.UserAgent,
	}
}

type submitRequest struct {
	Topic    string                `json:"topic"`
	Segments []model.AnchorSegment `json:"segments"`
}

// Submit queues a script for rendering; the studio answers 202 with the job ID
func (c *StudioClient) Submit(ctx context.Context, script *model.AnchorScript) (*RemoteJob, error) {
	payload, err := json.Marshal(submitRequest{Topic: script.Topic, Segments: script.Segments})
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}

	var job RemoteJob
	if err := c.call(ctx, http.MethodPost, "/jobs", payload, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, &model.DataError{Entity: "studio job", Field: "id", Reason: "is empty"}
	}
	return &job, nil
}

// Status fetches the current state of a job
func (c *StudioClient) Status(ctx context.Context, id string) (*RemoteJob, error) {
	var job RemoteJob
	if err := c.call(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Cancel asks the studio to stop rendering a job
func (c *StudioClient) Cancel(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(id), nil, nil)
}

func (c *StudioClient) call(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &model.ServiceError{Service: "broadcast", Endpoint: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &model.ServiceError{Service: "broadcast", Endpoint: path, Err: fmt.Errorf("read body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("studio %s: %w", path, ErrJobNotFound)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return &model.ServiceError{Service: "broadcast", Endpoint: path, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("studio %s: unexpected status %d", path, resp.StatusCode)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.DataError{Entity: "studio response", ID: path, Field: "body", Reason: "is not valid JSON: " + err.Error()}
	}
	return nil
}

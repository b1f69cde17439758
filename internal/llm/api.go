package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/clarifai/internal/model"
)

// AnchorAPI is the ClarifAI endpoint that writes briefing scripts server side
type AnchorAPI interface {
	GenerateAnchor(ctx context.Context, topic, tone, duration string) (*model.AnchorScript, error)
	Health(ctx context.Context) (*model.Health, error)
}

// APIProvider delegates script writing to POST /anchor/generate
type APIProvider struct {
	api AnchorAPI
	now func() time.Time
}

// NewAPIProvider creates a provider backed by api
func NewAPIProvider(api AnchorAPI) *APIProvider {
	return &APIProvider{api: api, now: time.Now}
}

// Name returns the provider name
func (p *APIProvider) Name() string {
	return "api"
}

// IsAvailable reports whether the API answers its health check
func (p *APIProvider) IsAvailable(ctx context.Context) bool {
	h, err := p.api.Health(ctx)
	return err == nil && h.API != ""
}

// WriteScript asks the API for a script and fills the segment defaults the
// studio expects. The API picks its own facts, so req.Facts is not sent.
func (p *APIProvider) WriteScript(ctx context.Context, req ScriptRequest) (*model.AnchorScript, error) {
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}
	script, err := p.api.GenerateAnchor(ctx, req.Topic, tone, req.Duration)
	if err != nil {
		return nil, err
	}

	_, hi := SegmentRange(req.Duration)
	segments := make([]model.AnchorSegment, 0, hi)
	for _, s := range script.Segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		if len(segments) == hi {
			break
		}
		segments = append(segments, withSegmentDefaults(s, req.Voice))
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("api script for %q has no segments", req.Topic)
	}

	out := &model.AnchorScript{
		Topic:        req.Topic,
		Segments:     segments,
		SourcesCited: script.SourcesCited,
		GeneratedAt:  script.GeneratedAt,
	}
	if out.SourcesCited == nil {
		out.SourcesCited = []string{}
	}
	if out.GeneratedAt.IsZero() {
		out.GeneratedAt = p.now().UTC()
	}
	return out, nil
}

// withSegmentDefaults fills empty presentation fields; voice overrides the
// segment's voice when set
func withSegmentDefaults(s model.AnchorSegment, voice string) model.AnchorSegment {
	if voice != "" {
		s.Voice = voice
	}
	if s.Voice == "" {
		s.Voice = model.DefaultVoice
	}
	if s.Mood == "" {
		s.Mood = model.DefaultMood
	}
	if s.View == "" {
		s.View = model.DefaultView
	}
	if s.Speed <= 0 {
		s.Speed = 1.0
	}
	if s.Delay <= 0 {
		s.Delay = model.DefaultDelay
	}
	return s
}

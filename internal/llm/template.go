package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/clarifai/internal/model"
)

// Template lines
const (
	lineIntro   = "Based on multiple verified sources, here's what we know so far."
	lineMonitor = "We will continue to monitor this developing story and provide updates as more verified information becomes available."
	lineSignOff = "This is ClarifAI, bringing you truth in the age of misinformation."
)

// TemplateProvider writes scripts from fixed lines and the verified facts.
// It needs no network and is always available.
type TemplateProvider struct {
	now func() time.Time
}

// NewTemplateProvider creates the template writer
func NewTemplateProvider() *TemplateProvider {
	return &TemplateProvider{now: time.Now}
}

// Name returns the provider name
func (p *TemplateProvider) Name() string {
	return "template"
}

// IsAvailable is always true
func (p *TemplateProvider) IsAvailable(context.Context) bool {
	return true
}

// WriteScript opens with a greeting, reports as many facts as the duration
// allows and signs off. The intro and monitoring lines fill spare room.
func (p *TemplateProvider) WriteScript(_ context.Context, req ScriptRequest) (*model.AnchorScript, error) {
	voice := req.Voice
	if voice == "" {
		voice = model.DefaultVoice
	}
	seg := func(text, gesture string, delay int) model.AnchorSegment {
		return model.AnchorSegment{
			Text:    text,
			Mood:    model.DefaultMood,
			View:    model.DefaultView,
			Gesture: gesture,
			Voice:   voice,
			Speed:   1.0,
			Delay:   delay,
		}
	}

	_, hi := SegmentRange(req.Duration)
	room := hi - 2

	facts := req.Facts
	if len(facts) > room {
		facts = facts[:room]
	}

	var middle []model.AnchorSegment
	if len(facts)+1 <= room {
		middle = append(middle, seg(lineIntro, "nod", model.DefaultDelay))
	}
	var cited []string
	seen := make(map[string]bool)
	for _, f := range facts {
		middle = append(middle, seg(fmt.Sprintf("%s reports: %s.", f.Source, strings.TrimRight(f.Text, ". ")), "", model.DefaultDelay))
		if f.Source != "" && !seen[normalizeName(f.Source)] {
			seen[normalizeName(f.Source)] = true
			cited = append(cited, f.Source)
		}
	}
	if len(middle)+1 <= room {
		middle = append(middle, seg(lineMonitor, "", model.DefaultDelay))
	}

	segments := make([]model.AnchorSegment, 0, len(middle)+2)
	segments = append(segments, seg(fmt.Sprintf("Good evening. Here's your verified briefing on %s.", req.Topic), "", model.DefaultDelay))
	segments = append(segments, middle...)
	segments = append(segments, seg(lineSignOff, "wave", 500))

	if cited == nil {
		cited = []string{}
	}
	return &model.AnchorScript{
		Topic:        req.Topic,
		Segments:     segments,
		SourcesCited: cited,
		GeneratedAt:  p.now().UTC(),
	}, nil
}

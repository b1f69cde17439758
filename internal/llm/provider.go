package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/clarifai/internal/model"
)

// ErrCitationLeak marks a script citing a source outside the allowlist
var ErrCitationLeak = errors.New("citation leak")

// Provider writes anchor briefing scripts
type Provider interface {
	// Name returns the provider name
	Name() string

	// WriteScript produces a script for the request's topic and facts
	WriteScript(ctx context.Context, req ScriptRequest) (*model.AnchorScript, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Fact is one verified claim the anchor may report
type Fact struct {
	Text   string
	Source string
}

// ScriptRequest is the input of a script writer
type ScriptRequest struct {
	Topic string

	// Facts are verified claims, most recent first
	Facts []Fact

	// Sources is the STRICT allowlist of source names a script may cite
	Sources []string

	Tone     string // professional, casual, urgent
	Duration string // short, medium, detailed
	Voice    string

	// Model overrides the configured model
	Model     string
	MaxTokens int
}

// Config holds script writer configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (template only)
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictSources rejects scripts citing unknown sources
	StrictSources bool

	MaxTokens int

	// API backs the "api" provider; set by the caller when the ClarifAI API is in use
	API AnchorAPI
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:      c.Provider,
		Model:         c.Model,
		APIKey:        c.APIKey,
		BaseURL:       c.BaseURL,
		Timeout:       c.Timeout,
		StrictSources: c.StrictSources,
		MaxTokens:     c.MaxTokens,
	}
}

// SegmentRange returns the allowed segment counts for a duration.
// Unknown durations are treated as short.
func SegmentRange(duration string) (lo, hi int) {
	switch duration {
	case model.DurationMedium:
		return 4, 5
	case model.DurationDetailed:
		return 6, 8
	default:
		return 2, 3
	}
}

// CheckCitations fails when any cited name is not in allowed.
// Names compare case-insensitively.
func CheckCitations(cited, allowed []string) error {
	known := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		known[normalizeName(a)] = true
	}
	for _, c := range cited {
		if !known[normalizeName(c)] {
			return fmt.Errorf("source %q is not tracked by the dashboard: %w", c, ErrCitationLeak)
		}
	}
	return nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BuildPrompt constructs the script prompt with strict source mode
func BuildPrompt(req ScriptRequest) string {
	lo, hi := SegmentRange(req.Duration)
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are writing a spoken news briefing for an AI news anchor about: %s

CRITICAL RULES:
1. You MUST ONLY cite sources from this allowed list:
%s

2. Report only the verified facts listed below. Do not add facts, numbers or quotes.
3. If the facts are thin, say that the story is developing.
4. Tone: %s.
5. Write between %d and %d segments. The first segment greets the viewer,
   the last signs off as ClarifAI.

Verified facts:
`, req.Topic, joinNames(req.Sources), tone, lo, hi)

	if len(req.Facts) == 0 {
		b.WriteString("- (No verified facts yet)\n")
	}
	for i, f := range req.Facts {
		if i >= 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(req.Facts)-10)
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", f.Text, f.Source)
	}

	b.WriteString(`
Respond with a JSON object only:
{"segments":[{"text":"...","mood":"neutral|happy|concerned","gesture":"nod|wave|"}],"sources_cited":["..."]}`)
	return b.String()
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(No sources available)"
	}
	var b strings.Builder
	for i, n := range names {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more sources", len(names)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", n)
	}
	return b.String()
}

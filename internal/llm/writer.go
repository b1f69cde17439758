package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/model"
)

// ScriptResult is a script together with how it was produced
type ScriptResult struct {
	Script   *model.AnchorScript
	Provider string
	Warnings []string
}

// ScriptWriter runs the configured provider and falls back to the template
// writer when the provider fails. In strict mode every script, whichever
// provider wrote it, must cite only allowlisted sources; the template is
// only given facts from allowlisted sources.
type ScriptWriter struct {
	provider Provider // nil: template only
	template *TemplateProvider
	strict   bool
	logger   *zap.Logger
}

// NewScriptWriter builds a writer from config
func NewScriptWriter(config Config, logger *zap.Logger) (*ScriptWriter, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return newScriptWriter(provider, config.StrictSources, logger), nil
}

func newScriptWriter(provider Provider, strict bool, logger *zap.Logger) *ScriptWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptWriter{
		provider: provider,
		template: NewTemplateProvider(),
		strict:   strict,
		logger:   logger,
	}
}

// ProviderName returns the primary provider, "template" when none is configured
func (w *ScriptWriter) ProviderName() string {
	if w.provider == nil {
		return w.template.Name()
	}
	return w.provider.Name()
}

// Available reports whether the primary provider answers. The template
// writer is always available.
func (w *ScriptWriter) Available(ctx context.Context) bool {
	if w.provider == nil {
		return true
	}
	return w.provider.IsAvailable(ctx)
}

// Write produces a script for req
func (w *ScriptWriter) Write(ctx context.Context, req ScriptRequest) (*ScriptResult, error) {
	var warnings []string

	if w.provider != nil {
		script, err := w.provider.WriteScript(ctx, req)
		if err == nil {
			err = w.check(script, req)
		}
		if err == nil {
			return &ScriptResult{Script: script, Provider: w.provider.Name()}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.logger.Warn("script provider failed, using template",
			zap.String("provider", w.provider.Name()),
			zap.String("topic", req.Topic),
			zap.Error(err))
		warnings = append(warnings, fmt.Sprintf("%s failed: %v; using template script", w.provider.Name(), err))
	}

	if w.strict {
		var dropped int
		req.Facts, dropped = trackedFacts(req.Facts, req.Sources)
		if dropped > 0 {
			w.logger.Debug("template skips facts from untracked sources",
				zap.String("topic", req.Topic), zap.Int("dropped", dropped))
			warnings = append(warnings, fmt.Sprintf("%d facts from untracked sources left out", dropped))
		}
	}
	script, err := w.template.WriteScript(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := w.check(script, req); err != nil {
		return nil, err
	}
	return &ScriptResult{Script: script, Provider: w.template.Name(), Warnings: warnings}, nil
}

func (w *ScriptWriter) check(script *model.AnchorScript, req ScriptRequest) error {
	if !w.strict {
		return nil
	}
	if err := CheckCitations(script.SourcesCited, req.Sources); err != nil {
		return fmt.Errorf("strict sources: %w", err)
	}
	return nil
}

// trackedFacts keeps the facts whose source is in allowed. Facts without a
// source cite nothing and are kept.
func trackedFacts(facts []Fact, allowed []string) ([]Fact, int) {
	known := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		known[normalizeName(a)] = true
	}
	kept := make([]Fact, 0, len(facts))
	for _, f := range facts {
		if strings.TrimSpace(f.Source) != "" && !known[normalizeName(f.Source)] {
			continue
		}
		kept = append(kept, f)
	}
	return kept, len(facts) - len(kept)
}

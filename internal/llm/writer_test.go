package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clarifai/internal/model"
)

type stubProvider struct {
	script *model.AnchorScript
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) IsAvailable(context.Context) bool { return true }
func (s *stubProvider) WriteScript(context.Context, ScriptRequest) (*model.AnchorScript, error) {
	s.calls++
	return s.script, s.err
}

func scriptCiting(names ...string) *model.AnchorScript {
	return &model.AnchorScript{
		Topic:        "T",
		Segments:     []model.AnchorSegment{{Text: "hello"}},
		SourcesCited: names,
	}
}

func TestScriptWriter_UsesProvider(t *testing.T) {
	stub := &stubProvider{script: scriptCiting("Reuters")}
	w := newScriptWriter(stub, true, nil)

	res, err := w.Write(context.Background(), ScriptRequest{Topic: "T", Sources: []string{"Reuters"}})
	require.NoError(t, err)

	assert.Equal(t, "stub", res.Provider)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "stub", w.ProviderName())
}

func TestScriptWriter_StrictRejectsUnknownCitation(t *testing.T) {
	stub := &stubProvider{script: scriptCiting("Reuters", "Daily Rumor")}
	w := newScriptWriter(stub, true, nil)

	res, err := w.Write(context.Background(), ScriptRequest{
		Topic:   "T",
		Sources: []string{"Reuters"},
		Facts:   []Fact{{Text: "calm markets", Source: "Reuters"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "template", res.Provider)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Daily Rumor")
	assert.Equal(t, []string{"Reuters"}, res.Script.SourcesCited)
}

func TestScriptWriter_LenientKeepsCitation(t *testing.T) {
	stub := &stubProvider{script: scriptCiting("Daily Rumor")}
	w := newScriptWriter(stub, false, nil)

	res, err := w.Write(context.Background(), ScriptRequest{Topic: "T"})
	require.NoError(t, err)
	assert.Equal(t, "stub", res.Provider)
}

func TestScriptWriter_TemplateLeavesOutUntrackedFacts(t *testing.T) {
	w := newScriptWriter(nil, true, nil)

	res, err := w.Write(context.Background(), ScriptRequest{
		Topic:    "T",
		Duration: "60s",
		Sources:  []string{"NDTV"},
		Facts: []Fact{
			{Text: "Turnout hit a record.", Source: "Reuters"},
			{Text: "Counting starts Monday", Source: "NDTV"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "template", res.Provider)
	assert.Equal(t, []string{"NDTV"}, res.Script.SourcesCited)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "1 facts from untracked sources")
	for _, seg := range res.Script.Segments {
		assert.NotContains(t, seg.Text, "Reuters")
	}
}

func TestScriptWriter_ProviderLeakStillRejected(t *testing.T) {
	stub := &stubProvider{script: scriptCiting("Unknown Blog")}
	w := newScriptWriter(stub, true, nil)

	res, err := w.Write(context.Background(), ScriptRequest{
		Topic:   "T",
		Sources: []string{"NDTV"},
		Facts:   []Fact{{Text: "x", Source: "Unknown Blog"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "template", res.Provider)
	assert.Empty(t, res.Script.SourcesCited)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "citation leak")
}

func TestTrackedFacts(t *testing.T) {
	kept, dropped := trackedFacts([]Fact{
		{Text: "a", Source: " ndtv "},
		{Text: "b", Source: "Reuters"},
		{Text: "c"},
	}, []string{"NDTV"})

	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].Text)
	assert.Equal(t, "c", kept[1].Text)
}

func TestScriptWriter_ProviderErrorFallsBack(t *testing.T) {
	stub := &stubProvider{err: errors.New("boom")}
	w := newScriptWriter(stub, true, nil)

	res, err := w.Write(context.Background(), ScriptRequest{Topic: "T"})
	require.NoError(t, err)
	assert.Equal(t, "template", res.Provider)
	assert.Equal(t, 1, stub.calls)
}

func TestScriptWriter_CancelledContext(t *testing.T) {
	stub := &stubProvider{err: context.Canceled}
	w := newScriptWriter(stub, true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Write(ctx, ScriptRequest{Topic: "T"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewScriptWriter_TemplateOnly(t *testing.T) {
	w, err := NewScriptWriter(ConfigFromModel(model.LLMConfig{StrictSources: true}), nil)
	require.NoError(t, err)
	assert.Equal(t, "template", w.ProviderName())
}

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clarifai/internal/demo"
	"github.com/ppiankov/clarifai/internal/model"
)

func unreachableClient(t *testing.T) *Client {
	t.Helper()
	noSleep(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()
	return NewClient(testConfig(url), nil)
}

func TestStore_AutoFallsBackToDemo(t *testing.T) {
	store := NewStore(unreachableClient(t), model.APIConfig{Mode: model.ModeAuto}, nil)

	sources, meta, err := store.Sources(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OriginDemo, meta.Origin)
	assert.ErrorIs(t, meta.Err, model.ErrUnreachableService)
	assert.Equal(t, demo.Sources(), sources)
}

func TestStore_WrongTypedRecordKeepsLiveData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"sources":[
			{"id":"toi","name":"Times of India","trust_score":94},
			{"id":"bad","name":"Bad Source","trust_score":"high"},
			{"id":"unknown","name":"Unknown Blog","trust_score":23}
		]}`)
	}))
	defer server.Close()

	for _, mode := range []string{model.ModeAuto, model.ModeAPI} {
		t.Run(mode, func(t *testing.T) {
			store := NewStore(NewClient(testConfig(server.URL), nil), model.APIConfig{Mode: mode}, nil)

			sources, meta, err := store.Sources(context.Background())

			require.NoError(t, err)
			assert.Equal(t, OriginAPI, meta.Origin)
			assert.Equal(t, 1, meta.Rejected)
			assert.Len(t, sources, 2)
		})
	}
}

func TestStore_APIModeSurfacesError(t *testing.T) {
	store := NewStore(unreachableClient(t), model.APIConfig{Mode: model.ModeAPI}, nil)

	_, _, err := store.Topics(context.Background(), false)
	assert.ErrorIs(t, err, model.ErrUnreachableService)
}

func TestStore_DemoModeNeverCallsAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call to %s", r.URL.Path)
	}))
	defer server.Close()

	store := NewStore(NewClient(testConfig(server.URL), nil), model.APIConfig{Mode: model.ModeDemo}, nil)

	stats, meta, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginDemo, meta.Origin)
	assert.False(t, meta.Degraded())
	assert.Equal(t, 1247, stats.ClaimsAnalyzed)
}

func TestStore_NilClientForcesDemo(t *testing.T) {
	store := NewStore(nil, model.APIConfig{Mode: model.ModeAPI}, nil)
	assert.Equal(t, model.ModeDemo, store.Mode())

	_, err := store.VerifyClaim(context.Background(), model.VerifyRequest{Claim: "x"})
	assert.ErrorIs(t, err, model.ErrUnreachableService)
}

func TestStore_NotFoundDoesNotFallBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := NewStore(NewClient(testConfig(server.URL), nil), model.APIConfig{Mode: model.ModeAuto}, nil)

	_, _, err := store.Topic(context.Background(), "karnataka-crisis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DemoTopic(t *testing.T) {
	store := NewStore(nil, model.APIConfig{}, nil)

	detail, _, err := store.Topic(context.Background(), "karnataka-crisis")
	require.NoError(t, err)
	assert.Len(t, detail.Claims, 5)

	_, _, err = store.Topic(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ClaimCountsFromFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"claims":[
			{"id":"1","text":"a","status":"verified"},
			{"id":"2","text":"b","status":"verified"},
			{"id":"3","text":"c","status":"weird"}
		],"total":3}`)
	}))
	defer server.Close()

	store := NewStore(NewClient(testConfig(server.URL), nil), model.APIConfig{Mode: model.ModeAPI}, nil)
	counts, meta, err := store.ClaimCounts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OriginAPI, meta.Origin)
	assert.Equal(t, 2, counts[model.StatusVerified])
	assert.Equal(t, 1, counts[model.StatusChecking])
}

func TestStore_SourceNames(t *testing.T) {
	names, err := NewStore(nil, model.APIConfig{}, nil).SourceNames(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "Times of India")
	assert.Len(t, names, len(demo.Sources()))
}

func TestStore_VerifyRejectsEmptyClaim(t *testing.T) {
	_, err := NewStore(nil, model.APIConfig{}, nil).VerifyClaim(context.Background(), model.VerifyRequest{Claim: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidDataShape)
}

func TestStore_GraphStatsDemo(t *testing.T) {
	stats, meta, err := NewStore(nil, model.APIConfig{}, nil).GraphStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginDemo, meta.Origin)

	total := 0
	for _, n := range stats {
		total += n
	}
	assert.Equal(t, len(demo.Graph().Nodes), total)
}

func TestStore_AnalyzeTopics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/topics/analyze", r.URL.Path)
		_, _ = fmt.Fprint(w, `{"success":true,"topics":[
			{"id":"t1","title":"Fresh","risk_score":7,"source_count":3,"claim_count":4},
			{"id":"","title":"broken"}
		]}`)
	}))
	defer server.Close()

	store := NewStore(NewClient(testConfig(server.URL), nil), model.APIConfig{Mode: model.ModeAPI}, nil)
	topics, meta, err := store.AnalyzeTopics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OriginAPI, meta.Origin)
	require.Len(t, topics, 1)
	assert.Equal(t, "Fresh", topics[0].Title)
}

func TestStore_AnalyzeTopicsFallsBack(t *testing.T) {
	store := NewStore(unreachableClient(t), model.APIConfig{Mode: model.ModeAuto}, nil)
	topics, meta, err := store.AnalyzeTopics(context.Background())

	require.NoError(t, err)
	assert.True(t, meta.Degraded())
	assert.Equal(t, demo.Topics(), topics)
}

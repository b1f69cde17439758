package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clarifai/internal/model"
)

// noSleep disables retry backoff for the duration of a test
func noSleep(t *testing.T) {
	t.Helper()
	orig := sleepFunc
	sleepFunc = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { sleepFunc = orig })
}

func testConfig(url string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.API.URL = url
	cfg.Cache.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0
	return cfg
}

func TestClient_SourcesDropsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = fmt.Fprint(w, `{"sources":[
			{"id":"toi","name":"Times of India","domain":"timesofindia.com","trust_score":94,"change":3,"verified_claims":12,"contradictions":0},
			{"id":"","name":"Nameless"},
			{"id":"unknown","name":"Unknown Blog","domain":"unknown-blog.com","trust_score":23}
		],"total":3}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	sources, meta, err := client.Sources(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OriginAPI, meta.Origin)
	assert.Equal(t, 1, meta.Rejected)
	require.Len(t, sources, 2)
	assert.Equal(t, 94, sources[0].TrustScore)
	assert.Equal(t, "unknown", sources[1].ID)
}

func TestClient_WrongTypedRecordDropsOnlyThatRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"sources":[
			{"id":"toi","name":"Times of India","trust_score":94},
			{"id":"bad","name":"Bad Source","trust_score":"high"},
			{"id":"unknown","name":"Unknown Blog","trust_score":23}
		]}`)
	}))
	defer server.Close()

	sources, meta, err := NewClient(testConfig(server.URL), nil).Sources(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OriginAPI, meta.Origin)
	assert.Equal(t, 1, meta.Rejected)
	require.Len(t, sources, 2)
	assert.Equal(t, "toi", sources[0].ID)
	assert.Equal(t, "unknown", sources[1].ID)
}

func TestClient_WrongTypedClaimAndEdge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/claims":
			_, _ = fmt.Fprint(w, `{"claims":[
				{"id":"c1","text":"Turnout was 72%","source":"NDTV","status":"verified"},
				{"id":"c2","text":42},
				"not an object"
			]}`)
		case "/graph/nodes":
			_, _ = fmt.Fprint(w, `{"nodes":[{"id":"n1","type":"Claim"}],"edges":[{"source":"n1","target":7}]}`)
		}
	}))
	defer server.Close()
	client := NewClient(testConfig(server.URL), nil)

	claims, meta, err := client.Claims(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Rejected)
	require.Len(t, claims, 1)
	assert.Equal(t, "c1", claims[0].ID)

	graph, meta, err := client.Graph(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Rejected)
	assert.Len(t, graph.Nodes, 1)
	assert.Empty(t, graph.Edges)
}

func TestRecords_RejectionCarriesID(t *testing.T) {
	var list records[model.Source]
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"bad","trust_score":"x"},{"trust_score":[]}]`), &list))

	assert.Empty(t, list.items)
	require.Len(t, list.bad, 2)
	assert.ErrorIs(t, list.bad[0], model.ErrInvalidDataShape)
	assert.Contains(t, list.bad[0].Error(), `"bad"`)
	assert.Contains(t, list.bad[1].Error(), `"#1"`)
}

func TestClient_ClaimsNormalizesStatusAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "karnataka-crisis", r.URL.Query().Get("topic"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = fmt.Fprint(w, `{"claims":[
			{"id":"c1","text":"a","source":"NDTV","timestamp":"2025-11-20T10:15:00","status":"Verified"},
			{"id":"c2","text":"b","source":"NDTV","timestamp":"2025-11-20T10:10:00","status":"disputed"}
		],"total":2}`)
	}))
	defer server.Close()

	claims, _, err := NewClient(testConfig(server.URL), nil).Claims(context.Background(), "karnataka-crisis", 20)

	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, model.StatusVerified, claims[0].Status)
	assert.Equal(t, model.StatusChecking, claims[1].Status)
}

func TestClient_RetriesTransientThenSucceeds(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{"claims_analyzed":1247,"accuracy_rate":89,"sources_tracked":47,"misinfo_detected":12,"topics_active":4}`)
	}))
	defer server.Close()

	stats, meta, err := NewClient(testConfig(server.URL), nil).Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 1247, stats.ClaimsAnalyzed)
	assert.Equal(t, OriginAPI, meta.Origin)
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"detail":"Topic not found"}`)
	}))
	defer server.Close()

	_, _, err := NewClient(testConfig(server.URL), nil).Topic(context.Background(), "nope")

	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, model.ErrUnreachableService)
	assert.Contains(t, err.Error(), "Topic not found")
}

func TestClient_UnreachableAfterRetries(t *testing.T) {
	noSleep(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := NewClient(testConfig(url), nil).Sources(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnreachableService)
}

func TestClient_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"sources": "not a list"}`)
	}))
	defer server.Close()

	_, _, err := NewClient(testConfig(server.URL), nil).Sources(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidDataShape)
}

func TestClient_FreshCacheSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, `{"sources":[{"id":"toi","name":"Times of India","trust_score":94}],"total":1}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Cache.Enabled = true
	cfg.Cache.MemoryTTL = time.Minute
	client := NewClient(cfg, nil)

	_, first, err := client.Sources(context.Background())
	require.NoError(t, err)
	_, second, err := client.Sources(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OriginAPI, first.Origin)
	assert.Equal(t, OriginCache, second.Origin)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_StaleCacheWhenUnreachable(t *testing.T) {
	noSleep(t)

	var down atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, `{"topics":[{"id":"t1","title":"Topic","risk_score":8}],"total":1}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Cache.Enabled = true
	cfg.Cache.DiskDir = t.TempDir()
	client := NewClient(cfg, nil)

	// refresh=true bypasses the fresh layer but still records last known good
	_, _, err := client.Topics(context.Background(), true)
	require.NoError(t, err)

	down.Store(true)
	resp, meta, err := client.Topics(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, OriginStale, meta.Origin)
	assert.ErrorIs(t, meta.Err, model.ErrUnreachableService)
	assert.True(t, meta.Degraded())
	require.Len(t, resp.Topics, 1)
	assert.Equal(t, "t1", resp.Topics[0].ID)
}

func TestClient_NotFoundEvictsLastKnown(t *testing.T) {
	noSleep(t)

	var status atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(status.Load()); code != 0 {
			w.WriteHeader(code)
			return
		}
		_, _ = fmt.Fprint(w, `{"topics":[{"id":"t1","title":"Topic","risk_score":8}],"total":1}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Cache.Enabled = true
	cfg.Cache.DiskDir = t.TempDir()
	client := NewClient(cfg, nil)

	_, _, err := client.Topics(context.Background(), true)
	require.NoError(t, err)

	status.Store(http.StatusNotFound)
	_, _, err = client.Topics(context.Background(), true)
	require.ErrorIs(t, err, ErrNotFound)

	status.Store(http.StatusBadGateway)
	resp, _, err := client.Topics(context.Background(), true)
	assert.ErrorIs(t, err, model.ErrUnreachableService)
	assert.Nil(t, resp)
}

func TestClient_ClearCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, `{"sources":[{"id":"toi","name":"Times of India","trust_score":94}],"total":1}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Cache.Enabled = true
	cfg.Cache.MemoryTTL = time.Minute
	cfg.Cache.DiskDir = t.TempDir()
	client := NewClient(cfg, nil)

	_, _, err := client.Sources(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.ClearCache())

	_, meta, err := client.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginAPI, meta.Origin)
	assert.Equal(t, int32(2), hits.Load())

	assert.NoError(t, NewClient(testConfig(server.URL), nil).ClearCache())
}

func TestClient_VerifyClaim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req model.VerifyRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "CM has resigned", req.Claim)

		_, _ = fmt.Fprint(w, `{"claim":"CM has resigned","status":"FALSE","confidence":82,"reasoning":"No source confirms","sources_checked":10,"fact_checks_found":2}`)
	}))
	defer server.Close()

	verdict, err := NewClient(testConfig(server.URL), nil).VerifyClaim(context.Background(), model.VerifyRequest{Claim: "CM has resigned"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusFalse, verdict.Status)
	assert.Equal(t, 82, verdict.Confidence)
}

func TestClient_GraphNormalizesTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"nodes":[
			{"id":"e1","label":"Meeting","type":"event"},
			{"id":"p1","label":"Person","type":"person"},
			{"id":"","label":"ghost","type":"claim"}
		],"edges":[
			{"source":"p1","target":"e1","relationship":"ATTENDED"},
			{"source":"p1","target":"","relationship":"BROKEN"}
		],"total_nodes":3,"total_edges":2}`)
	}))
	defer server.Close()

	g, meta, err := NewClient(testConfig(server.URL), nil).Graph(context.Background(), "", 50)

	require.NoError(t, err)
	assert.Equal(t, 2, meta.Rejected)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, model.NodeEntity, g.Nodes[1].Type)
	assert.Equal(t, 2, g.TotalNodes)
	assert.Equal(t, 1, g.TotalEdges)
}

func TestClient_ContextCancelStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	orig := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	t.Cleanup(func() { sleepFunc = orig })

	_, _, err := NewClient(testConfig(server.URL), nil).Stats(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &model.ServiceError{Service: "api", Err: errors.New("connection refused")}, true},
		{"503", &model.ServiceError{Service: "api", StatusCode: 503}, true},
		{"429", &model.ServiceError{Service: "api", StatusCode: 429}, true},
		{"404", &StatusError{StatusCode: 404}, false},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestBackoff_Doubles(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(1))
	assert.Equal(t, time.Second, backoff(2))
	assert.Equal(t, 2*time.Second, backoff(3))
}

func TestClient_GenerateAnchor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anchor/generate", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Monsoon", body["topic"])
		assert.Equal(t, "short", body["duration"])

		_, _ = fmt.Fprint(w, `{"topic":"Monsoon","segments":[{"text":"Good evening.","mood":"neutral","view":"upper","voice":"af_bella","speed":1,"delay":800}],"sources_cited":["NDTV"]}`)
	}))
	defer server.Close()

	script, err := NewClient(testConfig(server.URL), nil).GenerateAnchor(context.Background(), "Monsoon", "professional", "short")

	require.NoError(t, err)
	require.Len(t, script.Segments, 1)
	assert.Equal(t, []string{"NDTV"}, script.SourcesCited)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = fmt.Fprint(w, `{"api":"healthy","neo4j":"connected"}`)
	}))
	defer server.Close()

	h, err := NewClient(testConfig(server.URL), nil).Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "healthy", h.API)
	assert.Equal(t, "connected", h.Neo4j)
}

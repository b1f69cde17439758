package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clarifai/internal/model"
)

func TestStudioClient_Lifecycle(t *testing.T) {
	var deleted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			var body submitRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body.Topic != "Markets" || len(body.Segments) != 1 {
				t.Errorf("unexpected body: %+v", body)
			}
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"id":"j1","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/j1":
			_, _ = w.Write([]byte(`{"id":"j1","status":"rendering","progress":40}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/jobs/j1":
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewStudioClient(server.URL+"/", model.HTTPConfig{UserAgent: "test"})
	ctx := context.Background()

	job, err := c.Submit(ctx, &model.AnchorScript{Topic: "Markets", Segments: []model.AnchorSegment{{Text: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, model.JobQueued, job.Status)

	status, err := c.Status(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, model.JobRendering, status.Status)
	assert.Equal(t, 40, status.Progress)

	require.NoError(t, c.Cancel(ctx, "j1"))
	assert.True(t, deleted)

	_, err = c.Status(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStudioClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/jobs" {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	c := NewStudioClient(server.URL, model.HTTPConfig{})
	ctx := context.Background()

	_, err := c.Submit(ctx, &model.AnchorScript{Topic: "T"})
	assert.ErrorIs(t, err, model.ErrInvalidDataShape)

	_, err = c.Status(ctx, "j1")
	assert.ErrorIs(t, err, model.ErrUnreachableService)

	server.Close()
	_, err = c.Status(ctx, "j1")
	assert.ErrorIs(t, err, model.ErrUnreachableService)
}

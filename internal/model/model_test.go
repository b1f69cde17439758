package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClaimStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    ClaimStatus
		unknown bool
	}{
		{"verified", StatusVerified, false},
		{"  Conflict ", StatusConflict, false},
		{"FALSE", StatusFalse, false},
		{"checking", StatusChecking, false},
		{"disputed", StatusChecking, true},
		{"", StatusChecking, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseClaimStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			if tt.unknown {
				assert.ErrorIs(t, err, ErrUnknownEnumValue)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseNodeType_Unknown(t *testing.T) {
	got, err := ParseNodeType("person")
	assert.Equal(t, NodeEntity, got)
	assert.ErrorIs(t, err, ErrUnknownEnumValue)

	got, err = ParseNodeType("Source")
	assert.NoError(t, err)
	assert.Equal(t, NodeSource, got)
}

func TestClaim_DecodesNaiveAndBadTimestamps(t *testing.T) {
	payload := `{"claims":[
		{"id":"c1","text":"a","source":"NDTV","timestamp":"2025-11-20T10:15:00.123456","status":"verified"},
		{"id":"c2","text":"b","source":"NDTV","timestamp":"2025-11-20T10:15:00Z","status":"conflict"},
		{"id":"c3","text":"c","source":"NDTV","timestamp":"yesterday","status":"false"},
		{"id":"c4","text":"d","source":"NDTV","timestamp":null,"status":"checking"}
	],"total":4}`

	var resp ClaimsResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Claims, 4)

	want := time.Date(2025, 11, 20, 10, 15, 0, 123456000, time.UTC)
	assert.True(t, resp.Claims[0].Timestamp.Equal(want))
	assert.True(t, resp.Claims[1].Timestamp.Equal(time.Date(2025, 11, 20, 10, 15, 0, 0, time.UTC)))
	assert.True(t, resp.Claims[2].Timestamp.IsZero())
	assert.True(t, resp.Claims[3].Timestamp.IsZero())
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02T03:04:05Z"`, string(data))

	data, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestFilterValid_DropsOnlyBadRecords(t *testing.T) {
	sources := []Source{
		{ID: "toi", Name: "Times of India", TrustScore: 94},
		{ID: "", Name: "Nameless ID"},
		{ID: "ndtv", Name: ""},
		{ID: "ht", Name: "Hindustan Times", TrustScore: 82},
	}

	kept, rejected := FilterValid(sources, ValidateSource)

	require.Len(t, kept, 2)
	assert.Equal(t, "toi", kept[0].ID)
	assert.Equal(t, "ht", kept[1].ID)
	require.Len(t, rejected, 2)
	for _, err := range rejected {
		assert.ErrorIs(t, err, ErrInvalidDataShape)
	}
	assert.Equal(t, `source "ndtv": name is empty`, rejected[1].Error())
}

func TestValidateGraphEdge(t *testing.T) {
	assert.NoError(t, ValidateGraphEdge(GraphEdge{Source: "a", Target: "b"}))
	assert.ErrorIs(t, ValidateGraphEdge(GraphEdge{Source: "a"}), ErrInvalidDataShape)
}

func TestServiceError_MatchesTaxonomyAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&ServiceError{Service: "api", Endpoint: "/sources", Err: cause})

	assert.ErrorIs(t, err, ErrUnreachableService)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "api /sources: connection refused", err.Error())

	status := &ServiceError{Service: "broadcast", Endpoint: "/jobs", StatusCode: 503}
	assert.ErrorIs(t, status, ErrUnreachableService)
	assert.Equal(t, "broadcast /jobs: unexpected status 503", status.Error())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobQueued.Terminal())
	assert.False(t, JobRendering.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
	assert.True(t, JobCancelled.Terminal())
}

func TestDefaultConfig_Endpoints(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", cfg.API.URL)
	assert.Equal(t, "http://localhost:5500", cfg.Broadcast.URL)
	assert.Equal(t, ModeAuto, cfg.API.Mode)
	assert.Equal(t, "system", cfg.UI.Theme)
}

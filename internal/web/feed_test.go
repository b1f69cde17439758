package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/model"
)

type mutableClaims struct {
	mu     sync.Mutex
	claims []model.Claim
}

func (m *mutableClaims) Claims(context.Context, string) ([]model.Claim, backend.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Claim, len(m.claims))
	copy(out, m.claims)
	return out, backend.Meta{Origin: backend.OriginAPI}, nil
}

func (m *mutableClaims) set(claims ...model.Claim) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = claims
}

func readFeed(t *testing.T, conn *websocket.Conn) FeedMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg FeedMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeedHub_PushesChanges(t *testing.T) {
	now := time.Now()
	source := &mutableClaims{}
	source.set(
		model.Claim{ID: "1", Text: "older", Source: "NDTV", Status: model.StatusVerified, Timestamp: model.NewTimestamp(now.Add(-time.Hour))},
		model.Claim{ID: "2", Text: "newer", Source: "NDTV", Status: "mystery", Timestamp: model.NewTimestamp(now.Add(-time.Minute))},
	)

	hub := NewFeedHub(source, time.Hour, nil)
	hub.Poll(context.Background())

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	msg := readFeed(t, conn)
	assert.Equal(t, "claims", msg.Type)
	require.Len(t, msg.Items, 2)
	assert.Equal(t, "newer", msg.Items[0].Claim.Text)
	assert.True(t, msg.Items[0].Highlight)
	assert.Equal(t, "Checking", msg.Items[0].Display.Label)

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	// Unchanged claims are not pushed again
	hub.Poll(context.Background())

	source.set(model.Claim{ID: "3", Text: "breaking", Source: "BBC", Status: model.StatusFalse})
	hub.Poll(context.Background())

	msg = readFeed(t, conn)
	require.Len(t, msg.Items, 1)
	assert.Equal(t, "breaking", msg.Items[0].Claim.Text)
}

func TestFeedHub_DropsSlowSubscriber(t *testing.T) {
	source := &mutableClaims{}
	hub := NewFeedHub(source, time.Hour, nil)

	slow := &feedClient{send: make(chan []byte)}
	hub.mu.Lock()
	hub.clients[slow] = struct{}{}
	hub.mu.Unlock()

	source.set(model.Claim{ID: "1", Text: "x", Source: "NDTV"})
	hub.Poll(context.Background())

	assert.Equal(t, 0, hub.Subscribers())
	_, open := <-slow.send
	assert.False(t, open)
}

func TestFeedHub_RunClosesSubscribers(t *testing.T) {
	source := &mutableClaims{}
	source.set(model.Claim{ID: "1", Text: "x", Source: "NDTV"})
	hub := NewFeedHub(source, time.Hour, nil)

	c := &feedClient{send: make(chan []byte, feedSendBuffer)}
	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	hub.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	msg, ok := <-c.send
	require.True(t, ok)
	assert.Contains(t, string(msg), `"claims"`)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, hub.Subscribers())

	_, ok = <-c.send
	assert.False(t, ok)
}

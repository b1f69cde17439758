package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/present"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedSendBuffer = 8
)

// ClaimSource supplies the claims pushed to feed subscribers
type ClaimSource interface {
	Claims(ctx context.Context, topic string) ([]model.Claim, backend.Meta, error)
}

// FeedMessage is pushed to every subscriber when the claim feed changes
type FeedMessage struct {
	Type      string             `json:"type"`
	Items     []present.FeedItem `json:"items"`
	Banners   []present.Banner   `json:"banners,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// FeedHub polls the claim feed and pushes changes to websocket subscribers.
// A subscriber whose buffer is full is dropped.
type FeedHub struct {
	source   ClaimSource
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	clients map[*feedClient]struct{}
	last    []byte // Last pushed message
	digest  []byte // Claims behind the last message
	closed  bool
}

// NewFeedHub creates a hub polling source every interval
func NewFeedHub(source ClaimSource, interval time.Duration, logger *zap.Logger) *FeedHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &FeedHub{
		source:   source,
		interval: interval,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		logger:   logger.With(zap.String("component", "feed")),
		now:      time.Now,
		clients:  make(map[*feedClient]struct{}),
	}
}

// Run polls until ctx is done, then disconnects every subscriber
func (h *FeedHub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer h.closeAll()

	h.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Poll(ctx)
		}
	}
}

// Poll loads the claims once and broadcasts them when they changed
func (h *FeedHub) Poll(ctx context.Context) {
	claims, meta, err := h.source.Claims(ctx, "")
	if err != nil {
		if ctx.Err() == nil {
			h.logger.Warn("poll claim feed failed", zap.Error(err))
		}
		return
	}

	digest := feedDigest(claims)

	h.mu.Lock()
	unchanged := bytes.Equal(digest, h.digest)
	h.mu.Unlock()
	if unchanged {
		return
	}

	sortClaims(claims)
	msg, err := json.Marshal(FeedMessage{
		Type:      "claims",
		Items:     present.BuildFeed(claims, h.now()),
		Banners:   bannersFor(meta),
		UpdatedAt: h.now().UTC(),
	})
	if err != nil {
		h.logger.Error("encode feed message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.digest = digest
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("dropping slow feed subscriber")
			h.removeLocked(c)
		}
	}
}

// feedDigest identifies a claim feed by content, ignoring timestamps
func feedDigest(claims []model.Claim) []byte {
	var b bytes.Buffer
	for _, c := range claims {
		b.WriteString(c.ID)
		b.WriteByte(0)
		b.WriteString(string(c.Status))
		b.WriteByte(0)
		b.WriteString(c.Text)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Subscribers reports the number of connected clients
func (h *FeedHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams feed messages until the client leaves
func (h *FeedHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, feedSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(feedWriteWait))
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and notices disconnects
func (h *FeedHub) readPump(c *feedClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *FeedHub) writePump(c *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *FeedHub) remove(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *FeedHub) removeLocked(c *feedClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *FeedHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

package layout

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/clarifai/internal/model"
)

// SessionStore owns the ViewState of every visitor. Idle sessions expire
// after the TTL and come back with defaults.
type SessionStore struct {
	mu       sync.Mutex
	sessions *gocache.Cache
	ttl      time.Duration
	defaults ViewState
}

// NewSessionStore creates a store whose new sessions start from ui defaults
func NewSessionStore(ttl time.Duration, ui model.UIConfig) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		sessions: gocache.New(ttl, ttl/4),
		ttl:      ttl,
		defaults: DefaultViewState(ui),
	}
}

// NewID returns a fresh session ID
func (s *SessionStore) NewID() string {
	return uuid.NewString()
}

// Get returns the state for id, or defaults when the session is unknown.
// Reads refresh the session's expiry.
func (s *SessionStore) Get(id string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// Update applies fn to the session's state and stores the result.
// The state is left unchanged when fn fails.
func (s *SessionStore) Update(id string, fn func(*ViewState) error) (ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(id)
	if err := fn(&state); err != nil {
		return s.load(id), err
	}
	s.sessions.Set(id, state, s.ttl)
	return state, nil
}

// Len reports the number of live sessions
func (s *SessionStore) Len() int {
	return s.sessions.ItemCount()
}

func (s *SessionStore) load(id string) ViewState {
	if v, ok := s.sessions.Get(id); ok {
		state := v.(ViewState)
		s.sessions.Set(id, state, s.ttl)
		return state
	}
	return s.defaults
}

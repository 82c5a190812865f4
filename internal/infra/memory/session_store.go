package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kdacanay/wrc-leads/internal/csvimport"
)

type sessionItem struct {
	data      []byte
	expiresAt time.Time
}

// SessionStore keeps import sessions in process, expiring them lazily.
// Sessions are stored serialized so callers never share state.
type SessionStore struct {
	mu    sync.Mutex
	items map[string]sessionItem
	now   func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[string]sessionItem), now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session *csvimport.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = sessionItem{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*csvimport.Session, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok && !s.now().Before(item.expiresAt) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, csvimport.ErrSessionNotFound
	}
	var session csvimport.Session
	if err := json.Unmarshal(item.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

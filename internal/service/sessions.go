package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
)

// SessionStore keys in-memory conversations by the uuid carried in the
// browser session cookie. Sessions idle past the TTL are evicted by
// Cleanup; when the store is full the oldest session goes first.
type SessionStore struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]*Conversation

	models   *ModelManager
	catalog  *Catalog
	recorder TurnRecorder
}

func NewSessionStore(models *ModelManager, catalog *Catalog, recorder TurnRecorder) *SessionStore {
	return &SessionStore{
		conversations: make(map[uuid.UUID]*Conversation),
		models:        models,
		catalog:       catalog,
		recorder:      recorder,
	}
}

func (s *SessionStore) Get(id uuid.UUID) (*Conversation, error) {
	s.mu.RLock()
	conv, ok := s.conversations[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	conv.Touch()
	return conv, nil
}

func (s *SessionStore) Create() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.conversations) >= config.MaxSessions {
		s.evictOldestLocked()
	}

	id := uuid.New()
	conv := NewConversation(id, s.models, s.catalog, s.recorder)
	s.conversations[id] = conv
	return conv
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// Cleanup drops sessions idle past ttl and returns how many went.
func (s *SessionStore) Cleanup(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-ttl)
	for id, conv := range s.conversations {
		if conv.LastSeen().Before(cutoff) {
			delete(s.conversations, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("sessions evicted", "count", removed, "remaining", len(s.conversations))
	}
	return removed
}

func (s *SessionStore) evictOldestLocked() {
	var oldestID uuid.UUID
	var oldest time.Time
	first := true
	for id, conv := range s.conversations {
		seen := conv.LastSeen()
		if first || seen.Before(oldest) {
			oldestID = id
			oldest = seen
			first = false
		}
	}
	if !first {
		delete(s.conversations, oldestID)
	}
}

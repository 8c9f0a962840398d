package redis

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dsa-interview-service/internal/app"
)

// SessionStore is a Redis-aware Session Registry.
// Notes:
//   - Sessions themselves stay in a local in-memory map; the state machine
//     holds pointer access and serializes mutation per session.
//   - Redis marks session liveness with a TTL'd key, which gives operators
//     visibility; Expired reports lapsed markers so the cleanup sweep can
//     evict abandoned interviews.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), "1", s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expired reports registered sessions whose liveness key has lapsed.
func (s *SessionStore) Expired(ctx context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	var expired []string
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		if err == nil && n == 0 {
			expired = append(expired, id)
		}
	}
	return expired
}

func (s *SessionStore) key(id string) string {
	return "interview:session:" + id
}

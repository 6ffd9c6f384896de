package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const defaultMaxHistory = 40

// MemoryStore keeps sessions in process memory for the process lifetime.
// Histories are capped so a long-running thread cannot grow unboundedly.
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string][]byte
	maxHistory int
}

type MemoryOption func(*MemoryStore)

func WithMaxHistory(max int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxHistory = max
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions:   make(map[string][]byte),
		maxHistory: defaultMaxHistory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context, threadID string) (*Session, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidThread
	}
	s.mu.RLock()
	raw, ok := s.sessions[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := new(Session)
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(sess.ThreadID) == "" {
		return ErrInvalidThread
	}
	sess.TrimHistory(s.maxHistory)

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	s.mu.Lock()
	s.sessions[sess.ThreadID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	if strings.TrimSpace(threadID) == "" {
		return ErrInvalidThread
	}
	s.mu.Lock()
	delete(s.sessions, threadID)
	s.mu.Unlock()
	return nil
}

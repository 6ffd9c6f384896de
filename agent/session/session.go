package session

import (
	"context"
	"errors"
	"strings"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	statex "github.com/dataseed/cobranza-agent/agent/state"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
	ErrInvalidThread   = errors.New("thread id is empty")
)

// Session is one thread's conversation: the ordered message history plus
// the negotiation state driving the diagnostic flow.
type Session struct {
	ThreadID    string              `json:"thread_id"`
	Messages    []contractx.Message `json:"messages,omitempty"`
	Negotiation statex.Negotiation  `json:"negotiation"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func NewSession(threadID string, now time.Time) *Session {
	return &Session{
		ThreadID:    threadID,
		Negotiation: statex.NewNegotiation(now),
		UpdatedAt:   now.UTC(),
	}
}

// Append adds a message to the history in arrival order.
func (s *Session) Append(role contractx.Role, content string) {
	s.Messages = append(s.Messages, contractx.Message{Role: role, Content: content})
}

// TrimHistory drops the oldest messages beyond max. max <= 0 disables
// trimming.
func (s *Session) TrimHistory(max int) {
	if max <= 0 || len(s.Messages) <= max {
		return
	}
	s.Messages = append([]contractx.Message(nil), s.Messages[len(s.Messages)-max:]...)
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) Validate() error {
	if strings.TrimSpace(s.ThreadID) == "" {
		return ErrInvalidThread
	}
	return s.Negotiation.Validate()
}

// Store is the persistence contract used by the orchestrator.
type Store interface {
	Load(ctx context.Context, threadID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, threadID string) error
}

package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	sessionx "github.com/dataseed/cobranza-agent/agent/session"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidThread  = errors.New("thread id is empty")
)

type GraphInput struct {
	ThreadID string
	Text     string
}

type GraphOutput struct {
	Reply string
}

// GraphState is threaded through the per-turn node chain.
type GraphState struct {
	ThreadID string
	Text     string
	Now      time.Time

	Session    *sessionx.Session
	Extraction contractx.ExtractorResponse
	Response   contractx.ResponderResponse
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	threadID := strings.TrimSpace(in.ThreadID)
	if threadID == "" {
		return nil, ErrInvalidThread
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		ThreadID: threadID,
		Text:     text,
		Now:      nowFn().UTC(),
	}, nil
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	nodex "github.com/dataseed/cobranza-agent/agent/nodes/orchestrator"
	sessionx "github.com/dataseed/cobranza-agent/agent/session"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidThread  = nodex.ErrInvalidThread
)

const defaultTurnTimeout = 60 * time.Second

type Config struct {
	TurnTimeout time.Duration
}

// Orchestrator runs one message-response cycle per call. Turns on the
// same thread are serialized in arrival order; distinct threads run
// concurrently.
type Orchestrator struct {
	store  sessionx.Store
	models contractx.Registry

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	turnTimeout time.Duration
	now         func() time.Time

	mu    sync.Mutex
	locks map[string]*threadLock
}

// threadLock serializes turns on one thread. The refcount lets the
// orchestrator drop the map entry once no turn holds or awaits it, so
// the lock table stays proportional to in-flight threads.
type threadLock struct {
	mu   sync.Mutex
	refs int
}

func New(store sessionx.Store, models contractx.Registry, cfg Config) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}

	turnTimeout := cfg.TurnTimeout
	if turnTimeout <= 0 {
		turnTimeout = defaultTurnTimeout
	}

	o := &Orchestrator{
		store:       store,
		models:      models,
		turnTimeout: turnTimeout,
		now:         time.Now,
		locks:       make(map[string]*threadLock),
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage processes one turn and returns the agent's reply. On
// failure the thread's history is left unchanged; the cause is logged
// for operators and the wrapped error carries no model internals beyond
// its class.
func (o *Orchestrator) HandleMessage(ctx context.Context, threadID string, text string) (string, error) {
	key := strings.TrimSpace(threadID)
	lock := o.acquireThreadLock(key)
	defer o.releaseThreadLock(key, lock)

	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		ThreadID: threadID,
		Text:     text,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error().Str("thread_id", threadID).Dur("timeout", o.turnTimeout).Msg("turn timed out")
			return "", fmt.Errorf("%w: turn timed out", contractx.ErrInternal)
		}
		return "", err
	}
	return out.Reply, nil
}

func (o *Orchestrator) acquireThreadLock(threadID string) *threadLock {
	o.mu.Lock()
	lock, ok := o.locks[threadID]
	if !ok {
		lock = &threadLock{}
		o.locks[threadID] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (o *Orchestrator) releaseThreadLock(threadID string, lock *threadLock) {
	lock.mu.Unlock()

	o.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(o.locks, threadID)
	}
	o.mu.Unlock()
}

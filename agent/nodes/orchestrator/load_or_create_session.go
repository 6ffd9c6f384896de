package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	sessionx "github.com/dataseed/cobranza-agent/agent/session"
)

func LoadOrCreateSession(
	ctx context.Context,
	in *GraphState,
	store sessionx.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, in.ThreadID)
	if err != nil {
		if !errors.Is(err, sessionx.ErrSessionNotFound) {
			return nil, err
		}
		sess = sessionx.NewSession(in.ThreadID, in.Now)
	}

	in.Session = sess
	return in, nil
}

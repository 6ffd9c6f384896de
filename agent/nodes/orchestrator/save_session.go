package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	sessionx "github.com/dataseed/cobranza-agent/agent/session"
)

// AppendHistory records the turn's exchange. It runs only after the
// responder succeeded, so a failed turn leaves the history untouched.
func AppendHistory(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Append(contractx.RoleUser, in.Text)
	in.Session.Append(contractx.RoleAssistant, in.Response.Message)
	in.Session.Touch(in.Now)
	return in, nil
}

func SaveSession(
	ctx context.Context,
	in *GraphState,
	store sessionx.Store,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Response.Message)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply}, nil
}

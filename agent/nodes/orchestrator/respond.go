package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

func Respond(
	ctx context.Context,
	in *GraphState,
	responder contractx.Responder,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	resp, err := responder.Respond(ctx, contractx.ResponderRequest{
		UserMessage: in.Text,
		Stage:       string(in.Session.Negotiation.Stage),
		KnownSlots:  in.Session.Negotiation.Slots,
		Intent:      in.Session.Negotiation.Intent,
		History:     in.Session.Messages,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Message) == "" {
		return nil, fmt.Errorf("%w: responder returned an empty message", contractx.ErrSchemaViolation)
	}

	in.Response = resp
	return in, nil
}

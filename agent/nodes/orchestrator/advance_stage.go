package orchestratornode

import (
	"fmt"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	toolx "github.com/dataseed/cobranza-agent/agent/tool"
)

// AdvanceStage folds this turn's tool evidence into the negotiation and
// moves the stage forward. Stage transitions come only from verified
// tool outcomes, never from model text.
func AdvanceStage(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	neg := &in.Session.Negotiation
	for _, res := range in.Response.ToolResults {
		if res.Error != "" {
			continue
		}
		switch out := res.Result.(type) {
		case toolx.DebtLookupOutput:
			if out.Found && out.Customer != nil {
				neg.MarkCustomerVerified(out.Customer.ID, in.Now)
			}
		case toolx.DateValidateOutput:
			neg.MarkDateValidated(out.Date, in.Now)
		case toolx.PromiseRegisterOutput:
			if err := neg.MarkRegistered(out.Promise.ID, in.Now); err != nil {
				return nil, err
			}
		}
	}

	neg.Advance(in.Now)
	if err := neg.Validate(); err != nil {
		return nil, fmt.Errorf("negotiation state validation failed: %w", err)
	}
	return in, nil
}

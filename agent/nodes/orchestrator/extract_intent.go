package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

func ExtractIntent(
	ctx context.Context,
	in *GraphState,
	extractor contractx.Extractor,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	resp, err := extractor.Extract(ctx, contractx.ExtractorRequest{
		UserMessage: in.Text,
		Stage:       string(in.Session.Negotiation.Stage),
		KnownSlots:  in.Session.Negotiation.Slots,
		Now:         in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Extraction = resp
	return in, nil
}

func ApplyExtraction(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Negotiation.ApplyExtraction(in.Extraction, in.Now)
	return in, nil
}

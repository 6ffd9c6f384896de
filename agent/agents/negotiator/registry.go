package negotiator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	llmx "github.com/dataseed/cobranza-agent/agent/llm"
	promptx "github.com/dataseed/cobranza-agent/agent/prompt"
)

type registryImpl struct {
	extractor contractx.Extractor
	responder contractx.Responder
}

func (r *registryImpl) Extractor() contractx.Extractor {
	return r.extractor
}

func (r *registryImpl) Responder() contractx.Responder {
	return r.responder
}

// NewRegistry builds the extractor and responder from the LLM config,
// the embedded prompts, and the tool catalog.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	tools []*schema.ToolInfo,
	gateway contractx.ToolGateway,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	extractorCfg := cfg.OllamaFor(contractx.AgentTypeExtractor)
	extractorModel, err := extractorCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create extractor model: %v", contractx.ErrModelInvoke, err)
	}
	responderCfg := cfg.OllamaFor(contractx.AgentTypeResponder)
	responderModel, err := responderCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create responder model: %v", contractx.ErrModelInvoke, err)
	}

	extractor, err := newExtractor(ctx, extractorModel, prompts.Extractor)
	if err != nil {
		return nil, err
	}
	responder, err := newResponder(ctx, responderModel, prompts.Negotiator, tools, gateway)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		extractor: extractor,
		responder: responder,
	}, nil
}

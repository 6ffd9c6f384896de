package negotiator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

const (
	defaultMaxToolHops  = 4
	defaultModelRetries = 2
	defaultRetryBackoff = 500 * time.Millisecond
)

// responderImpl runs the tool-calling loop for one turn: invoke the
// model, execute any requested tools through the gateway, feed the
// results back, and repeat until the model produces plain text.
type responderImpl struct {
	toolModel    einomodel.ToolCallingChatModel
	gateway      contractx.ToolGateway
	systemPrompt string
	allowedTools map[string]struct{}

	maxToolHops  int
	modelRetries int
	retryBackoff time.Duration
}

func newResponder(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
	gateway contractx.ToolGateway,
) (*responderImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: responder prompt", contractx.ErrPromptMissing)
	}
	if gateway == nil {
		return nil, fmt.Errorf("%w: tool gateway is required", contractx.ErrValidation)
	}

	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	allowed := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowed[t.Name] = struct{}{}
	}

	return &responderImpl{
		toolModel:    toolModel,
		gateway:      gateway,
		systemPrompt: systemPrompt,
		allowedTools: allowed,
		maxToolHops:  defaultMaxToolHops,
		modelRetries: defaultModelRetries,
		retryBackoff: defaultRetryBackoff,
	}, nil
}

func (r *responderImpl) Respond(ctx context.Context, req contractx.ResponderRequest) (contractx.ResponderResponse, error) {
	messages, err := r.buildMessages(req)
	if err != nil {
		return contractx.ResponderResponse{}, err
	}

	var collected []contractx.ToolResult
	for hop := 0; hop <= r.maxToolHops; hop++ {
		msg, err := r.generateWithRetry(ctx, messages)
		if err != nil {
			return contractx.ResponderResponse{}, fmt.Errorf("%w: responder invoke: %w", contractx.ErrModelInvoke, err)
		}

		if len(msg.ToolCalls) == 0 {
			reply := strings.TrimSpace(msg.Content)
			if reply == "" {
				return contractx.ResponderResponse{}, fmt.Errorf("%w: responder message is empty", contractx.ErrSchemaViolation)
			}
			return contractx.ResponderResponse{
				Message:     reply,
				ToolResults: collected,
			}, nil
		}

		reqs, err := r.toToolRequests(msg.ToolCalls)
		if err != nil {
			return contractx.ResponderResponse{}, err
		}

		results, err := r.gateway.Execute(ctx, reqs)
		if err != nil {
			return contractx.ResponderResponse{}, fmt.Errorf("%w: %v", contractx.ErrInternal, err)
		}
		if len(results) != len(msg.ToolCalls) {
			return contractx.ResponderResponse{}, fmt.Errorf("%w: gateway returned %d results for %d calls", contractx.ErrInternal, len(results), len(msg.ToolCalls))
		}

		messages = append(messages, msg)
		for i, res := range results {
			messages = append(messages, schema.ToolMessage(toolMessageContent(res), msg.ToolCalls[i].ID))
		}
		collected = append(collected, results...)
	}

	return contractx.ResponderResponse{}, fmt.Errorf("%w: tool loop exceeded %d hops", contractx.ErrInternal, r.maxToolHops)
}

func (r *responderImpl) buildMessages(req contractx.ResponderRequest) ([]*schema.Message, error) {
	payload := map[string]any{
		"stage":        req.Stage,
		"known_slots":  req.KnownSlots,
		"user_message": req.UserMessage,
	}
	if req.Intent != contractx.IntentUnknown {
		payload["intent"] = req.Intent
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal responder payload: %v", contractx.ErrValidation, err)
	}

	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(r.systemPrompt))
	for _, m := range req.History {
		switch m.Role {
		case contractx.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content))
		}
	}
	messages = append(messages, schema.UserMessage(string(inputBytes)))
	return messages, nil
}

func (r *responderImpl) generateWithRetry(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	var lastErr error
	for attempt := 0; attempt <= r.modelRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Int("attempt", attempt).Msg("retrying model invocation")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.retryBackoff * time.Duration(attempt)):
			}
		}
		msg, err := r.toolModel.Generate(ctx, messages)
		if err == nil && msg != nil {
			return msg, nil
		}
		if err == nil {
			err = fmt.Errorf("model returned nil message")
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *responderImpl) toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		if _, ok := r.allowedTools[name]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not in the catalog", contractx.ErrSchemaViolation, name)
		}

		args := map[string]any{}
		if rawArgs := strings.TrimSpace(call.Function.Arguments); rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}
		reqs = append(reqs, contractx.ToolRequest{Tool: name, Args: args})
	}
	return reqs, nil
}

func toolMessageContent(res contractx.ToolResult) string {
	if res.Error != "" {
		if res.Text != "" {
			return res.Text
		}
		return "ERROR: " + res.Error
	}
	return res.Text
}

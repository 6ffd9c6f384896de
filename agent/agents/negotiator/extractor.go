package negotiator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

type extractorImpl struct {
	runner compose.Runnable[map[string]any, extractorLLMOutput]

	retries int
	backoff time.Duration
}

type extractorLLMOutput struct {
	SlotsPatch contractx.Slots `json:"slots_patch"`
	Intent     string          `json:"intent,omitempty"`
	Confirmed  bool            `json:"confirmed,omitempty"`
}

func newExtractor(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*extractorImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: extractor prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileExtractorGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &extractorImpl{
		runner:  runner,
		retries: defaultModelRetries,
		backoff: defaultRetryBackoff,
	}, nil
}

func (e *extractorImpl) Extract(ctx context.Context, req contractx.ExtractorRequest) (contractx.ExtractorResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.ExtractorResponse{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"stage":        req.Stage,
		"known_slots":  req.KnownSlots,
		"user_message": req.UserMessage,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.ExtractorResponse{}, fmt.Errorf("%w: marshal extractor payload: %v", contractx.ErrValidation, err)
	}

	out, err := e.invokeWithRetry(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.ExtractorResponse{}, fmt.Errorf("%w: extractor invoke: %w", contractx.ErrModelInvoke, err)
	}

	intent, err := parseIntent(out.Intent)
	if err != nil {
		return contractx.ExtractorResponse{}, err
	}
	if out.SlotsPatch.Amount < 0 {
		return contractx.ExtractorResponse{}, fmt.Errorf("%w: negative amount in slots_patch", contractx.ErrSchemaViolation)
	}

	return contractx.ExtractorResponse{
		SlotsPatch: out.SlotsPatch,
		Intent:     intent,
		Confirmed:  out.Confirmed,
	}, nil
}

func (e *extractorImpl) invokeWithRetry(ctx context.Context, input map[string]any) (extractorLLMOutput, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Int("attempt", attempt).Msg("retrying extractor invocation")
			select {
			case <-ctx.Done():
				return extractorLLMOutput{}, ctx.Err()
			case <-time.After(e.backoff * time.Duration(attempt)):
			}
		}
		out, err := e.runner.Invoke(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return extractorLLMOutput{}, lastErr
}

func parseIntent(raw string) (contractx.Intent, error) {
	switch contractx.Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case contractx.IntentUnknown:
		return contractx.IntentUnknown, nil
	case contractx.IntentHigh:
		return contractx.IntentHigh, nil
	case contractx.IntentMedium:
		return contractx.IntentMedium, nil
	case contractx.IntentLow:
		return contractx.IntentLow, nil
	default:
		return contractx.IntentUnknown, fmt.Errorf("%w: unsupported intent=%q", contractx.ErrSchemaViolation, raw)
	}
}

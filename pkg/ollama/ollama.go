package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLMBuilder builds a tool-calling chat model from configuration.
type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// Config targets an Ollama deployment through its OpenAI-compatible API.
// Any OpenAI-compatible endpoint works; only the defaults are
// Ollama-flavored.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:11434/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" default:"ollama"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama3.2"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	modelName := strings.TrimSpace(c.Model)
	if modelName == "" {
		return nil, fmt.Errorf("ollama: model name is required")
	}

	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       modelName,
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("ollama: create chat model: %w", err)
	}
	return m, nil
}

// NewClient creates an OpenAI SDK client against the same endpoint, used
// for health checks (model listing) outside the eino graphs.
func NewClient(cfg Config) *openaisdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// HealthProbe reports whether the model endpoint answers a model
// listing. Ollama serves /v1/models when it is up, so this doubles as a
// liveness check for the whole inference side.
func HealthProbe(client *openaisdk.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if _, err := client.Models.List(ctx); err != nil {
			return fmt.Errorf("ollama: list models: %w", err)
		}
		return nil
	}
}

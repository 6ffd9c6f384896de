package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	ollamax "github.com/dataseed/cobranza-agent/pkg/ollama"
)

// Config selects models and knobs per agent role. The extractor wants a
// low temperature for reliable JSON; the responder follows the global
// decisiveness knob.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:11434/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" default:"ollama"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama3.2"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	ExtractorModel       string  `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	ResponderModel       string  `envconfig:"RESPONDER_MODEL" split_words:"true"`
	ExtractorTemperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true" default:"-1"`
	ResponderTemperature float32 `envconfig:"RESPONDER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: model base url is required", contractx.ErrValidation)
	}
	return nil
}

// OllamaFor resolves the model configuration for one agent role.
func (c Config) OllamaFor(agentType contractx.AgentType) ollamax.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeExtractor:
		if v := strings.TrimSpace(c.ExtractorModel); v != "" {
			modelName = v
		}
		if c.ExtractorTemperature >= 0 {
			temp = c.ExtractorTemperature
		}
	case contractx.AgentTypeResponder:
		if v := strings.TrimSpace(c.ResponderModel); v != "" {
			modelName = v
		}
		if c.ResponderTemperature >= 0 {
			temp = c.ResponderTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return ollamax.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}

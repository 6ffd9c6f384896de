package contract

import "time"

type AgentType string

const (
	AgentTypeExtractor AgentType = "extractor"
	AgentTypeResponder AgentType = "responder"
)

// Intent is the silent willingness-to-pay tag. It is kept on the
// negotiation state for the reasoning engine's benefit and is never
// shown to the end user.
type Intent string

const (
	IntentUnknown Intent = ""
	IntentHigh    Intent = "alta"
	IntentMedium  Intent = "media"
	IntentLow     Intent = "baja"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ExtractorRequest carries everything the extractor model needs to read
// slots and intent out of the latest user message.
type ExtractorRequest struct {
	UserMessage string `json:"user_message"`
	Stage       string `json:"stage"`
	KnownSlots  Slots  `json:"known_slots"`
	Now         time.Time
}

// Slots are the negotiation facts collected across the diagnostic flow.
// Zero values mean "not yet known".
type Slots struct {
	CustomerID     string  `json:"customer_id,omitempty"`
	Cause          string  `json:"cause,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	CommitmentDate string  `json:"commitment_date,omitempty"`
	Channel        string  `json:"channel,omitempty"`
}

// ExtractorResponse is the structured output of the extractor model.
type ExtractorResponse struct {
	SlotsPatch Slots  `json:"slots_patch"`
	Intent     Intent `json:"intent,omitempty"`
	Confirmed  bool   `json:"confirmed,omitempty"`
}

// ResponderRequest asks the responder for the turn's natural-language
// reply, running tools as needed.
type ResponderRequest struct {
	UserMessage string    `json:"user_message"`
	Stage       string    `json:"stage"`
	KnownSlots  Slots     `json:"known_slots"`
	Intent      Intent    `json:"intent,omitempty"`
	History     []Message `json:"history,omitempty"`
}

// ResponderResponse is the reply plus every tool exchange that happened
// while producing it, in execution order.
type ResponderResponse struct {
	Message     string       `json:"message"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries the conversational text the model consumes plus a
// typed payload for programmatic consumers. A failed tool sets Error and
// leaves Result nil; tool failures are never Go errors.
type ToolResult struct {
	Tool   string `json:"tool"`
	Text   string `json:"text,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

package contract

import "context"

type Extractor interface {
	Extract(ctx context.Context, req ExtractorRequest) (ExtractorResponse, error)
}

type Responder interface {
	Respond(ctx context.Context, req ResponderRequest) (ResponderResponse, error)
}

type Registry interface {
	Extractor() Extractor
	Responder() Responder
}

type ToolGateway interface {
	Execute(ctx context.Context, reqs []ToolRequest) ([]ToolResult, error)
}

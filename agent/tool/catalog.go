package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
)

const (
	ToolDebtLookup      = "debt.lookup"
	ToolDateValidate    = "date.validate"
	ToolPromiseRegister = "promise.register"
)

// Executor runs one named tool. Tool-level failures travel inside
// ToolResult.Error; a Go error means the executor itself broke.
type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Catalog binds the three collection tools to a repository. It is the
// ToolGateway handed to the responder.
type Catalog struct {
	repo repox.Repository
	now  func() time.Time
}

func NewCatalog(repo repox.Repository, now func() time.Time) *Catalog {
	if now == nil {
		now = time.Now
	}
	return &Catalog{repo: repo, now: now}
}

// Infos describes the catalog to the reasoning engine.
func (c *Catalog) Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolDebtLookup,
			Desc: "Busca la deuda de un cliente por su cédula o identificador.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"identifier": {Type: schema.String, Desc: "Cédula o ID del cliente", Required: true},
			}),
		},
		{
			Name: ToolDateValidate,
			Desc: "Valida que una fecha de compromiso esté en formato YYYY-MM-DD, sea futura y dentro de 90 días.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"proposed_date": {Type: schema.String, Desc: "Fecha propuesta YYYY-MM-DD", Required: true},
			}),
		},
		{
			Name: ToolPromiseRegister,
			Desc: "Registra una promesa de pago confirmada por el cliente.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id":     {Type: schema.String, Desc: "Cédula o ID del cliente", Required: true},
				"amount":          {Type: schema.Number, Desc: "Monto prometido, mayor que 0", Required: true},
				"commitment_date": {Type: schema.String, Desc: "Fecha de compromiso YYYY-MM-DD", Required: true},
				"notes":           {Type: schema.String, Desc: "Observaciones opcionales"},
			}),
		},
	}
}

// NewExecutor routes tool names to their implementations.
func (c *Catalog) NewExecutor() Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolDebtLookup:
			return c.executeDebtLookup(ctx, args)
		case ToolDateValidate:
			return c.executeDateValidate(args)
		case ToolPromiseRegister:
			return c.executePromiseRegister(ctx, args)
		default:
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("tool=%s is not available", tool),
			}, nil
		}
	}
}

// Execute implements contract.ToolGateway over the catalog executor.
func (c *Catalog) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	executor := c.NewExecutor()
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := executor(ctx, req.Tool, req.Args)
		if err != nil {
			return nil, fmt.Errorf("execute tool=%s: %w", req.Tool, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
)

// DebtLookupOutput is the structured side of a debt.lookup result.
type DebtLookupOutput struct {
	Found    bool            `json:"found"`
	Customer *repox.Customer `json:"customer,omitempty"`
}

func (c *Catalog) executeDebtLookup(ctx context.Context, args map[string]any) (contractx.ToolResult, error) {
	identifier, ok := stringArg(args, "identifier")
	if !ok || strings.TrimSpace(identifier) == "" {
		return contractx.ToolResult{
			Tool:  ToolDebtLookup,
			Error: "identifier is required",
		}, nil
	}
	identifier = strings.TrimSpace(identifier)

	customer, err := c.repo.FindCustomer(ctx, identifier)
	if errors.Is(err, repox.ErrCustomerNotFound) {
		// A miss is a negative result for the model to relay, not a failure.
		return contractx.ToolResult{
			Tool:   ToolDebtLookup,
			Text:   fmt.Sprintf("No encontré al cliente %s en la base de datos.", identifier),
			Result: DebtLookupOutput{Found: false},
		}, nil
	}
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("find customer: %w", err)
	}

	text := fmt.Sprintf(
		"Cliente: %s\nCédula: %s\nDeuda total: $%.2f",
		customer.Name, customer.ID, customer.TotalDebt,
	)
	return contractx.ToolResult{
		Tool:   ToolDebtLookup,
		Text:   text,
		Result: DebtLookupOutput{Found: true, Customer: customer},
	}, nil
}

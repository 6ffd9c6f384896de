package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
)

// PromiseRegisterOutput is the structured side of a promise.register
// result.
type PromiseRegisterOutput struct {
	Promise repox.Promise `json:"promise"`
}

func (c *Catalog) executePromiseRegister(ctx context.Context, args map[string]any) (contractx.ToolResult, error) {
	customerID, ok := stringArg(args, "customer_id")
	if !ok || strings.TrimSpace(customerID) == "" {
		return contractx.ToolResult{
			Tool:  ToolPromiseRegister,
			Error: "customer_id is required",
		}, nil
	}
	customerID = strings.TrimSpace(customerID)

	amount, ok := numberArg(args, "amount")
	if !ok {
		return contractx.ToolResult{
			Tool:  ToolPromiseRegister,
			Error: "amount must be a number",
		}, nil
	}
	if amount <= 0 {
		return contractx.ToolResult{
			Tool:  ToolPromiseRegister,
			Text:  "❌ El monto debe ser mayor que 0.",
			Error: "amount must be greater than 0",
		}, nil
	}

	commitmentDate, ok := stringArg(args, "commitment_date")
	if !ok || strings.TrimSpace(commitmentDate) == "" {
		return contractx.ToolResult{
			Tool:  ToolPromiseRegister,
			Error: "commitment_date is required",
		}, nil
	}
	commitmentDate = strings.TrimSpace(commitmentDate)

	// Only the format is checked here; the future/90-day window is
	// date.validate's job earlier in the flow.
	if _, err := time.Parse(dateLayout, commitmentDate); err != nil {
		return contractx.ToolResult{
			Tool:  ToolPromiseRegister,
			Text:  "❌ La fecha debe estar en formato YYYY-MM-DD.",
			Error: "invalid date format, expected YYYY-MM-DD",
		}, nil
	}

	notes, _ := stringArg(args, "notes")
	notes = strings.TrimSpace(notes)

	id, err := c.repo.NextPromiseID(ctx)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("next promise id: %w", err)
	}

	promise := repox.Promise{
		ID:             id,
		CustomerID:     customerID,
		Amount:         amount,
		CommitmentDate: commitmentDate,
		Notes:          notes,
		CreatedAt:      c.now().UTC(),
	}
	if err := c.repo.SavePromise(ctx, &promise); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("save promise: %w", err)
	}

	displayNotes := notes
	if displayNotes == "" {
		displayNotes = "Ninguna"
	}
	text := fmt.Sprintf(
		"✅ Promesa de pago registrada.\nID promesa: %d\nCliente: %s\nMonto: $%.2f\nFecha compromiso: %s\nObs: %s",
		promise.ID, promise.CustomerID, promise.Amount, promise.CommitmentDate, displayNotes,
	)

	return contractx.ToolResult{
		Tool:   ToolPromiseRegister,
		Text:   text,
		Result: PromiseRegisterOutput{Promise: promise},
	}, nil
}

func numberArg(args map[string]any, key string) (float64, bool) {
	raw, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

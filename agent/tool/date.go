package tool

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

const dateLayout = "2006-01-02"

const maxCommitmentDays = 90

// DateValidateOutput is the structured side of a date.validate result.
// Warning is set when the date exceeds the 90-day window; the date is
// still usable in that case.
type DateValidateOutput struct {
	Date      string `json:"date"`
	DaysAhead int    `json:"days_ahead"`
	Warning   string `json:"warning,omitempty"`
}

func (c *Catalog) executeDateValidate(args map[string]any) (contractx.ToolResult, error) {
	proposed, ok := stringArg(args, "proposed_date")
	if !ok || strings.TrimSpace(proposed) == "" {
		return contractx.ToolResult{
			Tool:  ToolDateValidate,
			Error: "proposed_date is required",
		}, nil
	}
	proposed = strings.TrimSpace(proposed)

	parsed, err := time.Parse(dateLayout, proposed)
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolDateValidate,
			Text:  "❌ Usa formato YYYY-MM-DD.",
			Error: "invalid date format, expected YYYY-MM-DD",
		}, nil
	}

	today := dateOnly(c.now())
	if !parsed.After(today) {
		return contractx.ToolResult{
			Tool:  ToolDateValidate,
			Text:  "❌ La fecha debe ser posterior a hoy.",
			Error: "commitment date must be in the future",
		}, nil
	}

	daysAhead := int(parsed.Sub(today).Hours() / 24)
	date := parsed.Format(dateLayout)

	if daysAhead > maxCommitmentDays {
		warning := fmt.Sprintf("la fecha excede %d días, considera un compromiso más cercano", maxCommitmentDays)
		return contractx.ToolResult{
			Tool: ToolDateValidate,
			Text: fmt.Sprintf("⚠️ Fecha válida: %s, pero %s.", date, warning),
			Result: DateValidateOutput{
				Date:      date,
				DaysAhead: daysAhead,
				Warning:   warning,
			},
		}, nil
	}

	return contractx.ToolResult{
		Tool: ToolDateValidate,
		Text: fmt.Sprintf("✅ Fecha válida: %s", date),
		Result: DateValidateOutput{
			Date:      date,
			DaysAhead: daysAhead,
		},
	}, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package tool

import (
	"context"
	"strings"
	"testing"
)

func TestDateValidateInvalidFormat(t *testing.T) {
	t.Parallel()

	executor := newTestCatalog().NewExecutor()
	out, err := executor(context.Background(), ToolDateValidate, map[string]any{
		"proposed_date": "not-a-date",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected format error")
	}
	if out.Result != nil {
		t.Fatalf("no date object expected on format failure, got %+v", out.Result)
	}
	if !strings.Contains(out.Text, "YYYY-MM-DD") {
		t.Fatalf("unexpected text: %s", out.Text)
	}
}

func TestDateValidatePastAndToday(t *testing.T) {
	t.Parallel()

	executor := newTestCatalog().NewExecutor()
	for _, date := range []string{"2026-08-28", "2026-08-29", "2020-01-01"} {
		out, err := executor(context.Background(), ToolDateValidate, map[string]any{
			"proposed_date": date,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", date, err)
		}
		if out.Error == "" {
			t.Fatalf("%s: expected future-date error", date)
		}
		if !strings.Contains(out.Text, "posterior a hoy") {
			t.Fatalf("%s: unexpected text: %s", date, out.Text)
		}
	}
}

func TestDateValidateWithinWindow(t *testing.T) {
	t.Parallel()

	executor := newTestCatalog().NewExecutor()
	// 2026-08-30 is 1 day out, 2026-11-27 is exactly 90.
	for _, date := range []string{"2026-08-30", "2026-09-15", "2026-11-27"} {
		out, err := executor(context.Background(), ToolDateValidate, map[string]any{
			"proposed_date": date,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", date, err)
		}
		if out.Error != "" {
			t.Fatalf("%s: unexpected tool error: %s", date, out.Error)
		}
		result, ok := out.Result.(DateValidateOutput)
		if !ok {
			t.Fatalf("%s: unexpected result type %T", date, out.Result)
		}
		if result.Date != date {
			t.Fatalf("expected date %s, got %s", date, result.Date)
		}
		if result.Warning != "" {
			t.Fatalf("%s: unexpected warning: %s", date, result.Warning)
		}
	}
}

func TestDateValidateBeyondWindowWarnsButSucceeds(t *testing.T) {
	t.Parallel()

	executor := newTestCatalog().NewExecutor()
	out, err := executor(context.Background(), ToolDateValidate, map[string]any{
		"proposed_date": "2026-11-28", // 91 days out
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("warning case must not be a tool error: %s", out.Error)
	}
	result, ok := out.Result.(DateValidateOutput)
	if !ok {
		t.Fatalf("unexpected result type %T", out.Result)
	}
	if result.Warning == "" {
		t.Fatal("expected a 90-day warning annotation")
	}
	if result.Date != "2026-11-28" {
		t.Fatalf("date must still be usable, got %s", result.Date)
	}
}

func TestDateValidateMissingArg(t *testing.T) {
	t.Parallel()

	executor := newTestCatalog().NewExecutor()
	out, err := executor(context.Background(), ToolDateValidate, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected missing-argument error")
	}
}

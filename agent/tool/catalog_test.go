package tool

import (
	"context"
	"testing"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
)

var testNow = func() time.Time {
	return time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)
}

func newTestCatalog() *Catalog {
	return NewCatalog(repox.NewMemoryRepository(nil), testNow)
}

func TestCatalogInfos(t *testing.T) {
	t.Parallel()

	infos := newTestCatalog().Infos()
	if len(infos) != 3 {
		t.Fatalf("expected 3 tool infos, got %d", len(infos))
	}
	want := []string{ToolDebtLookup, ToolDateValidate, ToolPromiseRegister}
	for i, name := range want {
		if infos[i].Name != name {
			t.Fatalf("tool %d: expected %s, got %s", i, name, infos[i].Name)
		}
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	executor := newTestCatalog().NewExecutor()
	out, err := executor(context.Background(), "math.evaluate", map[string]any{"expression": "1+1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected unavailable-tool error message")
	}
}

func TestGatewayExecutePreservesOrder(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog()
	results, err := catalog.Execute(context.Background(), []contractx.ToolRequest{
		{Tool: ToolDebtLookup, Args: map[string]any{"identifier": "0957380330"}},
		{Tool: ToolDateValidate, Args: map[string]any{"proposed_date": "2026-09-15"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Tool != ToolDebtLookup || results[1].Tool != ToolDateValidate {
		t.Fatalf("results out of order: %s, %s", results[0].Tool, results[1].Tool)
	}
}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	orchestratorx "github.com/dataseed/cobranza-agent/agent/agents/orchestrator"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
)

type fakeAgent struct {
	reply        string
	err          error
	lastThreadID string
	lastText     string
}

func (f *fakeAgent) HandleMessage(ctx context.Context, threadID string, text string) (string, error) {
	f.lastThreadID = threadID
	f.lastText = text
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestServer(t *testing.T, agent Conversationalist, repo repox.Repository, probe ModelProbe) *Server {
	t.Helper()
	s, err := New(agent, repo, probe, Config{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestChatRoundTrip(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: "Hola, soy el asistente de DataSeed."}
	s := newTestServer(t, agent, repox.NewMemoryRepository(nil), nil)

	rec := postChat(t, s, `{"message":"hola","thread_id":"thread-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	decodeBody(t, rec, &resp)
	if resp.ThreadID != "thread-1" {
		t.Fatalf("thread id not echoed: %q", resp.ThreadID)
	}
	if resp.Reply != agent.reply {
		t.Fatalf("unexpected reply: %q", resp.Reply)
	}
	if agent.lastText != "hola" {
		t.Fatalf("agent received %q", agent.lastText)
	}
}

func TestChatMintsThreadID(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: "ok"}
	s := newTestServer(t, agent, repox.NewMemoryRepository(nil), nil)

	rec := postChat(t, s, `{"message":"hola"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp chatResponse
	decodeBody(t, rec, &resp)
	if strings.TrimSpace(resp.ThreadID) == "" {
		t.Fatal("expected a generated thread id")
	}
	if resp.ThreadID != agent.lastThreadID {
		t.Fatalf("response thread %q does not match the one handed to the agent %q", resp.ThreadID, agent.lastThreadID)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: "never"}
	s := newTestServer(t, agent, repox.NewMemoryRepository(nil), nil)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		rec := postChat(t, s, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
		var resp map[string]string
		decodeBody(t, rec, &resp)
		if resp["error"] != "Mensaje vacío" {
			t.Fatalf("body %s: unexpected error %q", body, resp["error"])
		}
	}
	if agent.lastText != "" {
		t.Fatal("empty messages must not reach the agent")
	}
}

func TestChatRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAgent{}, repox.NewMemoryRepository(nil), nil)
	rec := postChat(t, s, `{"message":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid message", fmt.Errorf("node: %w", orchestratorx.ErrInvalidMessage), http.StatusBadRequest, "Mensaje vacío"},
		{"invalid thread", fmt.Errorf("node: %w", orchestratorx.ErrInvalidThread), http.StatusBadRequest, "Petición inválida"},
		{"internal", errors.New("model exploded"), http.StatusInternalServerError, "Error interno en el agente"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, &fakeAgent{err: tc.err}, repox.NewMemoryRepository(nil), nil)
			rec := postChat(t, s, `{"message":"hola","thread_id":"thread-1"}`)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var resp map[string]string
			decodeBody(t, rec, &resp)
			if resp["error"] != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, resp["error"])
			}
			if strings.Contains(rec.Body.String(), "exploded") {
				t.Fatal("internal detail leaked to the client")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("reachable", func(t *testing.T) {
		t.Parallel()
		probe := func(ctx context.Context) error { return nil }
		s := newTestServer(t, &fakeAgent{}, repox.NewMemoryRepository(nil), probe)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		probe := func(ctx context.Context) error { return errors.New("connection refused") }
		s := newTestServer(t, &fakeAgent{}, repox.NewMemoryRepository(nil), probe)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

func TestPromiseListing(t *testing.T) {
	t.Parallel()

	repo := repox.NewMemoryRepository(repox.DemoCustomers())
	ctx := context.Background()
	if err := repo.SavePromise(ctx, &repox.Promise{
		ID:             1,
		CustomerID:     "0957380330",
		Amount:         450,
		CommitmentDate: "2026-09-15",
	}); err != nil {
		t.Fatalf("seed promise: %v", err)
	}

	s := newTestServer(t, &fakeAgent{}, repo, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/0957380330/promises", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		CustomerID string          `json:"customer_id"`
		Promises   []repox.Promise `json:"promises"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Promises) != 1 || resp.Promises[0].CommitmentDate != "2026-09-15" {
		t.Fatalf("unexpected promises: %+v", resp.Promises)
	}
}

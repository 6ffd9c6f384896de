package state

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestAdvanceRequiresEvidencePerStage(t *testing.T) {
	t.Parallel()

	n := NewNegotiation(testNow)
	if n.Stage != StageAwaitingIdentifier {
		t.Fatalf("unexpected initial stage: %s", n.Stage)
	}

	// Identifier extracted but not verified yet: stay put.
	n.ApplyExtraction(contractx.ExtractorResponse{
		SlotsPatch: contractx.Slots{CustomerID: "0957380330"},
	}, testNow)
	n.Advance(testNow)
	if n.Stage != StageAwaitingIdentifier {
		t.Fatalf("advanced without verified customer: %s", n.Stage)
	}

	n.MarkCustomerVerified("0957380330", testNow)
	n.Advance(testNow)
	if n.Stage != StageDiagnosingCause {
		t.Fatalf("expected diagnosing_cause, got %s", n.Stage)
	}

	n.ApplyExtraction(contractx.ExtractorResponse{
		SlotsPatch: contractx.Slots{Cause: "perdió el empleo", Amount: 450},
	}, testNow)
	n.Advance(testNow)
	if n.Stage != StageDiagnosingDate {
		t.Fatalf("expected diagnosing_date after cause+amount, got %s", n.Stage)
	}

	// Date extracted but not validated: stay put.
	n.ApplyExtraction(contractx.ExtractorResponse{
		SlotsPatch: contractx.Slots{CommitmentDate: "2026-09-15"},
	}, testNow)
	n.Advance(testNow)
	if n.Stage != StageDiagnosingDate {
		t.Fatalf("advanced without validated date: %s", n.Stage)
	}

	n.MarkDateValidated("2026-09-15", testNow)
	n.Advance(testNow)
	if n.Stage != StageDiagnosingChannel {
		t.Fatalf("expected diagnosing_channel, got %s", n.Stage)
	}

	n.ApplyExtraction(contractx.ExtractorResponse{
		SlotsPatch: contractx.Slots{Channel: "transferencia"},
	}, testNow)
	n.Advance(testNow)
	if n.Stage != StageAwaitingConfirmation {
		t.Fatalf("expected awaiting_confirmation, got %s", n.Stage)
	}
}

func TestClosedRequiresRegisteredPromise(t *testing.T) {
	t.Parallel()

	n := NewNegotiation(testNow)
	n.MarkCustomerVerified("0957380330", testNow)
	n.ApplyExtraction(contractx.ExtractorResponse{
		SlotsPatch: contractx.Slots{
			Cause:          "atraso salarial",
			Amount:         200,
			CommitmentDate: "2026-09-10",
			Channel:        "ventanilla",
		},
	}, testNow)
	n.MarkDateValidated("2026-09-10", testNow)
	n.Advance(testNow)
	if n.Stage != StageAwaitingConfirmation {
		t.Fatalf("expected awaiting_confirmation, got %s", n.Stage)
	}

	// Confirmation without a registered promise must not close.
	n.ApplyExtraction(contractx.ExtractorResponse{Confirmed: true}, testNow)
	n.Advance(testNow)
	if n.Stage != StageAwaitingConfirmation {
		t.Fatalf("closed without promise: %s", n.Stage)
	}

	if err := n.MarkRegistered(0, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for id=0, got %v", err)
	}
	if err := n.MarkRegistered(1, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n.Advance(testNow)
	if !n.IsClosed() {
		t.Fatalf("expected closed, got %s", n.Stage)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("closed state should validate: %v", err)
	}
}

func TestChangedDateInvalidatesValidation(t *testing.T) {
	t.Parallel()

	n := NewNegotiation(testNow)
	n.MarkDateValidated("2026-09-10", testNow)
	n.ApplyExtraction(contractx.ExtractorResponse{
		SlotsPatch: contractx.Slots{CommitmentDate: "2026-10-01"},
	}, testNow)
	if n.DateValidated {
		t.Fatal("date validation should reset when the date changes")
	}
	if n.Slots.CommitmentDate != "2026-10-01" {
		t.Fatalf("unexpected date slot: %s", n.Slots.CommitmentDate)
	}
}

func TestValidateRejectsCorruptStates(t *testing.T) {
	t.Parallel()

	n := NewNegotiation(testNow)
	n.Stage = Stage("weird")
	if err := n.Validate(); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}

	n = NewNegotiation(testNow)
	n.Stage = StageClosed
	if err := n.Validate(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestIntentIsRecordedButOptional(t *testing.T) {
	t.Parallel()

	n := NewNegotiation(testNow)
	n.ApplyExtraction(contractx.ExtractorResponse{Intent: contractx.IntentHigh}, testNow)
	if n.Intent != contractx.IntentHigh {
		t.Fatalf("unexpected intent: %s", n.Intent)
	}
	n.ApplyExtraction(contractx.ExtractorResponse{}, testNow)
	if n.Intent != contractx.IntentHigh {
		t.Fatal("unknown intent must not erase a known tag")
	}
}

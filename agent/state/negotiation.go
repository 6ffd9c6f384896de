package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/dataseed/cobranza-agent/agent/contract"
)

// Stage is one step of the diagnostic flow. Stages only move forward;
// the orchestrator advances them mechanically from collected evidence,
// never from model output alone.
type Stage string

const (
	StageAwaitingIdentifier   Stage = "awaiting_identifier"
	StageDiagnosingCause      Stage = "diagnosing_cause"
	StageDiagnosingAmount     Stage = "diagnosing_amount"
	StageDiagnosingDate       Stage = "diagnosing_date"
	StageDiagnosingChannel    Stage = "diagnosing_channel"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	StageClosed               Stage = "closed"
)

var (
	ErrUnknownStage      = errors.New("unknown negotiation stage")
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// Negotiation tracks the collected slots and the current stage for one
// thread. The intent tag is internal bookkeeping and must never reach
// the end user.
type Negotiation struct {
	Stage  Stage            `json:"stage"`
	Slots  contractx.Slots  `json:"slots"`
	Intent contractx.Intent `json:"intent,omitempty"`

	// Evidence gathered from tool results.
	CustomerVerified bool  `json:"customer_verified,omitempty"`
	DateValidated    bool  `json:"date_validated,omitempty"`
	Confirmed        bool  `json:"confirmed,omitempty"`
	PromiseID        int64 `json:"promise_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewNegotiation(now time.Time) Negotiation {
	return Negotiation{
		Stage:     StageAwaitingIdentifier,
		UpdatedAt: now.UTC(),
	}
}

// ApplyExtraction merges the extractor's slot patch. Only non-zero fields
// overwrite; a changed commitment date invalidates earlier validation.
func (n *Negotiation) ApplyExtraction(resp contractx.ExtractorResponse, now time.Time) {
	patch := resp.SlotsPatch
	if v := strings.TrimSpace(patch.CustomerID); v != "" && v != n.Slots.CustomerID {
		n.Slots.CustomerID = v
		n.CustomerVerified = false
	}
	if v := strings.TrimSpace(patch.Cause); v != "" {
		n.Slots.Cause = v
	}
	if patch.Amount > 0 {
		n.Slots.Amount = patch.Amount
	}
	if v := strings.TrimSpace(patch.CommitmentDate); v != "" && v != n.Slots.CommitmentDate {
		n.Slots.CommitmentDate = v
		n.DateValidated = false
	}
	if v := strings.TrimSpace(patch.Channel); v != "" {
		n.Slots.Channel = v
	}
	if resp.Intent != contractx.IntentUnknown {
		n.Intent = resp.Intent
	}
	if resp.Confirmed && n.Stage == StageAwaitingConfirmation {
		n.Confirmed = true
	}
	n.UpdatedAt = now.UTC()
}

// MarkCustomerVerified records a successful debt lookup for the given id.
func (n *Negotiation) MarkCustomerVerified(customerID string, now time.Time) {
	if strings.TrimSpace(customerID) == "" {
		return
	}
	n.Slots.CustomerID = customerID
	n.CustomerVerified = true
	n.UpdatedAt = now.UTC()
}

// MarkDateValidated records a successful date.validate for the given date.
func (n *Negotiation) MarkDateValidated(date string, now time.Time) {
	if strings.TrimSpace(date) == "" {
		return
	}
	n.Slots.CommitmentDate = date
	n.DateValidated = true
	n.UpdatedAt = now.UTC()
}

// MarkRegistered records the promise created by promise.register and is
// the only way to satisfy the Closed stage's requirement.
func (n *Negotiation) MarkRegistered(promiseID int64, now time.Time) error {
	if promiseID <= 0 {
		return fmt.Errorf("%w: promise id must be positive", ErrInvalidTransition)
	}
	n.PromiseID = promiseID
	n.Confirmed = true
	n.UpdatedAt = now.UTC()
	return nil
}

// Advance walks the stage forward as far as the collected evidence
// allows. It never skips a stage's requirement and never moves backward.
func (n *Negotiation) Advance(now time.Time) {
	for {
		next, ok := n.nextStage()
		if !ok {
			break
		}
		n.Stage = next
	}
	n.UpdatedAt = now.UTC()
}

func (n *Negotiation) nextStage() (Stage, bool) {
	switch n.Stage {
	case StageAwaitingIdentifier:
		if n.Slots.CustomerID != "" && n.CustomerVerified {
			return StageDiagnosingCause, true
		}
	case StageDiagnosingCause:
		if n.Slots.Cause != "" {
			return StageDiagnosingAmount, true
		}
	case StageDiagnosingAmount:
		if n.Slots.Amount > 0 {
			return StageDiagnosingDate, true
		}
	case StageDiagnosingDate:
		if n.Slots.CommitmentDate != "" && n.DateValidated {
			return StageDiagnosingChannel, true
		}
	case StageDiagnosingChannel:
		if n.Slots.Channel != "" {
			return StageAwaitingConfirmation, true
		}
	case StageAwaitingConfirmation:
		if n.Confirmed && n.PromiseID > 0 {
			return StageClosed, true
		}
	}
	return "", false
}

func (n *Negotiation) IsClosed() bool {
	return n != nil && n.Stage == StageClosed
}

func (n *Negotiation) Validate() error {
	switch n.Stage {
	case StageAwaitingIdentifier, StageDiagnosingCause, StageDiagnosingAmount,
		StageDiagnosingDate, StageDiagnosingChannel, StageAwaitingConfirmation:
	case StageClosed:
		if n.PromiseID <= 0 {
			return fmt.Errorf("%w: closed negotiation without a registered promise", ErrInvalidTransition)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStage, n.Stage)
	}
	if n.DateValidated && n.Slots.CommitmentDate == "" {
		return fmt.Errorf("%w: validated date without a date slot", ErrInvalidTransition)
	}
	return nil
}

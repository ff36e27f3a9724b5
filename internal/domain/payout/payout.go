package payout

import (
	"fmt"
	"strings"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of a payout
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no transition leaves this status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// DefaultFailureMessage is recorded when a failure carries no message
const DefaultFailureMessage = "Payment processing failed"

// Payout is a batched disbursement to a partner.
// Amount is fixed at creation to the sum of the included referral amounts.
type Payout struct {
	shared.BaseAggregateRoot
	ID             string
	PartnerID      int64
	Amount         decimal.Decimal
	Status         Status
	PaymentMethod  PaymentMethod
	PaymentDetails map[string]any
	TransactionID  string
	Note           string
	ClientNotes    string
	RequestDate    time.Time
	ProcessedDate  *time.Time
	ProcessedBy    string
	Referrals      []*PayoutReferral

	pendingEntries []*TimelineEntry
}

// NewPayout starts a pending payout with a fresh id and no included referrals
func NewPayout(partnerID int64, method PaymentMethod, details map[string]any, clientNotes, actorID string) (*Payout, error) {
	if partnerID <= 0 {
		return nil, shared.NewValidationError("Partner is required",
			shared.FieldError{Field: "partner", Message: "This field is required."})
	}
	normalized, err := ValidateDetails(method, details)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Payout{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                NewID(),
		PartnerID:         partnerID,
		Amount:            decimal.Zero,
		Status:            StatusPending,
		PaymentMethod:     method,
		PaymentDetails:    normalized,
		ClientNotes:       clientNotes,
		RequestDate:       now,
	}
	p.record(actorID, now, "Payout requested")
	return p, nil
}

// Include adds a referral's earning to the payout and grows the amount by it
func (p *Payout) Include(referralID, earningID int64, amount decimal.Decimal) *PayoutReferral {
	pr := &PayoutReferral{
		PayoutID:   p.ID,
		ReferralID: referralID,
		EarningID:  earningID,
		Amount:     shared.RoundMoney(amount),
		CreatedAt:  time.Now(),
	}
	p.Referrals = append(p.Referrals, pr)
	p.Amount = p.Amount.Add(pr.Amount)
	return pr
}

// RecordCreated raises the created event once the included referrals are final
func (p *Payout) RecordCreated() {
	p.AddDomainEvent(NewPayoutCreatedEvent(p))
}

// CanProcess returns true if the payout may be sent to its processor
func (p *Payout) CanProcess() bool {
	return p.Status == StatusPending
}

// CanComplete returns true if the payout may be completed
func (p *Payout) CanComplete() bool {
	return p.Status == StatusProcessing
}

// CanCancel returns true if the payout may be cancelled
func (p *Payout) CanCancel() bool {
	return p.Status == StatusPending || p.Status == StatusProcessing
}

// CanFail returns true if the payout may be marked failed
func (p *Payout) CanFail() bool {
	return p.Status == StatusPending || p.Status == StatusProcessing
}

// StartProcessing moves a pending payout to processing and merges the processor's
// tracking metadata into the payment details
func (p *Payout) StartProcessing(actorID string, tracking map[string]any) error {
	if !p.CanProcess() {
		return shared.NewDomainError(shared.CodePaymentProcessing,
			fmt.Sprintf("Cannot process payout in %s status, expected %s", p.Status, StatusPending))
	}
	if p.PaymentDetails == nil {
		p.PaymentDetails = map[string]any{}
	}
	for k, v := range tracking {
		p.PaymentDetails[k] = v
	}
	p.transition(StatusProcessing, actorID, "")
	return nil
}

// Complete marks a processing payout as paid out
func (p *Payout) Complete(actorID, transactionID string) error {
	if !p.CanComplete() {
		return shared.NewDomainError(shared.CodePaymentProcessing,
			fmt.Sprintf("Cannot complete payout in %s status, expected %s", p.Status, StatusProcessing))
	}
	now := time.Now()
	p.ProcessedDate = &now
	if transactionID = strings.TrimSpace(transactionID); transactionID != "" {
		p.TransactionID = transactionID
	}
	p.transition(StatusCompleted, actorID, "")
	return nil
}

// Fail marks the payout failed and appends the error to the note
func (p *Payout) Fail(actorID, message string) error {
	if !p.CanFail() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot fail payout in %s status", p.Status))
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultFailureMessage
	}
	p.Note += "\nError: " + message
	p.transition(StatusFailed, actorID, message)
	return nil
}

// Cancel withdraws a pending or processing payout and appends the reason to the note
func (p *Payout) Cancel(actorID, reason string) error {
	if !p.CanCancel() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot cancel payout in %s status", p.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason != "" {
		p.Note += "\nCancellation reason: " + reason
	}
	p.transition(StatusCancelled, actorID, reason)
	return nil
}

func (p *Payout) transition(to Status, actorID, detail string) {
	from := p.Status
	now := time.Now()
	p.Status = to
	p.ProcessedBy = actorID
	p.UpdatedAt = now
	p.IncrementVersion()

	note := fmt.Sprintf("Status changed from %s to %s", from, to)
	if detail != "" {
		note += ": " + detail
	}
	p.record(actorID, now, note)
	p.AddDomainEvent(NewPayoutStatusChangedEvent(p, from))
}

func (p *Payout) record(actorID string, at time.Time, note string) {
	p.pendingEntries = append(p.pendingEntries, &TimelineEntry{
		PayoutID:  p.ID,
		Status:    p.Status,
		Timestamp: at,
		Note:      note,
		CreatedBy: actorID,
	})
}

// PendingTimelineEntries returns timeline entries not yet persisted
func (p *Payout) PendingTimelineEntries() []*TimelineEntry {
	return p.pendingEntries
}

// ClearPendingTimelineEntries is called by the repository after the entries are written
func (p *Payout) ClearPendingTimelineEntries() {
	p.pendingEntries = nil
}

package earning

import (
	"fmt"
	"strings"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the payment status of an earning
type Status string

const (
	StatusPending         Status = "pending"
	StatusPendingApproval Status = "pending_approval"
	StatusAvailable       Status = "available"
	StatusProcessing      Status = "processing"
	StatusPaid            Status = "paid"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusAvailable, StatusProcessing,
		StatusPaid, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusRejected
}

// Source identifies where an earning came from
type Source string

const (
	SourceReferral  Source = "referral"
	SourceBonus     Source = "bonus"
	SourcePromotion Source = "promotion"
	SourceOther     Source = "other"
)

// IsValid checks if the source is valid
func (s Source) IsValid() bool {
	switch s {
	case SourceReferral, SourceBonus, SourcePromotion, SourceOther:
		return true
	}
	return false
}

// String returns the string representation
func (s Source) String() string {
	return string(s)
}

// Earning is a commission-bearing credit owed to a partner.
// Status only moves through the transition methods below; Amount never changes after creation.
type Earning struct {
	shared.BaseAggregateRoot
	ID         int64
	PartnerID  int64
	ReferralID *int64
	PayoutID   *string
	Amount     decimal.Decimal
	Date       time.Time
	Source     Source
	Status     Status
	Notes      string
	ApprovedBy *string
	ApprovedAt *time.Time
	RejectedBy *string
	RejectedAt *time.Time
}

// NewReferralEarning creates the earning owed for a converted referral.
// A positive amount is immediately available; zero waits in pending.
func NewReferralEarning(partnerID, referralID int64, amount decimal.Decimal) (*Earning, error) {
	if partnerID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Earning requires a partner")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Amount cannot be negative",
			shared.FieldError{Field: "amount", Message: "Ensure this value is greater than or equal to 0."})
	}

	status := StatusPending
	if amount.IsPositive() {
		status = StatusAvailable
	}
	rid := referralID
	return &Earning{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         partnerID,
		ReferralID:        &rid,
		Amount:            shared.RoundMoney(amount),
		Date:              time.Now(),
		Source:            SourceReferral,
		Status:            status,
	}, nil
}

// NewManualEarning creates a staff-entered credit such as a bonus or promotion.
// Manual earnings wait for approval before they can be paid out.
func NewManualEarning(partnerID int64, amount decimal.Decimal, source Source, notes string, date time.Time) (*Earning, error) {
	if partnerID <= 0 {
		return nil, shared.NewValidationError("Partner is required",
			shared.FieldError{Field: "partner_id", Message: "This field is required."})
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Amount must be positive",
			shared.FieldError{Field: "amount", Message: "Ensure this value is greater than 0."})
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("\"%s\" is not a valid choice.", source),
			shared.FieldError{Field: "source", Message: "Not a valid choice."})
	}
	if source == SourceReferral {
		return nil, shared.NewValidationError("Referral earnings are created by converting a referral",
			shared.FieldError{Field: "source", Message: "Referral earnings cannot be entered manually."})
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Earning{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         partnerID,
		Amount:            shared.RoundMoney(amount),
		Date:              date,
		Source:            source,
		Status:            StatusPendingApproval,
		Notes:             notes,
	}, nil
}

// transition moves to the target status and raises the change event
func (e *Earning) transition(to Status) {
	from := e.Status
	e.Status = to
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewEarningStatusChangedEvent(e, from))
}

// MarkAsAvailable moves a pending earning to available
func (e *Earning) MarkAsAvailable() bool {
	if e.Status != StatusPending {
		return false
	}
	e.transition(StatusAvailable)
	return true
}

// MarkAsProcessing claims an available earning for a payout
func (e *Earning) MarkAsProcessing(payoutID string) bool {
	if e.Status != StatusAvailable {
		return false
	}
	if payoutID != "" {
		id := payoutID
		e.PayoutID = &id
	}
	e.transition(StatusProcessing)
	return true
}

// MarkAsPaid settles an earning that is being processed
func (e *Earning) MarkAsPaid() bool {
	if e.Status != StatusProcessing {
		return false
	}
	e.transition(StatusPaid)
	return true
}

// ReleaseFromPayout returns a processing earning to available and unlinks its payout.
// Used when the owning payout fails or is cancelled.
func (e *Earning) ReleaseFromPayout() bool {
	if e.Status != StatusProcessing {
		return false
	}
	e.PayoutID = nil
	e.transition(StatusAvailable)
	return true
}

// Cancel voids any non-terminal earning that no payout has claimed. A claimed
// earning is released by cancelling or failing its payout first.
func (e *Earning) Cancel(reason string) bool {
	if e.Status.IsTerminal() || e.IsClaimed() {
		return false
	}
	if strings.TrimSpace(reason) != "" {
		e.Notes += "\nCancellation reason: " + strings.TrimSpace(reason)
	}
	e.transition(StatusCancelled)
	return true
}

// IsClaimed reports whether a payout currently holds the earning
func (e *Earning) IsClaimed() bool {
	return e.PayoutID != nil && e.Status == StatusProcessing
}

// Approve makes a manually entered earning available
func (e *Earning) Approve(actorID string) error {
	if e.Status != StatusPendingApproval {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot approve earning in %s status, expected %s", e.Status, StatusPendingApproval))
	}
	now := time.Now()
	e.ApprovedBy = &actorID
	e.ApprovedAt = &now
	e.transition(StatusAvailable)
	return nil
}

// Reject declines a manually entered earning
func (e *Earning) Reject(actorID, reason string) error {
	if e.Status != StatusPendingApproval {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot reject earning in %s status, expected %s", e.Status, StatusPendingApproval))
	}
	now := time.Now()
	e.RejectedBy = &actorID
	e.RejectedAt = &now
	if strings.TrimSpace(reason) != "" {
		e.Notes += "\nRejection reason: " + strings.TrimSpace(reason)
	}
	e.transition(StatusRejected)
	return nil
}

// RecordCreated raises the created event once the earning has been assigned an ID
func (e *Earning) RecordCreated() {
	e.AddDomainEvent(NewEarningCreatedEvent(e))
}

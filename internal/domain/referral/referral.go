package referral

import (
	"fmt"
	"strings"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Referral is a prospective client introduced by a partner
type Referral struct {
	shared.BaseAggregateRoot
	ID                         int64
	UserID                     string
	PartnerID                  *int64
	ReferralCode               string
	ClientName                 string
	ClientEmail                string
	ClientPhone                string
	ClientCompany              string
	ProductID                  *int64
	ProductName                string
	BudgetRange                string
	Notes                      string
	Status                     Status
	PrevStatus                 Status
	Timeline                   Timeline
	ExpectedImplementationDate *time.Time
	PotentialCommission        decimal.Decimal
	ActualCommission           *decimal.Decimal
	SubmittedAt                time.Time
	UpdatedBy                  string

	pendingEntries    []*TimelineEntry
	commissionWarning string
}

// SubmitParams carries everything needed to create a referral
type SubmitParams struct {
	UserID string
	// PartnerID and PartnerCode come from the submitting user's partner profile, if any
	PartnerID   *int64
	PartnerCode string
	// ReferralCode is the code supplied by the caller; used only when the user has no partner code
	ReferralCode        string
	ClientName          string
	ClientEmail         string
	ClientPhone         string
	ClientCompany       string
	Product             *Product
	ProductName         string
	BudgetRange         string
	Notes               string
	Timeline            Timeline
	PotentialCommission *decimal.Decimal
	SubmittedAt         time.Time
}

// Submit creates a new referral in the pending state.
// The partner's referral code wins over a caller-supplied one; if neither exists the
// submission is rejected. The commission estimate is best-effort: an unparsable product
// commission or price leaves the estimate at zero and records a warning.
func Submit(p SubmitParams) (*Referral, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, shared.NewValidationError("User is required",
			shared.FieldError{Field: "user", Message: "This field is required."})
	}

	var missing []string
	if strings.TrimSpace(p.ClientName) == "" {
		missing = append(missing, "client_name")
	}
	if strings.TrimSpace(p.ClientEmail) == "" {
		missing = append(missing, "client_email")
	}
	if strings.TrimSpace(p.ClientPhone) == "" {
		missing = append(missing, "client_phone")
	}
	if len(missing) > 0 {
		return nil, shared.MissingFieldsError("Missing required fields", missing)
	}

	code := strings.TrimSpace(p.PartnerCode)
	if code == "" {
		code = strings.TrimSpace(p.ReferralCode)
	}
	if code == "" {
		return nil, shared.NewValidationError("Referral code is required because the user has none.",
			shared.FieldError{Field: "referral_code", Message: "Referral code is required because the user has none."})
	}

	if p.Timeline != "" && !p.Timeline.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid timeline: %s", p.Timeline),
			shared.FieldError{Field: "timeline", Message: "Not a valid choice."})
	}

	submittedAt := p.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	r := &Referral{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            p.UserID,
		PartnerID:         p.PartnerID,
		ReferralCode:      code,
		ClientName:        strings.TrimSpace(p.ClientName),
		ClientEmail:       strings.TrimSpace(p.ClientEmail),
		ClientPhone:       strings.TrimSpace(p.ClientPhone),
		ClientCompany:     strings.TrimSpace(p.ClientCompany),
		ProductName:       strings.TrimSpace(p.ProductName),
		BudgetRange:       p.BudgetRange,
		Notes:             p.Notes,
		Status:            StatusPending,
		Timeline:          p.Timeline,
		SubmittedAt:       submittedAt,
		UpdatedBy:         p.UserID,
	}
	r.CreatedAt = submittedAt
	r.UpdatedAt = submittedAt

	if p.PotentialCommission != nil {
		r.PotentialCommission = shared.RoundMoney(*p.PotentialCommission)
	}

	if p.Product != nil {
		r.attachProduct(p.Product)
	}

	r.ExpectedImplementationDate = r.Timeline.ExpectedDate(submittedAt)
	return r, nil
}

func (r *Referral) attachProduct(product *Product) {
	id := product.ID
	r.ProductID = &id
	if r.ProductName == "" {
		r.ProductName = product.Name
	}
	if !r.PotentialCommission.IsZero() {
		return
	}
	estimate, err := product.EstimateCommission()
	if err != nil {
		r.commissionWarning = err.Error()
		return
	}
	r.PotentialCommission = estimate
}

// RecordSubmitted raises the submitted event once the referral has been assigned an ID
func (r *Referral) RecordSubmitted() {
	r.AddDomainEvent(NewReferralSubmittedEvent(r))
}

// CommissionWarning returns why the commission estimate could not be derived, if it failed
func (r *Referral) CommissionWarning() string {
	return r.commissionWarning
}

// ChangeStatus moves the referral to a new status.
// It records the previous status and appends a timeline entry. On conversion the actual
// commission is locked to the potential commission the first time only.
// Returns false when the status is unchanged.
func (r *Referral) ChangeStatus(to Status, actorID string, at time.Time) (bool, error) {
	if !to.IsValid() {
		return false, shared.NewValidationError(fmt.Sprintf("\"%s\" is not a valid choice.", to),
			shared.FieldError{Field: "status", Message: fmt.Sprintf("\"%s\" is not a valid choice.", to)})
	}
	if at.IsZero() {
		at = time.Now()
	}
	if to == r.Status {
		return false, nil
	}

	from := r.Status
	r.PrevStatus = from
	r.Status = to
	r.UpdatedBy = actorID
	r.UpdatedAt = at
	r.IncrementVersion()

	r.pendingEntries = append(r.pendingEntries, &TimelineEntry{
		ReferralID: r.ID,
		Status:     to,
		Timestamp:  at,
		Note:       fmt.Sprintf("Status changed from %s to %s", from, to),
		CreatedBy:  actorID,
	})

	if to == StatusConverted && r.ActualCommission == nil {
		actual := r.PotentialCommission
		r.ActualCommission = &actual
	}

	r.AddDomainEvent(NewReferralStatusChangedEvent(r, from))
	if to == StatusConverted {
		r.AddDomainEvent(NewReferralConvertedEvent(r))
	}
	return true, nil
}

// AddNote appends a free-text timeline entry tagged with the current status
func (r *Referral) AddNote(note, actorID string, at time.Time) (*TimelineEntry, error) {
	if strings.TrimSpace(note) == "" {
		return nil, shared.NewValidationError("Note is required",
			shared.FieldError{Field: "note", Message: "This field is required."})
	}
	if at.IsZero() {
		at = time.Now()
	}
	entry := &TimelineEntry{
		ReferralID: r.ID,
		Status:     r.Status,
		Timestamp:  at,
		Note:       strings.TrimSpace(note),
		CreatedBy:  actorID,
	}
	r.pendingEntries = append(r.pendingEntries, entry)
	return entry, nil
}

// AttachPartner links a referral submitted before its user had a partner profile.
// An existing partner is never replaced. The version is left for the caller to bump
// together with any other change persisted in the same update.
func (r *Referral) AttachPartner(partnerID int64) bool {
	if r.PartnerID != nil || partnerID <= 0 {
		return false
	}
	r.PartnerID = &partnerID
	return true
}

// IsConverted returns true if the referral has been converted
func (r *Referral) IsConverted() bool {
	return r.Status == StatusConverted
}

// EarningAmount returns the commission owed once converted
func (r *Referral) EarningAmount() decimal.Decimal {
	if r.ActualCommission != nil {
		return *r.ActualCommission
	}
	return r.PotentialCommission
}

// PendingTimelineEntries returns timeline entries not yet persisted
func (r *Referral) PendingTimelineEntries() []*TimelineEntry {
	return r.pendingEntries
}

// ClearPendingTimelineEntries is called by the repository after the entries are written
func (r *Referral) ClearPendingTimelineEntries() {
	r.pendingEntries = nil
}

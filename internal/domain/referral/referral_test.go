package referral

import (
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func validParams() SubmitParams {
	return SubmitParams{
		UserID:      "user-1",
		PartnerID:   int64Ptr(7),
		PartnerCode: "REF-AB12CD34",
		ClientName:  "Jane Client",
		ClientEmail: "jane@client.test",
		ClientPhone: "+254700000000",
	}
}

func TestSubmit(t *testing.T) {
	t.Run("derives potential commission from product", func(t *testing.T) {
		p := validParams()
		p.Product = &Product{ID: 3, Name: "CRM Suite", Commission: "10%", Price: "1000"}

		r, err := Submit(p)
		require.NoError(t, err)

		assert.Equal(t, "100.00", r.PotentialCommission.StringFixed(2))
		assert.Equal(t, "CRM Suite", r.ProductName)
		require.NotNil(t, r.ProductID)
		assert.Equal(t, int64(3), *r.ProductID)
		assert.Equal(t, StatusPending, r.Status)
		assert.Empty(t, r.CommissionWarning())
	})

	t.Run("explicit potential commission is kept", func(t *testing.T) {
		p := validParams()
		explicit := decimal.NewFromInt(42)
		p.PotentialCommission = &explicit
		p.Product = &Product{ID: 3, Name: "CRM Suite", Commission: "10%", Price: "1000"}

		r, err := Submit(p)
		require.NoError(t, err)
		assert.True(t, r.PotentialCommission.Equal(decimal.NewFromInt(42)))
	})

	t.Run("unparsable commission leaves estimate unchanged", func(t *testing.T) {
		p := validParams()
		p.Product = &Product{ID: 3, Name: "CRM Suite", Commission: "ten percent", Price: "1000"}

		r, err := Submit(p)
		require.NoError(t, err)
		assert.True(t, r.PotentialCommission.IsZero())
		assert.NotEmpty(t, r.CommissionWarning())
	})

	t.Run("unparsable price leaves estimate unchanged", func(t *testing.T) {
		p := validParams()
		p.Product = &Product{ID: 3, Name: "CRM Suite", Commission: "10%", Price: "call us"}

		r, err := Submit(p)
		require.NoError(t, err)
		assert.True(t, r.PotentialCommission.IsZero())
		assert.NotEmpty(t, r.CommissionWarning())
	})

	t.Run("partner code wins over supplied code", func(t *testing.T) {
		p := validParams()
		p.ReferralCode = "OTHER"

		r, err := Submit(p)
		require.NoError(t, err)
		assert.Equal(t, "REF-AB12CD34", r.ReferralCode)
	})

	t.Run("supplied code used when user has no partner", func(t *testing.T) {
		p := validParams()
		p.PartnerID = nil
		p.PartnerCode = ""
		p.ReferralCode = "REF-00000001"

		r, err := Submit(p)
		require.NoError(t, err)
		assert.Equal(t, "REF-00000001", r.ReferralCode)
		assert.Nil(t, r.PartnerID)
	})

	t.Run("referral code required when user has none", func(t *testing.T) {
		p := validParams()
		p.PartnerID = nil
		p.PartnerCode = ""

		_, err := Submit(p)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidation, de.Code)
		assert.Equal(t, "Referral code is required because the user has none.", de.Message)
	})

	t.Run("missing client fields are all reported", func(t *testing.T) {
		p := validParams()
		p.ClientName = ""
		p.ClientPhone = ""

		_, err := Submit(p)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		require.Len(t, de.Details, 2)
		assert.Equal(t, "client_name", de.Details[0].Field)
		assert.Equal(t, "client_phone", de.Details[1].Field)
	})

	t.Run("rejects unknown timeline", func(t *testing.T) {
		p := validParams()
		p.Timeline = "someday"

		_, err := Submit(p)
		assert.Error(t, err)
	})
}

func TestSubmit_ExpectedImplementationDate(t *testing.T) {
	submitted := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		timeline Timeline
		want     time.Duration
	}{
		{TimelineImmediate, 0},
		{TimelineOneToThree, 4 * 7 * 24 * time.Hour},
		{TimelineThreeToSix, 12 * 7 * 24 * time.Hour},
		{TimelineMoreThanSix, 24 * 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.timeline), func(t *testing.T) {
			p := validParams()
			p.Timeline = tt.timeline
			p.SubmittedAt = submitted

			r, err := Submit(p)
			require.NoError(t, err)
			require.NotNil(t, r.ExpectedImplementationDate)
			assert.Equal(t, submitted.Add(tt.want), *r.ExpectedImplementationDate)
		})
	}

	t.Run("unset timeline leaves date nil", func(t *testing.T) {
		p := validParams()
		p.SubmittedAt = submitted

		r, err := Submit(p)
		require.NoError(t, err)
		assert.Nil(t, r.ExpectedImplementationDate)
	})
}

func newSubmitted(t *testing.T, potential string) *Referral {
	t.Helper()
	p := validParams()
	amount := decimal.RequireFromString(potential)
	p.PotentialCommission = &amount
	r, err := Submit(p)
	require.NoError(t, err)
	r.ID = 11
	return r
}

func TestReferral_ChangeStatus(t *testing.T) {
	t.Run("records previous status and timeline entry", func(t *testing.T) {
		r := newSubmitted(t, "100")

		changed, err := r.ChangeStatus(StatusContacted, "staff-1", time.Time{})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, StatusPending, r.PrevStatus)
		assert.Equal(t, StatusContacted, r.Status)
		assert.Equal(t, 2, r.Version)

		entries := r.PendingTimelineEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Status changed from pending to contacted", entries[0].Note)
		assert.Equal(t, "staff-1", entries[0].CreatedBy)
		assert.Equal(t, int64(11), entries[0].ReferralID)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		r := newSubmitted(t, "100")

		changed, err := r.ChangeStatus(StatusPending, "staff-1", time.Time{})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, r.PendingTimelineEntries())
		assert.Empty(t, r.GetDomainEvents())
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		r := newSubmitted(t, "100")

		_, err := r.ChangeStatus("won", "staff-1", time.Time{})
		require.Error(t, err)
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("conversion locks actual commission", func(t *testing.T) {
		r := newSubmitted(t, "100.00")

		_, err := r.ChangeStatus(StatusConverted, "staff-1", time.Time{})
		require.NoError(t, err)
		require.NotNil(t, r.ActualCommission)
		assert.Equal(t, "100.00", r.ActualCommission.StringFixed(2))

		events := r.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeReferralStatusChanged, events[0].EventType())
		assert.Equal(t, EventTypeReferralConverted, events[1].EventType())
	})

	t.Run("actual commission is not overwritten on reconversion", func(t *testing.T) {
		r := newSubmitted(t, "100")
		_, err := r.ChangeStatus(StatusConverted, "staff-1", time.Time{})
		require.NoError(t, err)

		r.PotentialCommission = decimal.NewFromInt(500)
		_, err = r.ChangeStatus(StatusQualified, "staff-1", time.Time{})
		require.NoError(t, err)
		_, err = r.ChangeStatus(StatusConverted, "staff-1", time.Time{})
		require.NoError(t, err)

		assert.Equal(t, "100.00", r.ActualCommission.StringFixed(2))
		assert.Len(t, r.PendingTimelineEntries(), 3)
	})
}

func TestReferral_AddNote(t *testing.T) {
	r := newSubmitted(t, "0")

	entry, err := r.AddNote("  called the client ", "staff-1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "called the client", entry.Note)
	assert.Equal(t, StatusPending, entry.Status)

	_, err = r.AddNote("   ", "staff-1", time.Time{})
	assert.Error(t, err)
	assert.Len(t, r.PendingTimelineEntries(), 1)
}

func TestReferral_AttachPartner(t *testing.T) {
	params := validParams()
	params.PartnerID = nil
	r, err := Submit(params)
	require.NoError(t, err)
	version := r.Version

	assert.False(t, r.AttachPartner(0))
	assert.True(t, r.AttachPartner(9))
	require.NotNil(t, r.PartnerID)
	assert.Equal(t, int64(9), *r.PartnerID)
	assert.Equal(t, version, r.Version)

	assert.False(t, r.AttachPartner(11), "an existing partner is kept")
	assert.Equal(t, int64(9), *r.PartnerID)
}

func TestComputePotentialCommission(t *testing.T) {
	tests := []struct {
		name       string
		commission string
		price      string
		want       string
		wantErr    bool
	}{
		{"percent suffix", "10%", "1000", "100.00", false},
		{"no suffix", "12.5", "80", "10.00", false},
		{"whitespace", " 5% ", " 199.99 ", "10.00", false},
		{"bad commission", "abc", "100", "", true},
		{"empty price", "10%", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePotentialCommission(tt.commission, tt.price)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparsableCommission)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestDateWindow_Since(t *testing.T) {
	// Thursday
	now := time.Date(2025, 3, 13, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), *DateWindowToday.Since(now))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *DateWindowThisWeek.Since(now))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *DateWindowThisMonth.Since(now))
	assert.Equal(t, time.Date(2024, 12, 13, 15, 0, 0, 0, time.UTC), *DateWindowLast3Months.Since(now))
	assert.Nil(t, DateWindow("lastYear").Since(now))
}

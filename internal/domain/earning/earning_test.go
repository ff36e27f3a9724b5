package earning

import (
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEarningWithStatus(status Status) *Earning {
	return &Earning{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                1,
		PartnerID:         9,
		Amount:            decimal.NewFromInt(50),
		Source:            SourceBonus,
		Status:            status,
	}
}

func TestNewReferralEarning(t *testing.T) {
	t.Run("positive amount is available", func(t *testing.T) {
		e, err := NewReferralEarning(9, 4, decimal.RequireFromString("100.00"))
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, e.Status)
		assert.Equal(t, SourceReferral, e.Source)
		assert.Equal(t, "100.00", e.Amount.StringFixed(2))
		require.NotNil(t, e.ReferralID)
		assert.Equal(t, int64(4), *e.ReferralID)
	})

	t.Run("zero amount is pending", func(t *testing.T) {
		e, err := NewReferralEarning(9, 4, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, e.Status)
	})

	t.Run("requires partner", func(t *testing.T) {
		_, err := NewReferralEarning(0, 4, decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewReferralEarning(9, 4, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestNewManualEarning(t *testing.T) {
	t.Run("starts pending approval", func(t *testing.T) {
		e, err := NewManualEarning(9, decimal.NewFromInt(25), SourceBonus, "Q3 bonus", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, StatusPendingApproval, e.Status)
		assert.Nil(t, e.ReferralID)
		assert.False(t, e.Date.IsZero())
	})

	tests := []struct {
		name   string
		amount decimal.Decimal
		source Source
	}{
		{"zero amount", decimal.Zero, SourceBonus},
		{"unknown source", decimal.NewFromInt(5), Source("gift")},
		{"referral source", decimal.NewFromInt(5), SourceReferral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManualEarning(9, tt.amount, tt.source, "", time.Time{})
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeValidation, de.Code)
		})
	}
}

func TestEarning_BooleanTransitions(t *testing.T) {
	all := []Status{
		StatusPending, StatusPendingApproval, StatusAvailable, StatusProcessing,
		StatusPaid, StatusCancelled, StatusRejected,
	}

	tests := []struct {
		name    string
		allowed map[Status]Status
		apply   func(e *Earning) bool
	}{
		{
			name:    "mark as available",
			allowed: map[Status]Status{StatusPending: StatusAvailable},
			apply:   func(e *Earning) bool { return e.MarkAsAvailable() },
		},
		{
			name:    "mark as processing",
			allowed: map[Status]Status{StatusAvailable: StatusProcessing},
			apply:   func(e *Earning) bool { return e.MarkAsProcessing("PY-0000ABCD") },
		},
		{
			name:    "mark as paid",
			allowed: map[Status]Status{StatusProcessing: StatusPaid},
			apply:   func(e *Earning) bool { return e.MarkAsPaid() },
		},
		{
			name:    "release from payout",
			allowed: map[Status]Status{StatusProcessing: StatusAvailable},
			apply:   func(e *Earning) bool { return e.ReleaseFromPayout() },
		},
		{
			name: "cancel",
			allowed: map[Status]Status{
				StatusPending:         StatusCancelled,
				StatusPendingApproval: StatusCancelled,
				StatusAvailable:       StatusCancelled,
				StatusProcessing:      StatusCancelled,
			},
			apply: func(e *Earning) bool { return e.Cancel("") },
		},
	}

	for _, tt := range tests {
		for _, from := range all {
			t.Run(tt.name+" from "+string(from), func(t *testing.T) {
				e := newEarningWithStatus(from)
				ok := tt.apply(e)

				to, allowed := tt.allowed[from]
				assert.Equal(t, allowed, ok)
				if allowed {
					assert.Equal(t, to, e.Status)
					assert.Equal(t, 2, e.Version)
					require.Len(t, e.GetDomainEvents(), 1)
					assert.Equal(t, EventTypeEarningStatusChanged, e.GetDomainEvents()[0].EventType())
				} else {
					assert.Equal(t, from, e.Status)
					assert.Equal(t, 1, e.Version)
					assert.Empty(t, e.GetDomainEvents())
				}
			})
		}
	}
}

func TestEarning_MarkAsProcessingLinksPayout(t *testing.T) {
	e := newEarningWithStatus(StatusAvailable)
	require.True(t, e.MarkAsProcessing("PY-1A2B3C4D"))
	require.NotNil(t, e.PayoutID)
	assert.Equal(t, "PY-1A2B3C4D", *e.PayoutID)

	require.True(t, e.ReleaseFromPayout())
	assert.Nil(t, e.PayoutID)
	assert.Equal(t, StatusAvailable, e.Status)
}

func TestEarning_CancelRefusedWhileClaimed(t *testing.T) {
	e := newEarningWithStatus(StatusAvailable)
	require.True(t, e.MarkAsProcessing("PY-1A2B3C4D"))
	assert.True(t, e.IsClaimed())

	assert.False(t, e.Cancel("duplicate"))
	assert.Equal(t, StatusProcessing, e.Status)

	require.True(t, e.ReleaseFromPayout())
	assert.False(t, e.IsClaimed())
	assert.True(t, e.Cancel("duplicate"))
	assert.Equal(t, StatusCancelled, e.Status)
}

func TestEarning_CancelAppendsReason(t *testing.T) {
	e := newEarningWithStatus(StatusAvailable)
	e.Notes = "original"
	require.True(t, e.Cancel(" fraud "))
	assert.Equal(t, "original\nCancellation reason: fraud", e.Notes)

	assert.False(t, e.Cancel("again"))
	assert.Equal(t, "original\nCancellation reason: fraud", e.Notes)
}

func TestEarning_ApproveReject(t *testing.T) {
	t.Run("approve records approver", func(t *testing.T) {
		e := newEarningWithStatus(StatusPendingApproval)
		require.NoError(t, e.Approve("staff-1"))
		assert.Equal(t, StatusAvailable, e.Status)
		require.NotNil(t, e.ApprovedBy)
		assert.Equal(t, "staff-1", *e.ApprovedBy)
		assert.NotNil(t, e.ApprovedAt)
	})

	t.Run("reject records reason", func(t *testing.T) {
		e := newEarningWithStatus(StatusPendingApproval)
		require.NoError(t, e.Reject("staff-1", "duplicate"))
		assert.Equal(t, StatusRejected, e.Status)
		assert.Equal(t, "\nRejection reason: duplicate", e.Notes)
		require.NotNil(t, e.RejectedBy)
	})

	for _, from := range []Status{StatusPending, StatusAvailable, StatusProcessing, StatusPaid, StatusRejected} {
		t.Run("approve fails from "+string(from), func(t *testing.T) {
			e := newEarningWithStatus(from)
			err := e.Approve("staff-1")
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeInvalidState, de.Code)
			assert.Equal(t, from, e.Status)
		})
		t.Run("reject fails from "+string(from), func(t *testing.T) {
			e := newEarningWithStatus(from)
			assert.Error(t, e.Reject("staff-1", ""))
			assert.Equal(t, from, e.Status)
			assert.Nil(t, e.RejectedBy)
		})
	}
}

func TestGroupByPeriod(t *testing.T) {
	mk := func(day int, amount int64) *Earning {
		return &Earning{Date: time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(amount)}
	}
	// 2025-03-03 and 2025-03-10 are Mondays
	earnings := []*Earning{mk(12, 10), mk(4, 5), mk(3, 20), mk(13, 1)}

	t.Run("week", func(t *testing.T) {
		points := GroupByPeriod(earnings, PeriodWeek)
		require.Len(t, points, 2)
		assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), points[0].PeriodStart)
		assert.Equal(t, int64(2), points[0].Count)
		assert.Equal(t, "25", points[0].Amount.String())
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), points[1].PeriodStart)
		assert.Equal(t, "11", points[1].Amount.String())
	})

	t.Run("month", func(t *testing.T) {
		points := GroupByPeriod(earnings, PeriodMonth)
		require.Len(t, points, 1)
		assert.Equal(t, int64(4), points[0].Count)
		assert.Equal(t, "36", points[0].Amount.String())
	})

	t.Run("day", func(t *testing.T) {
		points := GroupByPeriod(earnings, PeriodDay)
		require.Len(t, points, 4)
		assert.Equal(t, 3, points[0].PeriodStart.Day())
		assert.Equal(t, 13, points[3].PeriodStart.Day())
	})
}

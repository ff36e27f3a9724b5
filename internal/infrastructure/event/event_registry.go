package event

import (
	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/referral"
)

// LifecycleEventTypes lists every event the referral-to-payout lifecycle emits
var LifecycleEventTypes = []string{
	referral.EventTypeReferralSubmitted,
	referral.EventTypeReferralStatusChanged,
	referral.EventTypeReferralConverted,
	earning.EventTypeEarningCreated,
	earning.EventTypeEarningStatusChanged,
	payout.EventTypePayoutCreated,
	payout.EventTypePayoutStatusChanged,
}

// RegisterLifecycleEvents registers the concrete lifecycle event types with the serializer
func RegisterLifecycleEvents(serializer *EventSerializer) {
	serializer.Register(referral.EventTypeReferralSubmitted, &referral.ReferralSubmittedEvent{})
	serializer.Register(referral.EventTypeReferralStatusChanged, &referral.ReferralStatusChangedEvent{})
	serializer.Register(referral.EventTypeReferralConverted, &referral.ReferralConvertedEvent{})

	serializer.Register(earning.EventTypeEarningCreated, &earning.EarningCreatedEvent{})
	serializer.Register(earning.EventTypeEarningStatusChanged, &earning.EarningStatusChangedEvent{})

	serializer.Register(payout.EventTypePayoutCreated, &payout.PayoutCreatedEvent{})
	serializer.Register(payout.EventTypePayoutStatusChanged, &payout.PayoutStatusChangedEvent{})
}

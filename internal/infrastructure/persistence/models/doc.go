// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free from ORM
// concerns; repositories convert with ToDomain and the XxxModelFromDomain constructors.
//
// Structure:
// - base.go: shared aggregate columns and jsonb helpers
// - partner.go: partner profiles
// - catalog.go: products
// - referral.go: referrals and the referral timeline
// - earning.go: earnings
// - payout.go: payouts, payout referrals, payout timeline, payout settings
package models

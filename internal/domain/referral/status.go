package referral

import (
	"time"
)

// Status represents the status of a referral
type Status string

const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
)

// AllStatuses returns every referral status in pipeline order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusContacted, StatusQualified, StatusConverted, StatusRejected}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusContacted, StatusQualified, StatusConverted, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that end the sales pipeline in practice.
// Transitions out of them are still permitted.
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusRejected
}

// Timeline is the categorical implementation ETA chosen at submission
type Timeline string

const (
	TimelineImmediate   Timeline = "Immediate"
	TimelineOneToThree  Timeline = "1-3 months"
	TimelineThreeToSix  Timeline = "3-6 months"
	TimelineMoreThanSix Timeline = "6+ months"
)

const week = 7 * 24 * time.Hour

var timelineOffsets = map[Timeline]time.Duration{
	TimelineImmediate:   0,
	TimelineOneToThree:  4 * week,
	TimelineThreeToSix:  12 * week,
	TimelineMoreThanSix: 24 * week,
}

// IsValid checks if the timeline is one of the known categories
func (t Timeline) IsValid() bool {
	_, ok := timelineOffsets[t]
	return ok
}

// String returns the string representation
func (t Timeline) String() string {
	return string(t)
}

// ExpectedDate returns from plus the category offset.
// Unknown or empty timelines yield nil.
func (t Timeline) ExpectedDate(from time.Time) *time.Time {
	offset, ok := timelineOffsets[t]
	if !ok {
		return nil
	}
	d := from.Add(offset)
	return &d
}

// DateWindow is a named submission-date filter used by referral listings
type DateWindow string

const (
	DateWindowToday       DateWindow = "today"
	DateWindowThisWeek    DateWindow = "thisWeek"
	DateWindowThisMonth   DateWindow = "thisMonth"
	DateWindowLast3Months DateWindow = "last3Months"
)

// Since returns the lower bound of the window relative to now, or nil for unknown windows
func (w DateWindow) Since(now time.Time) *time.Time {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var since time.Time
	switch w {
	case DateWindowToday:
		since = startOfDay
	case DateWindowThisWeek:
		// weeks start on Monday
		offset := (int(now.Weekday()) + 6) % 7
		since = startOfDay.AddDate(0, 0, -offset)
	case DateWindowThisMonth:
		since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case DateWindowLast3Months:
		since = now.AddDate(0, -3, 0)
	default:
		return nil
	}
	return &since
}

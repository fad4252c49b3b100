package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolParameters holds the monetary inputs for a session's payout run.
// ParticipationMultiplier must stay within [0,1]; TotalPool must not be
// negative. AverageWeeklyRevenue is informational and optional.
type PoolParameters struct {
	TotalPool               decimal.Decimal
	ParticipationMultiplier decimal.Decimal
	AverageWeeklyRevenue    *decimal.Decimal
}

// EffectiveMultiplier defaults an unset multiplier to 1.0.
func (p PoolParameters) EffectiveMultiplier() decimal.Decimal {
	if p.ParticipationMultiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.ParticipationMultiplier
}

// Session is a fixed-duration voting window with its own pool and
// participant set. Dates are calendar days; times of day are ignored.
type Session struct {
	SessionID  string
	StartDate  time.Time
	EndDate    time.Time
	Open       bool
	AutoEnroll bool
	Pool       PoolParameters
	CreatedAt  time.Time
	ClosedAt   *time.Time
}

// AcceptsVotesOn reports whether the session takes votes on the given day:
// it must still be open and the day must fall inside [StartDate, EndDate].
func (s Session) AcceptsVotesOn(today time.Time) bool {
	if !s.Open || s.ClosedAt != nil {
		return false
	}
	day := dateOnly(today)
	return !day.Before(dateOnly(s.StartDate)) && !day.After(dateOnly(s.EndDate))
}

// Expired reports whether the session's voting window ended before today.
func (s Session) Expired(today time.Time) bool {
	return dateOnly(today).After(dateOnly(s.EndDate))
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

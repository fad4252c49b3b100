package entities

import "github.com/shopspring/decimal"

// SessionResult is one recipient's row of a session's payout snapshot. The
// full set is derived from the ledger and replaced wholesale on every
// recalculation; rows carry no run timestamp so reruns over an unchanged
// ledger produce identical rows.
type SessionResult struct {
	SessionID       string
	UserID          string
	RawTotal        int64
	VotesReceived   int
	AverageScore    decimal.Decimal
	NormalizedScore decimal.Decimal
	FinalScore      decimal.Decimal
	Rank            int
	BonusAmount     decimal.Decimal
	BonusPercentage decimal.Decimal
}

package httptransport

import "github.com/shopspring/decimal"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionResultResponse is one ranked row of a session snapshot.
type SessionResultResponse struct {
	SessionID       string          `json:"session_id"`
	UserID          string          `json:"user_id"`
	RawTotal        int64           `json:"raw_total"`
	VotesReceived   int             `json:"votes_received"`
	AverageScore    decimal.Decimal `json:"average_score"`
	NormalizedScore decimal.Decimal `json:"normalized_score"`
	FinalScore      decimal.Decimal `json:"final_score"`
	Rank            int             `json:"rank"`
	BonusAmount     decimal.Decimal `json:"bonus_amount"`
	BonusPercentage decimal.Decimal `json:"bonus_percentage"`
}

// RecalculateResponse returns the freshly computed ranking.
type RecalculateResponse struct {
	SessionID string                  `json:"session_id"`
	Results   []SessionResultResponse `json:"results"`
}

// ResultsResponse is the stored snapshot, ordered by rank.
type ResultsResponse struct {
	SessionID string                  `json:"session_id"`
	Results   []SessionResultResponse `json:"results"`
}

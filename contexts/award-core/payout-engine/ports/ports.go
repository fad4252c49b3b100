package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"peerbonus/contexts/award-core/payout-engine/domain/entities"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
)

// SessionPool is the slice of a voting session the payout engine needs:
// the money to distribute and the participation multiplier.
type SessionPool struct {
	SessionID               string
	TotalPool               decimal.Decimal
	ParticipationMultiplier decimal.Decimal
	Open                    bool
}

// LedgerReader exposes the vote ledger to the payout engine.
type LedgerReader interface {
	GetSessionPool(ctx context.Context, sessionID string) (SessionPool, error)
	ListSessionVotes(ctx context.Context, sessionID string) ([]scoring.RatedVote, error)
	ListEligibleRecipients(ctx context.Context, sessionID string) ([]string, error)
}

// ResultRepository stores the latest computed snapshot per session.
type ResultRepository interface {
	ReplaceResults(ctx context.Context, sessionID string, results []entities.SessionResult) error
	ListResultsByRank(ctx context.Context, sessionID string) ([]entities.SessionResult, error)
	HasResults(ctx context.Context, sessionID string) (bool, error)
}

// RecalcGuard enforces at most one running recalculation per session.
type RecalcGuard interface {
	TryAcquire(sessionID string) bool
	Release(sessionID string)
}

package commands

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	application "peerbonus/contexts/award-core/payout-engine/application"
	"peerbonus/contexts/award-core/payout-engine/domain/entities"
	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
	"peerbonus/contexts/award-core/payout-engine/ports"
)

// RecalculateUseCase runs the scoring pipeline for a session and atomically
// replaces its result snapshot. A failed run leaves the previous snapshot
// untouched. At most one recalculation per session runs at a time; a second
// request is rejected with ErrRecalculationInProgress so the caller can
// retry after the running one finishes.
type RecalculateUseCase struct {
	Ledger  ports.LedgerReader
	Results ports.ResultRepository
	Guard   ports.RecalcGuard
	Policy  scoring.Policy
	Logger  *slog.Logger
}

func (uc RecalculateUseCase) Recalculate(ctx context.Context, sessionID string) ([]entities.SessionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !uc.Guard.TryAcquire(sessionID) {
		logger.Warn("recalculation already running",
			"event", "payout_recalculation_rejected",
			"module", "award-core/payout-engine",
			"layer", "application",
			"session_id", sessionID,
		)
		return nil, domainerrors.ErrRecalculationInProgress
	}
	defer uc.Guard.Release(sessionID)

	pool, err := uc.Ledger.GetSessionPool(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	votes, err := uc.Ledger.ListSessionVotes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	recipients, err := uc.Ledger.ListEligibleRecipients(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	multiplier := pool.ParticipationMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	aggregates, err := scoring.Compute(votes, recipients, uc.Policy, multiplier)
	if err != nil {
		logger.Warn("recalculation aborted",
			"event", "payout_recalculation_aborted",
			"module", "award-core/payout-engine",
			"layer", "application",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return nil, err
	}
	allocations := scoring.Allocate(aggregates, pool.TotalPool)

	results := make([]entities.SessionResult, len(allocations))
	for i, alloc := range allocations {
		results[i] = entities.SessionResult{
			SessionID:       sessionID,
			UserID:          alloc.UserID,
			RawTotal:        alloc.RawTotal,
			VotesReceived:   alloc.VotesReceived,
			AverageScore:    alloc.AverageScore,
			NormalizedScore: alloc.NormalizedScore,
			FinalScore:      alloc.FinalScore,
			Rank:            alloc.Rank,
			BonusAmount:     alloc.BonusAmount,
			BonusPercentage: alloc.BonusPercentage,
		}
	}

	if err := uc.Results.ReplaceResults(ctx, sessionID, results); err != nil {
		logger.Error("result snapshot replacement failed",
			"event", "payout_snapshot_replace_failed",
			"module", "award-core/payout-engine",
			"layer", "application",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return nil, err
	}

	logger.Info("session recalculated",
		"event", "payout_recalculated",
		"module", "award-core/payout-engine",
		"layer", "application",
		"session_id", sessionID,
		"recipients", len(results),
	)
	return results, nil
}

package queries

import (
	"context"

	"peerbonus/contexts/award-core/payout-engine/domain/entities"
	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	"peerbonus/contexts/award-core/payout-engine/ports"
)

// ResultsUseCase serves read access to the latest computed snapshot.
type ResultsUseCase struct {
	Results ports.ResultRepository
}

// ResultsForSession returns the ranked snapshot for the session, ordered by
// rank ascending. A session that was never recalculated yields
// ErrResultsNotFound; the pipeline never persists an empty ranking.
func (uc ResultsUseCase) ResultsForSession(ctx context.Context, sessionID string) ([]entities.SessionResult, error) {
	results, err := uc.Results.ListResultsByRank(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domainerrors.ErrResultsNotFound
	}
	return results, nil
}

// HasResults reports whether a snapshot exists for the session.
func (uc ResultsUseCase) HasResults(ctx context.Context, sessionID string) (bool, error) {
	return uc.Results.HasResults(ctx, sessionID)
}

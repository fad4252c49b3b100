// Package ledgeradapter bridges the payout engine to the vote ledger. It is
// the only place where the two contexts touch; the engine itself depends on
// its own ports, never on ledger types.
package ledgeradapter

import (
	"context"
	"errors"
	"sort"

	payouterrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
	payoutports "peerbonus/contexts/award-core/payout-engine/ports"
	ledgererrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	ledgerports "peerbonus/contexts/award-core/vote-ledger/ports"
)

// Source reads sessions, votes and recipients straight from the ledger
// repositories.
type Source struct {
	Sessions     ledgerports.SessionRepository
	Participants ledgerports.ParticipantRepository
	Votes        ledgerports.VoteRepository
}

func (s Source) GetSessionPool(ctx context.Context, sessionID string) (payoutports.SessionPool, error) {
	session, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ledgererrors.ErrSessionNotFound) {
			return payoutports.SessionPool{}, payouterrors.ErrSessionNotFound
		}
		return payoutports.SessionPool{}, err
	}
	return payoutports.SessionPool{
		SessionID:               session.SessionID,
		TotalPool:               session.Pool.TotalPool,
		ParticipationMultiplier: session.Pool.EffectiveMultiplier(),
		Open:                    session.Open,
	}, nil
}

func (s Source) ListSessionVotes(ctx context.Context, sessionID string) ([]scoring.RatedVote, error) {
	votes, err := s.Votes.ListVotesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rated := make([]scoring.RatedVote, len(votes))
	for i, vote := range votes {
		rated[i] = scoring.RatedVote{
			VoterID:  vote.VoterID,
			TargetID: vote.TargetID,
			Score:    vote.Score,
		}
	}
	return rated, nil
}

// ListEligibleRecipients returns the ids of participants allowed to receive
// votes, sorted so recalculation input order is deterministic.
func (s Source) ListEligibleRecipients(ctx context.Context, sessionID string) ([]string, error) {
	participants, err := s.Participants.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(participants))
	for _, participant := range participants {
		if participant.MayReceiveVotes() {
			ids = append(ids, participant.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

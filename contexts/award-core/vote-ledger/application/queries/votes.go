package queries

import (
	"context"
	"strings"

	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	"peerbonus/contexts/award-core/vote-ledger/ports"
)

// SessionStats is the participation summary restored for reporting callers.
type SessionStats struct {
	SessionID          string
	Participants       int
	EligibleVoters     int
	EligibleRecipients int
	VotesTotal         int
	VotersDistinct     int
	ParticipationRate  float64
}

type VotesUseCase struct {
	Sessions     ports.SessionRepository
	Participants ports.ParticipantRepository
	Votes        ports.VoteRepository
}

// VotesForSession returns every current ledger row for the session, in no
// particular order. The scoring pipeline is its only intended caller.
func (uc VotesUseCase) VotesForSession(ctx context.Context, sessionID string) ([]entities.Vote, error) {
	if _, err := uc.Sessions.GetSession(ctx, strings.TrimSpace(sessionID)); err != nil {
		return nil, err
	}
	return uc.Votes.ListVotesBySession(ctx, strings.TrimSpace(sessionID))
}

func (uc VotesUseCase) Session(ctx context.Context, sessionID string) (entities.Session, error) {
	return uc.Sessions.GetSession(ctx, strings.TrimSpace(sessionID))
}

func (uc VotesUseCase) ListParticipants(ctx context.Context, sessionID string) ([]entities.Participant, error) {
	return uc.Participants.ListParticipants(ctx, strings.TrimSpace(sessionID))
}

// SessionStats aggregates participation counters for a session.
func (uc VotesUseCase) SessionStats(ctx context.Context, sessionID string) (SessionStats, error) {
	sessionID = strings.TrimSpace(sessionID)
	if _, err := uc.Sessions.GetSession(ctx, sessionID); err != nil {
		return SessionStats{}, err
	}

	participants, err := uc.Participants.ListParticipants(ctx, sessionID)
	if err != nil {
		return SessionStats{}, err
	}
	votes, err := uc.Votes.ListVotesBySession(ctx, sessionID)
	if err != nil {
		return SessionStats{}, err
	}
	voters, err := uc.Votes.CountDistinctVoters(ctx, sessionID)
	if err != nil {
		return SessionStats{}, err
	}

	stats := SessionStats{
		SessionID:      sessionID,
		Participants:   len(participants),
		VotesTotal:     len(votes),
		VotersDistinct: voters,
	}
	for _, p := range participants {
		if p.MayVote() {
			stats.EligibleVoters++
		}
		if p.MayReceiveVotes() {
			stats.EligibleRecipients++
		}
	}
	if stats.EligibleVoters > 0 {
		stats.ParticipationRate = float64(voters) / float64(stats.EligibleVoters) * 100
	}
	return stats, nil
}

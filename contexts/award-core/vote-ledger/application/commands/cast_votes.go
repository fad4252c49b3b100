package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "peerbonus/contexts/award-core/vote-ledger/application"
	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	domainerrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	"peerbonus/contexts/award-core/vote-ledger/ports"
)

// CastVoteCommand is the write-model input for a single rating.
type CastVoteCommand struct {
	SessionID string
	VoterID   string
	TargetID  string
	Score     int
}

// CastVoteResult returns the stored vote and whether a new ledger row was
// created (false means an existing score was overwritten).
type CastVoteResult struct {
	Vote    entities.Vote
	Created bool
}

// BatchItem is one (target, score) pair of a submission.
type BatchItem struct {
	TargetID string
	Score    int
}

// CastVotesCommand processes a voter's full submission in one call.
type CastVotesCommand struct {
	SessionID string
	VoterID   string
	Votes     []BatchItem
}

// CastVotesResult reports per-batch counts. Skipped covers self-votes and
// targets lacking receive eligibility, which are filtered rather than failed.
type CastVotesResult struct {
	Created int
	Updated int
	Skipped int
}

// VoteUseCase ingests ratings under the ledger's consistency rules: bounded
// scores, no self-rating, open-window checks, capability/status eligibility,
// and at most one current row per (session, voter, target).
type VoteUseCase struct {
	Sessions     ports.SessionRepository
	Participants ports.ParticipantRepository
	Votes        ports.VoteRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	ScoreMin     int
	ScoreMax     int
	Logger       *slog.Logger
}

// CastVote validates and upserts a single rating. Checks run in a fixed
// order: score range, self-vote, session window, voter eligibility, target
// eligibility.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)
	voterID := strings.TrimSpace(cmd.VoterID)
	targetID := strings.TrimSpace(cmd.TargetID)

	if !uc.scoreInRange(cmd.Score) {
		return CastVoteResult{}, domainerrors.ErrInvalidScore
	}
	if voterID == targetID {
		return CastVoteResult{}, domainerrors.ErrSelfVoteNotAllowed
	}

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	if !session.AcceptsVotesOn(now) {
		return CastVoteResult{}, domainerrors.ErrSessionNotOpen
	}

	if err := uc.checkVoter(ctx, sessionID, voterID); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.checkTarget(ctx, sessionID, targetID); err != nil {
		return CastVoteResult{}, err
	}

	result, err := uc.upsert(ctx, sessionID, voterID, targetID, cmd.Score, now)
	if err != nil {
		return CastVoteResult{}, err
	}

	// Participation reporting reads this timestamp; it is not part of the
	// scoring pipeline.
	if err := uc.Participants.TouchLastVoted(ctx, sessionID, voterID, now); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "ledger_vote_cast",
		"module", "award-core/vote-ledger",
		"layer", "application",
		"session_id", sessionID,
		"voter_id", voterID,
		"target_id", targetID,
		"score", cmd.Score,
		"created", result.Created,
	)
	return result, nil
}

// CastVotes processes a submission batch. Score-range violations reject the
// whole batch before any write so a validation failure is never partially
// applied. Self-votes and receive-ineligible targets are skipped silently,
// consistent with upstream filtering.
func (uc VoteUseCase) CastVotes(ctx context.Context, cmd CastVotesCommand) (CastVotesResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)
	voterID := strings.TrimSpace(cmd.VoterID)

	for _, item := range cmd.Votes {
		if !uc.scoreInRange(item.Score) {
			logger.Warn("vote batch rejected on score range",
				"event", "ledger_vote_batch_invalid_score",
				"module", "award-core/vote-ledger",
				"layer", "application",
				"session_id", sessionID,
				"voter_id", voterID,
				"score", item.Score,
			)
			return CastVotesResult{}, domainerrors.ErrInvalidScore
		}
	}

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return CastVotesResult{}, err
	}
	now := uc.now()
	if !session.AcceptsVotesOn(now) {
		return CastVotesResult{}, domainerrors.ErrSessionNotOpen
	}
	if err := uc.checkVoter(ctx, sessionID, voterID); err != nil {
		return CastVotesResult{}, err
	}

	var out CastVotesResult
	for _, item := range cmd.Votes {
		targetID := strings.TrimSpace(item.TargetID)
		if targetID == "" || targetID == voterID {
			out.Skipped++
			continue
		}
		if err := uc.checkTarget(ctx, sessionID, targetID); err != nil {
			if err == domainerrors.ErrTargetNotEligible {
				out.Skipped++
				continue
			}
			return CastVotesResult{}, err
		}
		result, err := uc.upsert(ctx, sessionID, voterID, targetID, item.Score, now)
		if err != nil {
			return CastVotesResult{}, err
		}
		if result.Created {
			out.Created++
		} else {
			out.Updated++
		}
	}

	if out.Created+out.Updated > 0 {
		if err := uc.Participants.TouchLastVoted(ctx, sessionID, voterID, now); err != nil {
			return CastVotesResult{}, err
		}
	}

	logger.Info("vote batch processed",
		"event", "ledger_vote_batch_processed",
		"module", "award-core/vote-ledger",
		"layer", "application",
		"session_id", sessionID,
		"voter_id", voterID,
		"created", out.Created,
		"updated", out.Updated,
		"skipped", out.Skipped,
	)
	return out, nil
}

func (uc VoteUseCase) upsert(
	ctx context.Context,
	sessionID string,
	voterID string,
	targetID string,
	score int,
	now time.Time,
) (CastVoteResult, error) {
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	vote := entities.Vote{
		VoteID:    voteID,
		SessionID: sessionID,
		VoterID:   voterID,
		TargetID:  targetID,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, created, err := uc.Votes.UpsertVote(ctx, vote)
	if err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.appendVoteCast(ctx, stored, created, now); err != nil {
		return CastVoteResult{}, err
	}
	return CastVoteResult{Vote: stored, Created: created}, nil
}

func (uc VoteUseCase) checkVoter(ctx context.Context, sessionID string, voterID string) error {
	if voterID == "" {
		return domainerrors.ErrVoterNotEligible
	}
	voter, found, err := uc.Participants.GetParticipant(ctx, sessionID, voterID)
	if err != nil {
		return err
	}
	if !found || !voter.MayVote() {
		return domainerrors.ErrVoterNotEligible
	}
	return nil
}

func (uc VoteUseCase) checkTarget(ctx context.Context, sessionID string, targetID string) error {
	target, found, err := uc.Participants.GetParticipant(ctx, sessionID, targetID)
	if err != nil {
		return err
	}
	if !found || !target.MayReceiveVotes() {
		return domainerrors.ErrTargetNotEligible
	}
	return nil
}

func (uc VoteUseCase) appendVoteCast(ctx context.Context, vote entities.Vote, created bool, now time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, "vote.cast", vote.SessionID, now, map[string]any{
		"vote_id":    vote.VoteID,
		"session_id": vote.SessionID,
		"voter_id":   vote.VoterID,
		"target_id":  vote.TargetID,
		"score":      vote.Score,
		"created":    created,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc VoteUseCase) scoreInRange(score int) bool {
	min, max := uc.ScoreMin, uc.ScoreMax
	if max <= min {
		min, max = 0, 10
	}
	return score >= min && score <= max
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

package voteledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"peerbonus/contexts/award-core/vote-ledger/application/commands"
	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	domainerrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	httptransport "peerbonus/contexts/award-core/vote-ledger/transport/http"
)

func newTestModule(t *testing.T) (Module, string) {
	t.Helper()
	module := NewInMemoryModule(nil)
	module.Store.SetNow(time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC))

	session, err := module.Sessions.CreateSession(context.Background(), commands.CreateSessionCommand{
		StartDate:     time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		AutoEnroll:    true,
		EnrollUserIDs: []string{"user-a", "user-b", "user-c"},
		Pool: entities.PoolParameters{
			TotalPool:               decimal.RequireFromString("100.00"),
			ParticipationMultiplier: decimal.NewFromInt(1),
		},
	})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	return module, session.SessionID
}

func TestCreateSessionAutoEnrolls(t *testing.T) {
	module, sessionID := newTestModule(t)

	participants, err := module.Queries.ListParticipants(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("list participants failed: %v", err)
	}
	if len(participants) != 3 {
		t.Fatalf("expected 3 enrolled participants, got %d", len(participants))
	}
	for _, p := range participants {
		if p.Status != entities.ParticipantStatusActive || !p.CanVote || !p.CanReceiveVotes {
			t.Fatalf("expected active voting participant, got %+v", p)
		}
	}
}

func TestCreateSessionRejectsInvertedDates(t *testing.T) {
	module := NewInMemoryModule(nil)
	_, err := module.Sessions.CreateSession(context.Background(), commands.CreateSessionCommand{
		StartDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domainerrors.ErrInvalidSessionDates) {
		t.Fatalf("expected ErrInvalidSessionDates, got %v", err)
	}
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	module, sessionID := newTestModule(t)

	first, err := module.Sessions.CloseSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !first.Transitioned || first.Session.Open {
		t.Fatalf("expected transition to closed, got %+v", first)
	}
	pendingAfterFirst := module.Store.PendingOutboxCount()

	second, err := module.Sessions.CloseSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("replayed close failed: %v", err)
	}
	if second.Transitioned {
		t.Fatalf("expected replay to be a no-op")
	}
	if module.Store.PendingOutboxCount() != pendingAfterFirst {
		t.Fatalf("expected no extra session.closed event on replay")
	}
}

func TestCastVoteUpsertsSingleRow(t *testing.T) {
	module, sessionID := newTestModule(t)

	first, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		TargetID:  "user-b",
		Score:     6,
	})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if !first.Created {
		t.Fatalf("expected first cast to create a row")
	}

	second, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		TargetID:  "user-b",
		Score:     9,
	})
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if second.Created {
		t.Fatalf("expected resubmission to overwrite, not create")
	}

	votes, err := module.Queries.VotesForSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", len(votes))
	}
	if votes[0].Score != 9 {
		t.Fatalf("expected final score 9, got %d", votes[0].Score)
	}
}

func TestCastVoteRejectsSelfVote(t *testing.T) {
	module, sessionID := newTestModule(t)
	_, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		TargetID:  "user-a",
		Score:     10,
	})
	if !errors.Is(err, domainerrors.ErrSelfVoteNotAllowed) {
		t.Fatalf("expected ErrSelfVoteNotAllowed, got %v", err)
	}
}

func TestCastVoteRejectsOutOfRangeScore(t *testing.T) {
	module, sessionID := newTestModule(t)
	for _, score := range []int{-1, 11} {
		_, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
			SessionID: sessionID,
			VoterID:   "user-a",
			TargetID:  "user-b",
			Score:     score,
		})
		if !errors.Is(err, domainerrors.ErrInvalidScore) {
			t.Fatalf("expected ErrInvalidScore for %d, got %v", score, err)
		}
	}
}

func TestCastVoteRejectsClosedSession(t *testing.T) {
	module, sessionID := newTestModule(t)
	if _, err := module.Sessions.CloseSession(context.Background(), sessionID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		TargetID:  "user-b",
		Score:     5,
	})
	if !errors.Is(err, domainerrors.ErrSessionNotOpen) {
		t.Fatalf("expected ErrSessionNotOpen, got %v", err)
	}
}

func TestCastVoteRejectsOutsideWindow(t *testing.T) {
	module, sessionID := newTestModule(t)
	module.Store.SetNow(time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC))

	_, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		TargetID:  "user-b",
		Score:     5,
	})
	if !errors.Is(err, domainerrors.ErrSessionNotOpen) {
		t.Fatalf("expected ErrSessionNotOpen, got %v", err)
	}
}

func TestCastVoteRejectsIneligibleVoter(t *testing.T) {
	module, sessionID := newTestModule(t)
	module.Store.SetParticipant(entities.Participant{
		SessionID: sessionID,
		UserID:    "user-excluded",
		CanVote:   true,
		Status:    entities.ParticipantStatusExcluded,
	})
	_, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-excluded",
		TargetID:  "user-b",
		Score:     5,
	})
	if !errors.Is(err, domainerrors.ErrVoterNotEligible) {
		t.Fatalf("expected ErrVoterNotEligible, got %v", err)
	}
}

func TestOnLeaveParticipantReceivesButCannotVote(t *testing.T) {
	module, sessionID := newTestModule(t)
	module.Store.SetParticipant(entities.Participant{
		SessionID:       sessionID,
		UserID:          "user-leave",
		CanVote:         true,
		CanReceiveVotes: true,
		Status:          entities.ParticipantStatusOnLeave,
	})

	if _, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		TargetID:  "user-leave",
		Score:     7,
	}); err != nil {
		t.Fatalf("cast to on_leave target failed: %v", err)
	}

	_, err := module.Votes.CastVote(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		VoterID:   "user-leave",
		TargetID:  "user-a",
		Score:     7,
	})
	if !errors.Is(err, domainerrors.ErrVoterNotEligible) {
		t.Fatalf("expected ErrVoterNotEligible for on_leave voter, got %v", err)
	}
}

func TestCastVotesBatchCountsAndSkips(t *testing.T) {
	module, sessionID := newTestModule(t)
	module.Store.SetParticipant(entities.Participant{
		SessionID: sessionID,
		UserID:    "user-noreceive",
		CanVote:   true,
		Status:    entities.ParticipantStatusActive,
	})

	resp, err := module.Handler.CastVotesHandler(context.Background(), httptransport.CastVotesRequest{
		SessionID: sessionID,
		VoterID:   "user-a",
		Votes: []httptransport.VoteItem{
			{TargetID: "user-b", Score: 8},
			{TargetID: "user-c", Score: 6},
			{TargetID: "user-a", Score: 10},
			{TargetID: "user-noreceive", Score: 5},
		},
	})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if resp.Created != 2 || resp.Updated != 0 || resp.Skipped != 2 {
		t.Fatalf("expected 2 created, 0 updated, 2 skipped; got %+v", resp)
	}

	resubmit, err := module.Handler.CastVotesHandler(context.Background(), httptransport.CastVotesRequest{
		SessionID: sessionID,
		VoterID:   "user-a",
		Votes: []httptransport.VoteItem{
			{TargetID: "user-b", Score: 3},
		},
	})
	if err != nil {
		t.Fatalf("resubmission batch failed: %v", err)
	}
	if resubmit.Created != 0 || resubmit.Updated != 1 {
		t.Fatalf("expected pure update batch, got %+v", resubmit)
	}

	participants, err := module.Queries.ListParticipants(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("list participants failed: %v", err)
	}
	for _, p := range participants {
		if p.UserID == "user-a" && p.LastVotedAt == nil {
			t.Fatalf("expected lastVotedAt touch for voter")
		}
	}
}

func TestCastVotesBatchRejectsWholeBatchOnBadScore(t *testing.T) {
	module, sessionID := newTestModule(t)

	_, err := module.Votes.CastVotes(context.Background(), commands.CastVotesCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		Votes: []commands.BatchItem{
			{TargetID: "user-b", Score: 8},
			{TargetID: "user-c", Score: 12},
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}

	votes, err := module.Queries.VotesForSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("expected no partial writes, got %d rows", len(votes))
	}
}

type staticResultChecker struct{ has bool }

func (c staticResultChecker) HasResults(context.Context, string) (bool, error) {
	return c.has, nil
}

func TestPoolParametersLockedAfterResults(t *testing.T) {
	module, sessionID := newTestModule(t)
	locked := module.Sessions
	locked.Results = staticResultChecker{has: true}

	err := locked.SetPoolParameters(context.Background(), commands.SetPoolParametersCommand{
		SessionID: sessionID,
		Pool: entities.PoolParameters{
			TotalPool:               decimal.RequireFromString("500.00"),
			ParticipationMultiplier: decimal.NewFromInt(1),
		},
	})
	if !errors.Is(err, domainerrors.ErrResultsAlreadyComputed) {
		t.Fatalf("expected ErrResultsAlreadyComputed, got %v", err)
	}
}

func TestSetPoolParametersValidation(t *testing.T) {
	module, sessionID := newTestModule(t)

	err := module.Sessions.SetPoolParameters(context.Background(), commands.SetPoolParametersCommand{
		SessionID: sessionID,
		Pool: entities.PoolParameters{
			TotalPool:               decimal.RequireFromString("-1.00"),
			ParticipationMultiplier: decimal.NewFromInt(1),
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidPoolParameters) {
		t.Fatalf("expected ErrInvalidPoolParameters, got %v", err)
	}

	err = module.Sessions.SetPoolParameters(context.Background(), commands.SetPoolParametersCommand{
		SessionID: sessionID,
		Pool: entities.PoolParameters{
			TotalPool:               decimal.RequireFromString("100.00"),
			ParticipationMultiplier: decimal.RequireFromString("1.5"),
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidPoolParameters) {
		t.Fatalf("expected ErrInvalidPoolParameters for multiplier above 1, got %v", err)
	}
}

func TestSessionStats(t *testing.T) {
	module, sessionID := newTestModule(t)

	if _, err := module.Votes.CastVotes(context.Background(), commands.CastVotesCommand{
		SessionID: sessionID,
		VoterID:   "user-a",
		Votes: []commands.BatchItem{
			{TargetID: "user-b", Score: 8},
			{TargetID: "user-c", Score: 6},
		},
	}); err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	stats, err := module.Queries.SessionStats(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Participants != 3 || stats.EligibleVoters != 3 || stats.EligibleRecipients != 3 {
		t.Fatalf("unexpected participant counts: %+v", stats)
	}
	if stats.VotesTotal != 2 || stats.VotersDistinct != 1 {
		t.Fatalf("unexpected vote counts: %+v", stats)
	}
}

package payoutengine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"peerbonus/contexts/award-core/payout-engine/application/commands"
	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	"peerbonus/contexts/award-core/payout-engine/domain/scoring"
	"peerbonus/contexts/award-core/payout-engine/ports"
)

func seedTiedSession(module Module) {
	module.Store.SetPool(ports.SessionPool{
		SessionID:               "session-1",
		TotalPool:               decimal.RequireFromString("100.00"),
		ParticipationMultiplier: decimal.NewFromInt(1),
	})
	module.Store.SetRecipients("session-1", "user-x", "user-y")
	module.Store.AddVote("session-1", scoring.RatedVote{VoterID: "user-a", TargetID: "user-x", Score: 10})
	module.Store.AddVote("session-1", scoring.RatedVote{VoterID: "user-b", TargetID: "user-x", Score: 6})
	module.Store.AddVote("session-1", scoring.RatedVote{VoterID: "user-a", TargetID: "user-y", Score: 8})
	module.Store.AddVote("session-1", scoring.RatedVote{VoterID: "user-b", TargetID: "user-y", Score: 8})
}

func TestRecalculateTiedSessionSplitsPool(t *testing.T) {
	module := NewInMemoryModule(scoring.PolicyRatioToMax, nil)
	seedTiedSession(module)

	response, err := module.Handler.RecalculateHandler(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if len(response.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(response.Results))
	}
	first, second := response.Results[0], response.Results[1]
	if first.UserID != "user-x" || second.UserID != "user-y" {
		t.Fatalf("expected tie broken by user id, got %s then %s", first.UserID, second.UserID)
	}
	if first.Rank != 1 || second.Rank != 2 {
		t.Fatalf("expected ranks 1 and 2, got %d and %d", first.Rank, second.Rank)
	}
	for _, result := range response.Results {
		if !result.BonusAmount.Equal(decimal.RequireFromString("50.00")) {
			t.Fatalf("expected 50.00 for %s, got %s", result.UserID, result.BonusAmount)
		}
		if !result.AverageScore.Equal(decimal.RequireFromString("8.00")) {
			t.Fatalf("expected average 8.00 for %s, got %s", result.UserID, result.AverageScore)
		}
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	module := NewInMemoryModule(scoring.PolicyRatioToMax, nil)
	seedTiedSession(module)

	first, err := module.Recalculate.Recalculate(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("first recalculation failed: %v", err)
	}
	second, err := module.Recalculate.Recalculate(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("second recalculation failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results on unchanged ledger:\n%v\n%v", first, second)
	}
}

func TestRecalculateNoVotesKeepsPriorSnapshot(t *testing.T) {
	module := NewInMemoryModule(scoring.PolicyRatioToMax, nil)
	seedTiedSession(module)

	if _, err := module.Recalculate.Recalculate(context.Background(), "session-1"); err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}

	module.Store.SetPool(ports.SessionPool{
		SessionID:               "session-2",
		TotalPool:               decimal.RequireFromString("10.00"),
		ParticipationMultiplier: decimal.NewFromInt(1),
	})
	module.Store.SetRecipients("session-2", "user-x")
	if _, err := module.Recalculate.Recalculate(context.Background(), "session-2"); !errors.Is(err, domainerrors.ErrNoVotesInSession) {
		t.Fatalf("expected ErrNoVotesInSession, got %v", err)
	}

	results, err := module.Queries.ResultsForSession(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("expected first snapshot intact: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 rows in prior snapshot, got %d", len(results))
	}
	if _, err := module.Queries.ResultsForSession(context.Background(), "session-2"); !errors.Is(err, domainerrors.ErrResultsNotFound) {
		t.Fatalf("expected ErrResultsNotFound for session-2, got %v", err)
	}
}

func TestRecalculateUnknownSession(t *testing.T) {
	module := NewInMemoryModule(scoring.PolicyRatioToMax, nil)
	if _, err := module.Recalculate.Recalculate(context.Background(), "session-missing"); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

type blockingLedger struct {
	ports.LedgerReader
	blockSession string
	entered      chan struct{}
	release      chan struct{}
	once         sync.Once
}

func (b *blockingLedger) GetSessionPool(ctx context.Context, sessionID string) (ports.SessionPool, error) {
	if sessionID == b.blockSession {
		b.once.Do(func() {
			close(b.entered)
			<-b.release
		})
	}
	return b.LedgerReader.GetSessionPool(ctx, sessionID)
}

func TestRecalculateRejectsConcurrentRun(t *testing.T) {
	module := NewInMemoryModule(scoring.PolicyRatioToMax, nil)
	seedTiedSession(module)

	ledger := &blockingLedger{
		LedgerReader: module.Store,
		blockSession: "session-1",
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	guard := commands.NewInflightGuard()
	useCase := commands.RecalculateUseCase{
		Ledger:  ledger,
		Results: module.Store,
		Guard:   guard,
		Policy:  scoring.PolicyRatioToMax,
	}

	done := make(chan error, 1)
	go func() {
		_, err := useCase.Recalculate(context.Background(), "session-1")
		done <- err
	}()
	<-ledger.entered

	if _, err := useCase.Recalculate(context.Background(), "session-1"); !errors.Is(err, domainerrors.ErrRecalculationInProgress) {
		t.Fatalf("expected ErrRecalculationInProgress, got %v", err)
	}
	// A different session is not blocked by the running one.
	module.Store.SetPool(ports.SessionPool{
		SessionID:               "session-2",
		TotalPool:               decimal.RequireFromString("10.00"),
		ParticipationMultiplier: decimal.NewFromInt(1),
	})
	module.Store.SetRecipients("session-2", "user-z")
	module.Store.AddVote("session-2", scoring.RatedVote{VoterID: "user-a", TargetID: "user-z", Score: 5})
	if _, err := useCase.Recalculate(context.Background(), "session-2"); err != nil {
		t.Fatalf("independent session recalculation failed: %v", err)
	}

	close(ledger.release)
	if err := <-done; err != nil {
		t.Fatalf("blocked recalculation failed after release: %v", err)
	}

	// The guard is released; a fresh run succeeds.
	if _, err := useCase.Recalculate(context.Background(), "session-1"); err != nil {
		t.Fatalf("recalculation after release failed: %v", err)
	}
}

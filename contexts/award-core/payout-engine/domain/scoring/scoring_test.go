package scoring

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
)

func TestComputeRatioToMaxEqualAverages(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 10},
		{VoterID: "user-b", TargetID: "user-x", Score: 6},
		{VoterID: "user-a", TargetID: "user-y", Score: 8},
		{VoterID: "user-b", TargetID: "user-y", Score: 8},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(aggregates) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(aggregates))
	}
	for _, agg := range aggregates {
		if !agg.AverageScore.Equal(decimal.RequireFromString("8.00")) {
			t.Fatalf("expected average 8.00 for %s, got %s", agg.UserID, agg.AverageScore)
		}
		if !agg.NormalizedScore.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("expected normalized 1 for %s, got %s", agg.UserID, agg.NormalizedScore)
		}
		if !agg.FinalScore.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("expected final 1 for %s, got %s", agg.UserID, agg.FinalScore)
		}
	}

	allocations := Allocate(aggregates, decimal.RequireFromString("100.00"))
	if !allocations[0].BonusAmount.Equal(decimal.RequireFromString("50.00")) ||
		!allocations[1].BonusAmount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected even 50.00 split, got %s and %s",
			allocations[0].BonusAmount, allocations[1].BonusAmount)
	}
	if allocations[0].UserID != "user-x" || allocations[1].UserID != "user-y" {
		t.Fatalf("expected tie broken by user id, got %s then %s",
			allocations[0].UserID, allocations[1].UserID)
	}
	if allocations[0].Rank != 1 || allocations[1].Rank != 2 {
		t.Fatalf("expected ranks 1 and 2, got %d and %d", allocations[0].Rank, allocations[1].Rank)
	}
}

func TestComputeAverageRounding(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 10},
		{VoterID: "user-b", TargetID: "user-x", Score: 9},
		{VoterID: "user-c", TargetID: "user-x", Score: 3},
	}
	aggregates, err := Compute(votes, []string{"user-x"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// 22/3 = 7.333... rounds to 7.33.
	if !aggregates[0].AverageScore.Equal(decimal.RequireFromString("7.33")) {
		t.Fatalf("expected average 7.33, got %s", aggregates[0].AverageScore)
	}
	if aggregates[0].RawTotal != 22 || aggregates[0].VotesReceived != 3 {
		t.Fatalf("expected total 22 over 3 votes, got %d over %d",
			aggregates[0].RawTotal, aggregates[0].VotesReceived)
	}
}

func TestComputeZeroVoteRecipientKept(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 6},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	var silent *Aggregate
	for i := range aggregates {
		if aggregates[i].UserID == "user-y" {
			silent = &aggregates[i]
		}
	}
	if silent == nil {
		t.Fatalf("expected user-y to stay in the result set")
	}
	if silent.RawTotal != 0 || silent.VotesReceived != 0 {
		t.Fatalf("expected zero totals for user-y, got %d over %d", silent.RawTotal, silent.VotesReceived)
	}
	if !silent.NormalizedScore.IsZero() {
		t.Fatalf("expected zero normalized score for user-y, got %s", silent.NormalizedScore)
	}
}

func TestComputeNoVotesFails(t *testing.T) {
	_, err := Compute(nil, []string{"user-x"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if !errors.Is(err, domainerrors.ErrNoVotesInSession) {
		t.Fatalf("expected ErrNoVotesInSession, got %v", err)
	}
}

func TestComputeNoRecipientsFails(t *testing.T) {
	votes := []RatedVote{{VoterID: "user-a", TargetID: "user-x", Score: 5}}
	_, err := Compute(votes, nil, PolicyRatioToMax, decimal.NewFromInt(1))
	if !errors.Is(err, domainerrors.ErrNoEligibleRecipients) {
		t.Fatalf("expected ErrNoEligibleRecipients, got %v", err)
	}
}

func TestComputeZeroMaxNormalizesToOne(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 0},
		{VoterID: "user-b", TargetID: "user-y", Score: 0},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	for _, agg := range aggregates {
		if !agg.NormalizedScore.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("expected normalized 1 for %s, got %s", agg.UserID, agg.NormalizedScore)
		}
	}
}

func TestComputeMinMaxRescale(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 4},
		{VoterID: "user-a", TargetID: "user-y", Score: 7},
		{VoterID: "user-a", TargetID: "user-z", Score: 10},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y", "user-z"}, PolicyMinMaxRescale, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	byUser := map[string]Aggregate{}
	for _, agg := range aggregates {
		byUser[agg.UserID] = agg
	}
	if !byUser["user-x"].NormalizedScore.Equal(decimal.RequireFromString("0.00")) {
		t.Fatalf("expected 0.00 for user-x, got %s", byUser["user-x"].NormalizedScore)
	}
	if !byUser["user-y"].NormalizedScore.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected 5.00 for user-y, got %s", byUser["user-y"].NormalizedScore)
	}
	if !byUser["user-z"].NormalizedScore.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected 10.00 for user-z, got %s", byUser["user-z"].NormalizedScore)
	}
}

func TestComputeMinMaxRescaleFlatAverages(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 6},
		{VoterID: "user-a", TargetID: "user-y", Score: 6},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y"}, PolicyMinMaxRescale, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	for _, agg := range aggregates {
		if !agg.NormalizedScore.Equal(agg.AverageScore) {
			t.Fatalf("expected normalized to match average for %s, got %s vs %s",
				agg.UserID, agg.NormalizedScore, agg.AverageScore)
		}
	}
}

func TestComputeMultiplierApplied(t *testing.T) {
	votes := []RatedVote{{VoterID: "user-a", TargetID: "user-x", Score: 10}}
	aggregates, err := Compute(votes, []string{"user-x"}, PolicyRatioToMax, decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !aggregates[0].FinalScore.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("expected final 0.5, got %s", aggregates[0].FinalScore)
	}
}

func TestComputeUnknownPolicy(t *testing.T) {
	votes := []RatedVote{{VoterID: "user-a", TargetID: "user-x", Score: 5}}
	_, err := Compute(votes, []string{"user-x"}, Policy("median"), decimal.NewFromInt(1))
	if !errors.Is(err, domainerrors.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestAllocateSingleRecipientGetsFullPool(t *testing.T) {
	votes := []RatedVote{{VoterID: "user-a", TargetID: "user-x", Score: 7}}
	aggregates, err := Compute(votes, []string{"user-x"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	allocations := Allocate(aggregates, decimal.RequireFromString("250.00"))
	if !allocations[0].BonusAmount.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("expected full pool, got %s", allocations[0].BonusAmount)
	}
	if !allocations[0].BonusPercentage.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected 100.00%%, got %s", allocations[0].BonusPercentage)
	}
	if allocations[0].Rank != 1 {
		t.Fatalf("expected rank 1, got %d", allocations[0].Rank)
	}
}

func TestAllocateEvenSplitOnZeroScores(t *testing.T) {
	aggregates := []Aggregate{
		{UserID: "user-x"},
		{UserID: "user-y"},
		{UserID: "user-z"},
	}
	allocations := Allocate(aggregates, decimal.RequireFromString("99.00"))
	for _, alloc := range allocations {
		if !alloc.BonusAmount.Equal(decimal.RequireFromString("33.00")) {
			t.Fatalf("expected 33.00 for %s, got %s", alloc.UserID, alloc.BonusAmount)
		}
		if !alloc.BonusPercentage.Equal(decimal.RequireFromString("33.33")) {
			t.Fatalf("expected 33.33%% for %s, got %s", alloc.UserID, alloc.BonusPercentage)
		}
	}
}

func TestAllocateResidualBound(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 10},
		{VoterID: "user-a", TargetID: "user-y", Score: 7},
		{VoterID: "user-a", TargetID: "user-z", Score: 3},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y", "user-z"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	pool := decimal.RequireFromString("100.00")
	allocations := Allocate(aggregates, pool)
	sum := decimal.Zero
	for _, alloc := range allocations {
		sum = sum.Add(alloc.BonusAmount)
	}
	residual := sum.Sub(pool).Abs()
	bound := decimal.RequireFromString("0.005").Mul(decimal.NewFromInt(int64(len(allocations))))
	if residual.GreaterThan(bound) {
		t.Fatalf("residual %s exceeds bound %s", residual, bound)
	}
}

func TestAllocateRanking(t *testing.T) {
	votes := []RatedVote{
		{VoterID: "user-a", TargetID: "user-x", Score: 9},
		{VoterID: "user-a", TargetID: "user-y", Score: 5},
		{VoterID: "user-a", TargetID: "user-z", Score: 9},
	}
	aggregates, err := Compute(votes, []string{"user-x", "user-y", "user-z"}, PolicyRatioToMax, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	allocations := Allocate(aggregates, decimal.RequireFromString("100.00"))
	order := []string{allocations[0].UserID, allocations[1].UserID, allocations[2].UserID}
	want := []string{"user-x", "user-z", "user-y"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

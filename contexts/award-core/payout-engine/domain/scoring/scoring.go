// Package scoring holds the pure aggregation and allocation pipeline for a
// voting session. It is deterministic: given the same votes, recipients and
// pool parameters it always produces the same ordered result set.
package scoring

import (
	"sort"

	"github.com/shopspring/decimal"

	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
)

// Policy selects how per-recipient averages are normalized before the
// participation multiplier is applied.
type Policy string

const (
	// PolicyRatioToMax divides each average by the highest average in the
	// session. A zero maximum normalizes everyone to 1.0.
	PolicyRatioToMax Policy = "ratio_to_max"
	// PolicyMinMaxRescale rescales averages linearly onto [0, 10]. When all
	// averages are equal the average is kept unchanged.
	PolicyMinMaxRescale Policy = "minmax_rescale"
)

// ValidPolicy reports whether value names a supported normalization policy.
func ValidPolicy(value Policy) bool {
	return value == PolicyRatioToMax || value == PolicyMinMaxRescale
}

// RatedVote is a single ledger entry as seen by the scoring pipeline.
type RatedVote struct {
	VoterID  string
	TargetID string
	Score    int
}

// Aggregate carries the per-recipient tiers produced by Compute.
type Aggregate struct {
	UserID          string
	RawTotal        int64
	VotesReceived   int
	AverageScore    decimal.Decimal
	NormalizedScore decimal.Decimal
	FinalScore      decimal.Decimal
}

// Allocation is a ranked aggregate with its share of the pool attached.
type Allocation struct {
	Aggregate
	Rank            int
	BonusAmount     decimal.Decimal
	BonusPercentage decimal.Decimal
}

var (
	ten     = decimal.NewFromInt(10)
	hundred = decimal.NewFromInt(100)
)

// Compute aggregates votes for the given recipients and applies the
// normalization policy and participation multiplier. Recipients without any
// received votes stay in the output with zero totals. It fails with
// ErrNoVotesInSession when not a single recipient received a vote, and with
// ErrNoEligibleRecipients when the recipient list is empty.
func Compute(votes []RatedVote, recipientIDs []string, policy Policy, multiplier decimal.Decimal) ([]Aggregate, error) {
	if !ValidPolicy(policy) {
		return nil, domainerrors.ErrUnknownPolicy
	}
	if len(recipientIDs) == 0 {
		return nil, domainerrors.ErrNoEligibleRecipients
	}

	totals := make(map[string]int64, len(recipientIDs))
	counts := make(map[string]int, len(recipientIDs))
	eligible := make(map[string]struct{}, len(recipientIDs))
	for _, id := range recipientIDs {
		eligible[id] = struct{}{}
	}

	anyVotes := false
	for _, v := range votes {
		if _, ok := eligible[v.TargetID]; !ok {
			continue
		}
		totals[v.TargetID] += int64(v.Score)
		counts[v.TargetID]++
		anyVotes = true
	}
	if !anyVotes {
		return nil, domainerrors.ErrNoVotesInSession
	}

	aggregates := make([]Aggregate, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		agg := Aggregate{UserID: id, RawTotal: totals[id], VotesReceived: counts[id]}
		if agg.VotesReceived > 0 {
			agg.AverageScore = decimal.NewFromInt(agg.RawTotal).
				Div(decimal.NewFromInt(int64(agg.VotesReceived))).
				Round(2)
		}
		aggregates = append(aggregates, agg)
	}

	normalize(aggregates, policy)

	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	for i := range aggregates {
		aggregates[i].FinalScore = aggregates[i].NormalizedScore.Mul(multiplier)
	}
	return aggregates, nil
}

func normalize(aggregates []Aggregate, policy Policy) {
	min, max := aggregates[0].AverageScore, aggregates[0].AverageScore
	for _, agg := range aggregates[1:] {
		if agg.AverageScore.LessThan(min) {
			min = agg.AverageScore
		}
		if agg.AverageScore.GreaterThan(max) {
			max = agg.AverageScore
		}
	}

	switch policy {
	case PolicyMinMaxRescale:
		spread := max.Sub(min)
		for i := range aggregates {
			if spread.IsZero() {
				aggregates[i].NormalizedScore = aggregates[i].AverageScore
				continue
			}
			aggregates[i].NormalizedScore = aggregates[i].AverageScore.
				Sub(min).Div(spread).Mul(ten).Round(2)
		}
	default: // PolicyRatioToMax
		for i := range aggregates {
			if max.IsZero() {
				aggregates[i].NormalizedScore = decimal.NewFromInt(1)
				continue
			}
			aggregates[i].NormalizedScore = aggregates[i].AverageScore.Div(max).Round(3)
		}
	}
}

// Allocate splits totalPool across the aggregates proportionally to their
// final scores and assigns 1-based ranks. When the final scores sum to zero
// the pool is split evenly. Amounts are rounded to 2 decimals per recipient
// independently, so their sum may differ from totalPool by up to
// 0.005 * len(aggregates); the residual is left as is.
func Allocate(aggregates []Aggregate, totalPool decimal.Decimal) []Allocation {
	sum := decimal.Zero
	for _, agg := range aggregates {
		sum = sum.Add(agg.FinalScore)
	}

	allocations := make([]Allocation, len(aggregates))
	count := decimal.NewFromInt(int64(len(aggregates)))
	for i, agg := range aggregates {
		var share decimal.Decimal
		if sum.IsPositive() {
			share = agg.FinalScore.Div(sum)
		} else {
			share = decimal.NewFromInt(1).Div(count)
		}
		allocations[i] = Allocation{
			Aggregate:       agg,
			BonusAmount:     totalPool.Mul(share).Round(2),
			BonusPercentage: share.Mul(hundred).Round(2),
		}
	}

	sort.SliceStable(allocations, func(i, j int) bool {
		a, b := allocations[i], allocations[j]
		if !a.FinalScore.Equal(b.FinalScore) {
			return a.FinalScore.GreaterThan(b.FinalScore)
		}
		if !a.AverageScore.Equal(b.AverageScore) {
			return a.AverageScore.GreaterThan(b.AverageScore)
		}
		return a.UserID < b.UserID
	})
	for i := range allocations {
		allocations[i].Rank = i + 1
	}
	return allocations
}

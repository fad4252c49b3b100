// Package payoutengine implements the scoring and bonus-allocation pipeline
// inside the award-core context.
//
// The module owns the T1-T4 aggregation of ledger votes, proportional pool
// allocation with deterministic ranking, and the atomically replaced result
// snapshot per session. Recalculation runs at most once in flight per
// session; independent sessions recalculate in parallel.
package payoutengine

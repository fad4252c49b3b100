// Package voteledger implements the vote ledger inside the award-core
// context.
//
// The module owns voting-session lifecycle (create/close/pool parameters),
// participant enrollment, and vote ingestion with per-pair upsert semantics.
// It keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package voteledger

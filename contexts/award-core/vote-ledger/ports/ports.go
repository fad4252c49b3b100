package ports

import (
	"context"
	"time"

	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	"peerbonus/internal/shared/events"
	"peerbonus/internal/shared/outbox"
)

// SessionRepository owns session persistence and the close transition.
type SessionRepository interface {
	CreateSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, sessionID string) (entities.Session, error)
	// CloseSession sets ClosedAt exactly once; the bool reports whether this
	// call performed the transition (false on an already-closed session).
	CloseSession(ctx context.Context, sessionID string, closedAt time.Time) (bool, error)
	UpdatePoolParameters(ctx context.Context, sessionID string, pool entities.PoolParameters) error
	// ListExpiredOpenSessions returns open sessions whose end date passed,
	// for the sweeper worker.
	ListExpiredOpenSessions(ctx context.Context, today time.Time) ([]entities.Session, error)
}

// ParticipantRepository persists per-session capability/status records.
type ParticipantRepository interface {
	UpsertParticipant(ctx context.Context, participant entities.Participant) error
	GetParticipant(ctx context.Context, sessionID string, userID string) (entities.Participant, bool, error)
	ListParticipants(ctx context.Context, sessionID string) ([]entities.Participant, error)
	// TouchLastVoted records the voter's most recent submission time, used by
	// participation reporting.
	TouchLastVoted(ctx context.Context, sessionID string, userID string, votedAt time.Time) error
}

// VoteRepository owns the vote ledger. UpsertVote must serialize writes for
// the same (session, voter, target) key so the ledger ends with exactly one
// current score per ordered pair.
type VoteRepository interface {
	// UpsertVote inserts or overwrites the row for the vote's identity triple
	// and returns the stored vote plus whether a new row was created.
	UpsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, bool, error)
	ListVotesBySession(ctx context.Context, sessionID string) ([]entities.Vote, error)
	CountDistinctVoters(ctx context.Context, sessionID string) (int, error)
}

// ResultChecker reports whether a result snapshot exists for a session. It is
// implemented by the payout engine's store and gates pool-parameter updates.
type ResultChecker interface {
	HasResults(ctx context.Context, sessionID string) (bool, error)
}

// OutboxWriter appends an event in the same transaction scope as the state
// change that produced it.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event events.Envelope) error
}

// OutboxRepository is the relay-side view of the outbox.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher hands envelopes to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

// Clock allows deterministic testing of window and timestamp rules.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts vote/session/event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

package workers

import (
	"context"
	"errors"
	"log/slog"

	application "peerbonus/contexts/award-core/payout-engine/application"
	"peerbonus/contexts/award-core/payout-engine/application/commands"
	domainerrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	"peerbonus/internal/shared/events"
)

// SessionCloseConsumer drains session.closed events and triggers a
// recalculation for each closed session. Computation errors (no votes, no
// recipients) are logged and swallowed: they leave any prior snapshot intact
// and retrying would not change the outcome until the ledger changes.
type SessionCloseConsumer struct {
	Events      <-chan events.Envelope
	Recalculate commands.RecalculateUseCase
	Logger      *slog.Logger
}

// Run consumes events until the context is cancelled or the channel closes.
func (c SessionCloseConsumer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-c.Events:
			if !ok {
				return nil
			}
			c.handle(ctx, event)
		}
	}
}

func (c SessionCloseConsumer) handle(ctx context.Context, event events.Envelope) {
	logger := application.ResolveLogger(c.Logger)
	sessionID := event.EntityID
	if sessionID == "" {
		logger.Warn("session close event without entity id",
			"event", "payout_close_event_invalid",
			"module", "award-core/payout-engine",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return
	}

	_, err := c.Recalculate.Recalculate(ctx, sessionID)
	switch {
	case err == nil:
	case errors.Is(err, domainerrors.ErrNoVotesInSession),
		errors.Is(err, domainerrors.ErrNoEligibleRecipients):
		logger.Warn("recalculation skipped",
			"event", "payout_recalculation_skipped",
			"module", "award-core/payout-engine",
			"layer", "worker",
			"session_id", sessionID,
			"reason", err.Error(),
		)
	case errors.Is(err, domainerrors.ErrRecalculationInProgress):
		logger.Warn("recalculation already running",
			"event", "payout_recalculation_busy",
			"module", "award-core/payout-engine",
			"layer", "worker",
			"session_id", sessionID,
		)
	default:
		logger.Error("recalculation failed",
			"event", "payout_recalculation_failed",
			"module", "award-core/payout-engine",
			"layer", "worker",
			"session_id", sessionID,
			"error", err.Error(),
		)
	}
}

package workers

import (
	"context"
	"log/slog"
	"time"

	application "peerbonus/contexts/award-core/vote-ledger/application"
	"peerbonus/contexts/award-core/vote-ledger/application/commands"
	"peerbonus/contexts/award-core/vote-ledger/ports"
)

// SessionSweeper closes open sessions whose voting window has ended. The
// close emits session.closed through the ledger command path, which is what
// triggers downstream recalculation.
type SessionSweeper struct {
	Sessions ports.SessionRepository
	Closer   commands.SessionUseCase
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (s SessionSweeper) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(s.Logger)
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	expired, err := s.Sessions.ListExpiredOpenSessions(ctx, now)
	if err != nil {
		logger.Error("session sweep list failed",
			"event", "ledger_session_sweep_list_failed",
			"module", "award-core/vote-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	closed := 0
	for _, session := range expired {
		result, err := s.Closer.CloseSession(ctx, session.SessionID)
		if err != nil {
			logger.Error("session sweep close failed",
				"event", "ledger_session_sweep_close_failed",
				"module", "award-core/vote-ledger",
				"layer", "worker",
				"session_id", session.SessionID,
				"error", err.Error(),
			)
			return closed, err
		}
		if result.Transitioned {
			closed++
		}
	}

	if closed > 0 {
		logger.Info("session sweep completed",
			"event", "ledger_session_sweep_completed",
			"module", "award-core/vote-ledger",
			"layer", "worker",
			"closed_count", closed,
		)
	}
	return closed, nil
}

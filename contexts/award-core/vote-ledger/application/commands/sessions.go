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

	"github.com/shopspring/decimal"
)

// CreateSessionCommand opens a new voting window. When AutoEnroll is set the
// listed users are enrolled as active participants in the same call; this is
// an explicit construction step, not a persistence hook.
type CreateSessionCommand struct {
	StartDate     time.Time
	EndDate       time.Time
	AutoEnroll    bool
	EnrollUserIDs []string
	Pool          entities.PoolParameters
}

type SetPoolParametersCommand struct {
	SessionID string
	Pool      entities.PoolParameters
}

type EnrollParticipantCommand struct {
	SessionID       string
	UserID          string
	CanVote         bool
	CanReceiveVotes bool
	Status          entities.ParticipantStatus
	Metadata        entities.ParticipantMetadata
}

// CloseSessionResult reports whether this call performed the transition;
// closing an already-closed session is a no-op.
type CloseSessionResult struct {
	Session      entities.Session
	Transitioned bool
}

// SessionUseCase orchestrates session lifecycle commands: creation with
// optional auto-enrollment, the idempotent close transition, pool-parameter
// updates, and participant enrollment.
type SessionUseCase struct {
	Sessions     ports.SessionRepository
	Participants ports.ParticipantRepository
	Results      ports.ResultChecker
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc SessionUseCase) CreateSession(ctx context.Context, cmd CreateSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.EndDate.Before(cmd.StartDate) {
		logger.Warn("session create validation failed",
			"event", "ledger_session_create_validation_failed",
			"module", "award-core/vote-ledger",
			"layer", "application",
			"start_date", cmd.StartDate.Format(time.DateOnly),
			"end_date", cmd.EndDate.Format(time.DateOnly),
		)
		return entities.Session{}, domainerrors.ErrInvalidSessionDates
	}
	if err := validatePool(cmd.Pool); err != nil {
		return entities.Session{}, err
	}

	now := uc.now()
	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Session{}, err
	}
	session := entities.Session{
		SessionID:  sessionID,
		StartDate:  cmd.StartDate,
		EndDate:    cmd.EndDate,
		Open:       true,
		AutoEnroll: cmd.AutoEnroll,
		Pool:       cmd.Pool,
		CreatedAt:  now,
	}
	if err := uc.Sessions.CreateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}

	enrolled := 0
	if cmd.AutoEnroll {
		for _, userID := range cmd.EnrollUserIDs {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				continue
			}
			participant := entities.Participant{
				SessionID:       sessionID,
				UserID:          userID,
				CanVote:         true,
				CanReceiveVotes: true,
				Status:          entities.ParticipantStatusActive,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := uc.Participants.UpsertParticipant(ctx, participant); err != nil {
				return entities.Session{}, err
			}
			enrolled++
		}
	}

	logger.Info("session created",
		"event", "ledger_session_created",
		"module", "award-core/vote-ledger",
		"layer", "application",
		"session_id", sessionID,
		"start_date", cmd.StartDate.Format(time.DateOnly),
		"end_date", cmd.EndDate.Format(time.DateOnly),
		"auto_enrolled", enrolled,
	)
	return session, nil
}

// CloseSession performs the open -> closed transition exactly once and emits
// session.closed only on the transitioning call.
func (uc SessionUseCase) CloseSession(ctx context.Context, sessionID string) (CloseSessionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID = strings.TrimSpace(sessionID)

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return CloseSessionResult{}, err
	}

	now := uc.now()
	transitioned, err := uc.Sessions.CloseSession(ctx, sessionID, now)
	if err != nil {
		return CloseSessionResult{}, err
	}
	if !transitioned {
		logger.Info("session close replayed on closed session",
			"event", "ledger_session_close_noop",
			"module", "award-core/vote-ledger",
			"layer", "application",
			"session_id", sessionID,
		)
		return CloseSessionResult{Session: session}, nil
	}

	session.Open = false
	session.ClosedAt = &now
	if err := uc.appendSessionClosed(ctx, session, now); err != nil {
		return CloseSessionResult{}, err
	}

	logger.Info("session closed",
		"event", "ledger_session_closed",
		"module", "award-core/vote-ledger",
		"layer", "application",
		"session_id", sessionID,
	)
	return CloseSessionResult{Session: session, Transitioned: true}, nil
}

// SetPoolParameters updates the session pool; rejected once a result snapshot
// exists so recorded payouts and their inputs never diverge.
func (uc SessionUseCase) SetPoolParameters(ctx context.Context, cmd SetPoolParametersCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)

	if err := validatePool(cmd.Pool); err != nil {
		logger.Warn("pool parameters validation failed",
			"event", "ledger_pool_update_validation_failed",
			"module", "award-core/vote-ledger",
			"layer", "application",
			"session_id", sessionID,
		)
		return err
	}
	if _, err := uc.Sessions.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if uc.Results != nil {
		has, err := uc.Results.HasResults(ctx, sessionID)
		if err != nil {
			return err
		}
		if has {
			return domainerrors.ErrResultsAlreadyComputed
		}
	}
	if err := uc.Sessions.UpdatePoolParameters(ctx, sessionID, cmd.Pool); err != nil {
		return err
	}
	logger.Info("pool parameters updated",
		"event", "ledger_pool_updated",
		"module", "award-core/vote-ledger",
		"layer", "application",
		"session_id", sessionID,
		"total_pool", cmd.Pool.TotalPool.String(),
		"participation_multiplier", cmd.Pool.EffectiveMultiplier().String(),
	)
	return nil
}

func (uc SessionUseCase) EnrollParticipant(ctx context.Context, cmd EnrollParticipantCommand) (entities.Participant, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)
	userID := strings.TrimSpace(cmd.UserID)

	if userID == "" {
		return entities.Participant{}, domainerrors.ErrInvalidParticipant
	}
	status := cmd.Status
	if status == "" {
		status = entities.ParticipantStatusActive
	}
	if !entities.ValidParticipantStatus(status) {
		return entities.Participant{}, domainerrors.ErrInvalidParticipant
	}

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return entities.Participant{}, err
	}
	if !session.Open || session.ClosedAt != nil {
		return entities.Participant{}, domainerrors.ErrSessionClosed
	}

	now := uc.now()
	participant := entities.Participant{
		SessionID:       sessionID,
		UserID:          userID,
		CanVote:         cmd.CanVote,
		CanReceiveVotes: cmd.CanReceiveVotes,
		Status:          status,
		Metadata:        cmd.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Participants.UpsertParticipant(ctx, participant); err != nil {
		return entities.Participant{}, err
	}

	logger.Info("participant enrolled",
		"event", "ledger_participant_enrolled",
		"module", "award-core/vote-ledger",
		"layer", "application",
		"session_id", sessionID,
		"user_id", userID,
		"status", string(status),
	)
	return participant, nil
}

func (uc SessionUseCase) appendSessionClosed(ctx context.Context, session entities.Session, closedAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, "session.closed", session.SessionID, closedAt, map[string]any{
		"session_id": session.SessionID,
		"start_date": session.StartDate.Format(time.DateOnly),
		"end_date":   session.EndDate.Format(time.DateOnly),
		"closed_at":  closedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func validatePool(pool entities.PoolParameters) error {
	if pool.TotalPool.IsNegative() {
		return domainerrors.ErrInvalidPoolParameters
	}
	multiplier := pool.ParticipationMultiplier
	if multiplier.IsNegative() || multiplier.GreaterThan(decimal.NewFromInt(1)) {
		return domainerrors.ErrInvalidPoolParameters
	}
	if pool.AverageWeeklyRevenue != nil && pool.AverageWeeklyRevenue.IsNegative() {
		return domainerrors.ErrInvalidPoolParameters
	}
	return nil
}

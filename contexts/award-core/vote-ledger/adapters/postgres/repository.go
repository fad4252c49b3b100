package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	domainerrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	"peerbonus/internal/shared/events"
	"peerbonus/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the Postgres implementation of the ledger ports.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates the ledger tables and their unique indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&sessionModel{},
		&participantModel{},
		&voteModel{},
		&outboxModel{},
	)
}

func (r *Repository) CreateSession(ctx context.Context, session entities.Session) error {
	row := sessionModelFromEntity(session)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ledger_repo_create_session_failed", err, "session_id", session.SessionID)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.Session, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, domainerrors.ErrSessionNotFound
		}
		return entities.Session{}, r.logError("ledger_repo_get_session_failed", err, "session_id", sessionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) CloseSession(ctx context.Context, sessionID string, closedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ? AND closed_at IS NULL", strings.TrimSpace(sessionID)).
		Updates(map[string]any{
			"open":      false,
			"closed_at": closedAt.UTC(),
		})
	if tx.Error != nil {
		return false, r.logError("ledger_repo_close_session_failed", tx.Error, "session_id", sessionID)
	}
	return tx.RowsAffected > 0, nil
}

func (r *Repository) UpdatePoolParameters(ctx context.Context, sessionID string, pool entities.PoolParameters) error {
	tx := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ?", strings.TrimSpace(sessionID)).
		Updates(map[string]any{
			"total_pool":               pool.TotalPool,
			"participation_multiplier": pool.ParticipationMultiplier,
			"average_weekly_revenue":   pool.AverageWeeklyRevenue,
		})
	if tx.Error != nil {
		return r.logError("ledger_repo_update_pool_failed", tx.Error, "session_id", sessionID)
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrSessionNotFound
	}
	return nil
}

func (r *Repository) ListExpiredOpenSessions(ctx context.Context, today time.Time) ([]entities.Session, error) {
	var rows []sessionModel
	err := r.db.WithContext(ctx).
		Where("open = ? AND closed_at IS NULL AND end_date < ?", true, today.UTC().Format(time.DateOnly)).
		Order("end_date ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("ledger_repo_list_expired_failed", err)
	}
	sessions := make([]entities.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toEntity())
	}
	return sessions, nil
}

func (r *Repository) UpsertParticipant(ctx context.Context, participant entities.Participant) error {
	row := participantModelFromEntity(participant)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"can_vote":          row.CanVote,
			"can_receive_votes": row.CanReceiveVotes,
			"status":            row.Status,
			"department":        row.Department,
			"title":             row.Title,
			"note":              row.Note,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("ledger_repo_upsert_participant_failed", err,
			"session_id", participant.SessionID,
			"user_id", participant.UserID,
		)
	}
	return nil
}

func (r *Repository) GetParticipant(ctx context.Context, sessionID string, userID string) (entities.Participant, bool, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", strings.TrimSpace(sessionID), strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Participant{}, false, nil
		}
		return entities.Participant{}, false, r.logError("ledger_repo_get_participant_failed", err,
			"session_id", sessionID,
			"user_id", userID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListParticipants(ctx context.Context, sessionID string) ([]entities.Participant, error) {
	var rows []participantModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("user_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("ledger_repo_list_participants_failed", err, "session_id", sessionID)
	}
	participants := make([]entities.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, row.toEntity())
	}
	return participants, nil
}

func (r *Repository) TouchLastVoted(ctx context.Context, sessionID string, userID string, votedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&participantModel{}).
		Where("session_id = ? AND user_id = ?", strings.TrimSpace(sessionID), strings.TrimSpace(userID)).
		Update("last_voted_at", votedAt.UTC()).
		Error
	if err != nil {
		return r.logError("ledger_repo_touch_last_voted_failed", err,
			"session_id", sessionID,
			"user_id", userID,
		)
	}
	return nil
}

type upsertVoteRow struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Inserted  bool
}

// UpsertVote relies on the uq_vote_identity unique index so concurrent casts
// for the same (session, voter, target) key serialize inside Postgres; the
// xmax trick distinguishes a fresh insert from an overwrite.
func (r *Repository) UpsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, bool, error) {
	var row upsertVoteRow
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO votes (id, session_id, voter_id, target_id, score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, voter_id, target_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`,
		vote.VoteID, vote.SessionID, vote.VoterID, vote.TargetID,
		vote.Score, vote.CreatedAt.UTC(), vote.UpdatedAt.UTC(),
	).Scan(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return entities.Vote{}, false, domainerrors.ErrConflict
		}
		return entities.Vote{}, false, r.logError("ledger_repo_upsert_vote_failed", err,
			"session_id", vote.SessionID,
			"voter_id", vote.VoterID,
			"target_id", vote.TargetID,
		)
	}
	stored := vote
	stored.VoteID = row.ID
	stored.CreatedAt = row.CreatedAt
	stored.UpdatedAt = row.UpdatedAt
	return stored, row.Inserted, nil
}

func (r *Repository) ListVotesBySession(ctx context.Context, sessionID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("voter_id ASC, target_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("ledger_repo_list_votes_failed", err, "session_id", sessionID)
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, row.toEntity())
	}
	return votes, nil
}

func (r *Repository) CountDistinctVoters(ctx context.Context, sessionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Distinct("voter_id").
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("ledger_repo_count_voters_failed", err, "session_id", sessionID)
	}
	return int(count), nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event events.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:        event.EventID,
		EventType: event.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: event.OccurredAtUTC,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("ledger_repo_append_outbox_failed", err, "event_type", event.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("ledger_repo_list_outbox_failed", err)
	}
	messages := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, outbox.Message{
			ID:          row.ID,
			EventType:   row.EventType,
			Payload:     row.Payload,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			PublishedAt: row.PublishedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		}).
		Error
	if err != nil {
		return r.logError("ledger_repo_mark_outbox_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "award-core/vote-ledger",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SystemClock satisfies the Clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator satisfies the IDGenerator port.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

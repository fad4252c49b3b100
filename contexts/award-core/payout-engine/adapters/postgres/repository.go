package postgresadapter

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"peerbonus/contexts/award-core/payout-engine/domain/entities"
)

// Repository is the Postgres implementation of the payout-engine result
// store.
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

// Migrate creates the results table.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&resultModel{})
}

// ReplaceResults swaps the session snapshot inside one transaction. Readers
// either see the full old set or the full new set, never a mix.
func (r *Repository) ReplaceResults(ctx context.Context, sessionID string, results []entities.SessionResult) error {
	sessionID = strings.TrimSpace(sessionID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&resultModel{}).Error; err != nil {
			return err
		}
		if len(results) == 0 {
			return nil
		}
		rows := make([]resultModel, len(results))
		for i, result := range results {
			rows[i] = resultModelFromEntity(result)
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return r.logError("payout_repo_replace_results_failed", err, "session_id", sessionID)
	}
	return nil
}

func (r *Repository) ListResultsByRank(ctx context.Context, sessionID string) ([]entities.SessionResult, error) {
	var rows []resultModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("rank ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("payout_repo_list_results_failed", err, "session_id", sessionID)
	}
	results := make([]entities.SessionResult, len(rows))
	for i, row := range rows {
		results[i] = row.toEntity()
	}
	return results, nil
}

func (r *Repository) HasResults(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&resultModel{}).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("payout_repo_has_results_failed", err, "session_id", sessionID)
	}
	return count > 0, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "award-core/payout-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("payout repository operation failed", fields...)
	return err
}

package postgresadapter

import (
	"github.com/shopspring/decimal"

	"peerbonus/contexts/award-core/payout-engine/domain/entities"
)

type resultModel struct {
	SessionID       string          `gorm:"column:session_id;primaryKey"`
	UserID          string          `gorm:"column:user_id;primaryKey"`
	RawTotal        int64           `gorm:"column:raw_total"`
	VotesReceived   int             `gorm:"column:votes_received"`
	AverageScore    decimal.Decimal `gorm:"column:average_score;type:numeric(6,2)"`
	NormalizedScore decimal.Decimal `gorm:"column:normalized_score;type:numeric(8,3)"`
	FinalScore      decimal.Decimal `gorm:"column:final_score;type:numeric(8,3)"`
	Rank            int             `gorm:"column:rank"`
	BonusAmount     decimal.Decimal `gorm:"column:bonus_amount;type:numeric(15,2)"`
	BonusPercentage decimal.Decimal `gorm:"column:bonus_percentage;type:numeric(6,2)"`
}

func (resultModel) TableName() string { return "session_results" }

func (m resultModel) toEntity() entities.SessionResult {
	return entities.SessionResult{
		SessionID:       m.SessionID,
		UserID:          m.UserID,
		RawTotal:        m.RawTotal,
		VotesReceived:   m.VotesReceived,
		AverageScore:    m.AverageScore,
		NormalizedScore: m.NormalizedScore,
		FinalScore:      m.FinalScore,
		Rank:            m.Rank,
		BonusAmount:     m.BonusAmount,
		BonusPercentage: m.BonusPercentage,
	}
}

func resultModelFromEntity(result entities.SessionResult) resultModel {
	return resultModel{
		SessionID:       result.SessionID,
		UserID:          result.UserID,
		RawTotal:        result.RawTotal,
		VotesReceived:   result.VotesReceived,
		AverageScore:    result.AverageScore,
		NormalizedScore: result.NormalizedScore,
		FinalScore:      result.FinalScore,
		Rank:            result.Rank,
		BonusAmount:     result.BonusAmount,
		BonusPercentage: result.BonusPercentage,
	}
}

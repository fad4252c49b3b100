package postgresadapter

import (
	"time"

	"github.com/shopspring/decimal"

	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
)

type sessionModel struct {
	ID                      string           `gorm:"column:id;primaryKey"`
	StartDate               time.Time        `gorm:"column:start_date;type:date"`
	EndDate                 time.Time        `gorm:"column:end_date;type:date"`
	Open                    bool             `gorm:"column:open"`
	AutoEnroll              bool             `gorm:"column:auto_enroll"`
	TotalPool               decimal.Decimal  `gorm:"column:total_pool;type:numeric(15,2)"`
	ParticipationMultiplier decimal.Decimal  `gorm:"column:participation_multiplier;type:numeric(5,4)"`
	AverageWeeklyRevenue    *decimal.Decimal `gorm:"column:average_weekly_revenue;type:numeric(15,2)"`
	CreatedAt               time.Time        `gorm:"column:created_at"`
	ClosedAt                *time.Time       `gorm:"column:closed_at"`
}

func (sessionModel) TableName() string { return "voting_sessions" }

func (m sessionModel) toEntity() entities.Session {
	return entities.Session{
		SessionID:  m.ID,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Open:       m.Open,
		AutoEnroll: m.AutoEnroll,
		Pool: entities.PoolParameters{
			TotalPool:               m.TotalPool,
			ParticipationMultiplier: m.ParticipationMultiplier,
			AverageWeeklyRevenue:    m.AverageWeeklyRevenue,
		},
		CreatedAt: m.CreatedAt,
		ClosedAt:  m.ClosedAt,
	}
}

func sessionModelFromEntity(session entities.Session) sessionModel {
	return sessionModel{
		ID:                      session.SessionID,
		StartDate:               session.StartDate,
		EndDate:                 session.EndDate,
		Open:                    session.Open,
		AutoEnroll:              session.AutoEnroll,
		TotalPool:               session.Pool.TotalPool,
		ParticipationMultiplier: session.Pool.ParticipationMultiplier,
		AverageWeeklyRevenue:    session.Pool.AverageWeeklyRevenue,
		CreatedAt:               session.CreatedAt,
		ClosedAt:                session.ClosedAt,
	}
}

type participantModel struct {
	SessionID       string     `gorm:"column:session_id;primaryKey;uniqueIndex:uq_session_user"`
	UserID          string     `gorm:"column:user_id;primaryKey;uniqueIndex:uq_session_user"`
	CanVote         bool       `gorm:"column:can_vote"`
	CanReceiveVotes bool       `gorm:"column:can_receive_votes"`
	Status          string     `gorm:"column:status;size:20"`
	Department      string     `gorm:"column:department"`
	Title           string     `gorm:"column:title"`
	Note            string     `gorm:"column:note"`
	LastVotedAt     *time.Time `gorm:"column:last_voted_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (participantModel) TableName() string { return "session_participants" }

func (m participantModel) toEntity() entities.Participant {
	return entities.Participant{
		SessionID:       m.SessionID,
		UserID:          m.UserID,
		CanVote:         m.CanVote,
		CanReceiveVotes: m.CanReceiveVotes,
		Status:          entities.ParticipantStatus(m.Status),
		Metadata: entities.ParticipantMetadata{
			Department: m.Department,
			Title:      m.Title,
			Note:       m.Note,
		},
		LastVotedAt: m.LastVotedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func participantModelFromEntity(p entities.Participant) participantModel {
	return participantModel{
		SessionID:       p.SessionID,
		UserID:          p.UserID,
		CanVote:         p.CanVote,
		CanReceiveVotes: p.CanReceiveVotes,
		Status:          string(p.Status),
		Department:      p.Metadata.Department,
		Title:           p.Metadata.Title,
		Note:            p.Metadata.Note,
		LastVotedAt:     p.LastVotedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	SessionID string    `gorm:"column:session_id;uniqueIndex:uq_vote_identity;index"`
	VoterID   string    `gorm:"column:voter_id;uniqueIndex:uq_vote_identity;index"`
	TargetID  string    `gorm:"column:target_id;uniqueIndex:uq_vote_identity;index"`
	Score     int       `gorm:"column:score"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string { return "votes" }

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		SessionID: m.SessionID,
		VoterID:   m.VoterID,
		TargetID:  m.TargetID,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type;index"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status;size:16;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "ledger_outbox" }

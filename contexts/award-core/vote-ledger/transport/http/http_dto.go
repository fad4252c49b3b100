package http

import "github.com/shopspring/decimal"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PoolParametersRequest struct {
	TotalPool               decimal.Decimal  `json:"total_pool"`
	ParticipationMultiplier decimal.Decimal  `json:"participation_multiplier"`
	AverageWeeklyRevenue    *decimal.Decimal `json:"average_weekly_revenue,omitempty"`
}

type CreateSessionRequest struct {
	StartDate     string                `json:"start_date"`
	EndDate       string                `json:"end_date"`
	AutoEnroll    bool                  `json:"auto_enroll"`
	EnrollUserIDs []string              `json:"enroll_user_ids,omitempty"`
	Pool          PoolParametersRequest `json:"pool"`
}

type SessionResponse struct {
	SessionID               string           `json:"session_id"`
	StartDate               string           `json:"start_date"`
	EndDate                 string           `json:"end_date"`
	Open                    bool             `json:"open"`
	AutoEnroll              bool             `json:"auto_enroll"`
	TotalPool               decimal.Decimal  `json:"total_pool"`
	ParticipationMultiplier decimal.Decimal  `json:"participation_multiplier"`
	AverageWeeklyRevenue    *decimal.Decimal `json:"average_weekly_revenue,omitempty"`
	ClosedAt                string           `json:"closed_at,omitempty"`
}

type CloseSessionResponse struct {
	Session      SessionResponse `json:"session"`
	Transitioned bool            `json:"transitioned"`
}

type ParticipantMetadataDTO struct {
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
	Note       string `json:"note,omitempty"`
}

type EnrollParticipantRequest struct {
	UserID          string                 `json:"user_id"`
	CanVote         bool                   `json:"can_vote"`
	CanReceiveVotes bool                   `json:"can_receive_votes"`
	Status          string                 `json:"status,omitempty"`
	Metadata        ParticipantMetadataDTO `json:"metadata,omitempty"`
}

type ParticipantResponse struct {
	SessionID       string                 `json:"session_id"`
	UserID          string                 `json:"user_id"`
	CanVote         bool                   `json:"can_vote"`
	CanReceiveVotes bool                   `json:"can_receive_votes"`
	Status          string                 `json:"status"`
	Metadata        ParticipantMetadataDTO `json:"metadata"`
	LastVotedAt     string                 `json:"last_voted_at,omitempty"`
}

type VoteItem struct {
	TargetID string `json:"target_id"`
	Score    int    `json:"score"`
}

type CastVotesRequest struct {
	SessionID string     `json:"session_id"`
	VoterID   string     `json:"voter_id"`
	Votes     []VoteItem `json:"votes"`
}

type CastVotesResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type SessionStatsResponse struct {
	SessionID          string  `json:"session_id"`
	Participants       int     `json:"participants"`
	EligibleVoters     int     `json:"eligible_voters"`
	EligibleRecipients int     `json:"eligible_recipients"`
	VotesTotal         int     `json:"votes_total"`
	VotersDistinct     int     `json:"voters_distinct"`
	ParticipationRate  float64 `json:"participation_rate"`
}

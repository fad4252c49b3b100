package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"peerbonus/contexts/award-core/vote-ledger/application/commands"
	"peerbonus/contexts/award-core/vote-ledger/application/queries"
	"peerbonus/contexts/award-core/vote-ledger/domain/entities"
	domainerrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	httptransport "peerbonus/contexts/award-core/vote-ledger/transport/http"
)

// Handler maps transport DTOs onto ledger use cases. HTTP status concerns
// stay in the platform server; this layer only converts shapes.
type Handler struct {
	Sessions commands.SessionUseCase
	Votes    commands.VoteUseCase
	Queries  queries.VotesUseCase
	Logger   *slog.Logger
}

func (h Handler) CreateSessionHandler(ctx context.Context, req httptransport.CreateSessionRequest) (httptransport.SessionResponse, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return httptransport.SessionResponse{}, domainerrors.ErrInvalidSessionDates
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return httptransport.SessionResponse{}, domainerrors.ErrInvalidSessionDates
	}

	session, err := h.Sessions.CreateSession(ctx, commands.CreateSessionCommand{
		StartDate:     start,
		EndDate:       end,
		AutoEnroll:    req.AutoEnroll,
		EnrollUserIDs: req.EnrollUserIDs,
		Pool: entities.PoolParameters{
			TotalPool:               req.Pool.TotalPool,
			ParticipationMultiplier: req.Pool.ParticipationMultiplier,
			AverageWeeklyRevenue:    req.Pool.AverageWeeklyRevenue,
		},
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

func (h Handler) CloseSessionHandler(ctx context.Context, sessionID string) (httptransport.CloseSessionResponse, error) {
	result, err := h.Sessions.CloseSession(ctx, sessionID)
	if err != nil {
		return httptransport.CloseSessionResponse{}, err
	}
	return httptransport.CloseSessionResponse{
		Session:      sessionResponse(result.Session),
		Transitioned: result.Transitioned,
	}, nil
}

func (h Handler) SetPoolParametersHandler(ctx context.Context, sessionID string, req httptransport.PoolParametersRequest) error {
	return h.Sessions.SetPoolParameters(ctx, commands.SetPoolParametersCommand{
		SessionID: sessionID,
		Pool: entities.PoolParameters{
			TotalPool:               req.TotalPool,
			ParticipationMultiplier: req.ParticipationMultiplier,
			AverageWeeklyRevenue:    req.AverageWeeklyRevenue,
		},
	})
}

func (h Handler) EnrollParticipantHandler(ctx context.Context, sessionID string, req httptransport.EnrollParticipantRequest) (httptransport.ParticipantResponse, error) {
	participant, err := h.Sessions.EnrollParticipant(ctx, commands.EnrollParticipantCommand{
		SessionID:       sessionID,
		UserID:          req.UserID,
		CanVote:         req.CanVote,
		CanReceiveVotes: req.CanReceiveVotes,
		Status:          entities.ParticipantStatus(req.Status),
		Metadata: entities.ParticipantMetadata{
			Department: req.Metadata.Department,
			Title:      req.Metadata.Title,
			Note:       req.Metadata.Note,
		},
	})
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	return participantResponse(participant), nil
}

func (h Handler) GetSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.Queries.Session(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

func (h Handler) ListParticipantsHandler(ctx context.Context, sessionID string) ([]httptransport.ParticipantResponse, error) {
	participants, err := h.Queries.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]httptransport.ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		out = append(out, participantResponse(participant))
	}
	return out, nil
}

func (h Handler) CastVotesHandler(ctx context.Context, req httptransport.CastVotesRequest) (httptransport.CastVotesResponse, error) {
	items := make([]commands.BatchItem, 0, len(req.Votes))
	for _, vote := range req.Votes {
		items = append(items, commands.BatchItem{TargetID: vote.TargetID, Score: vote.Score})
	}
	result, err := h.Votes.CastVotes(ctx, commands.CastVotesCommand{
		SessionID: req.SessionID,
		VoterID:   req.VoterID,
		Votes:     items,
	})
	if err != nil {
		return httptransport.CastVotesResponse{}, err
	}
	return httptransport.CastVotesResponse{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
	}, nil
}

func (h Handler) SessionStatsHandler(ctx context.Context, sessionID string) (httptransport.SessionStatsResponse, error) {
	stats, err := h.Queries.SessionStats(ctx, sessionID)
	if err != nil {
		return httptransport.SessionStatsResponse{}, err
	}
	return httptransport.SessionStatsResponse{
		SessionID:          stats.SessionID,
		Participants:       stats.Participants,
		EligibleVoters:     stats.EligibleVoters,
		EligibleRecipients: stats.EligibleRecipients,
		VotesTotal:         stats.VotesTotal,
		VotersDistinct:     stats.VotersDistinct,
		ParticipationRate:  stats.ParticipationRate,
	}, nil
}

func sessionResponse(session entities.Session) httptransport.SessionResponse {
	resp := httptransport.SessionResponse{
		SessionID:               session.SessionID,
		StartDate:               session.StartDate.Format(time.DateOnly),
		EndDate:                 session.EndDate.Format(time.DateOnly),
		Open:                    session.Open,
		AutoEnroll:              session.AutoEnroll,
		TotalPool:               session.Pool.TotalPool,
		ParticipationMultiplier: session.Pool.EffectiveMultiplier(),
		AverageWeeklyRevenue:    session.Pool.AverageWeeklyRevenue,
	}
	if session.ClosedAt != nil {
		resp.ClosedAt = session.ClosedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func participantResponse(participant entities.Participant) httptransport.ParticipantResponse {
	resp := httptransport.ParticipantResponse{
		SessionID:       participant.SessionID,
		UserID:          participant.UserID,
		CanVote:         participant.CanVote,
		CanReceiveVotes: participant.CanReceiveVotes,
		Status:          string(participant.Status),
		Metadata: httptransport.ParticipantMetadataDTO{
			Department: participant.Metadata.Department,
			Title:      participant.Metadata.Title,
			Note:       participant.Metadata.Note,
		},
	}
	if participant.LastVotedAt != nil {
		resp.LastVotedAt = participant.LastVotedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(time.DateOnly, value)
}

package httpadapter

import (
	"context"
	"log/slog"

	"peerbonus/contexts/award-core/payout-engine/application/commands"
	"peerbonus/contexts/award-core/payout-engine/application/queries"
	"peerbonus/contexts/award-core/payout-engine/domain/entities"
	httptransport "peerbonus/contexts/award-core/payout-engine/transport/http"
)

// Handler maps transport DTOs onto payout-engine use cases. HTTP status
// concerns stay in the platform server; this layer only converts shapes.
type Handler struct {
	Recalculate commands.RecalculateUseCase
	Queries     queries.ResultsUseCase
	Logger      *slog.Logger
}

func (h Handler) RecalculateHandler(ctx context.Context, sessionID string) (httptransport.RecalculateResponse, error) {
	results, err := h.Recalculate.Recalculate(ctx, sessionID)
	if err != nil {
		return httptransport.RecalculateResponse{}, err
	}
	return httptransport.RecalculateResponse{
		SessionID: sessionID,
		Results:   resultResponses(results),
	}, nil
}

func (h Handler) GetResultsHandler(ctx context.Context, sessionID string) (httptransport.ResultsResponse, error) {
	results, err := h.Queries.ResultsForSession(ctx, sessionID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{
		SessionID: sessionID,
		Results:   resultResponses(results),
	}, nil
}

func resultResponses(results []entities.SessionResult) []httptransport.SessionResultResponse {
	responses := make([]httptransport.SessionResultResponse, len(results))
	for i, result := range results {
		responses[i] = httptransport.SessionResultResponse{
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
	return responses
}

package httpserver

import (
	"errors"
	"net/http"

	payouterrors "peerbonus/contexts/award-core/payout-engine/domain/errors"
	payouthttp "peerbonus/contexts/award-core/payout-engine/transport/http"
)

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.payout.Handler.RecalculateHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		if s.metrics != nil {
			s.metrics.Recalculations.WithLabelValues(recalcOutcome(err)).Inc()
		}
		writePayoutDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.Recalculations.WithLabelValues("success").Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.payout.Handler.GetResultsHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writePayoutDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func recalcOutcome(err error) string {
	switch {
	case errors.Is(err, payouterrors.ErrNoVotesInSession),
		errors.Is(err, payouterrors.ErrNoEligibleRecipients):
		return "skipped"
	case errors.Is(err, payouterrors.ErrRecalculationInProgress):
		return "busy"
	default:
		return "error"
	}
}

func writePayoutDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payouterrors.ErrSessionNotFound),
		errors.Is(err, payouterrors.ErrResultsNotFound):
		writePayoutError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, payouterrors.ErrNoVotesInSession):
		writePayoutError(w, http.StatusUnprocessableEntity, "no_votes_in_session", err.Error())
	case errors.Is(err, payouterrors.ErrNoEligibleRecipients):
		writePayoutError(w, http.StatusUnprocessableEntity, "no_eligible_recipients", err.Error())
	case errors.Is(err, payouterrors.ErrRecalculationInProgress):
		writePayoutError(w, http.StatusConflict, "recalculation_in_progress", err.Error())
	case errors.Is(err, payouterrors.ErrUnknownPolicy):
		writePayoutError(w, http.StatusBadRequest, "unknown_policy", err.Error())
	default:
		writePayoutError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePayoutError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, payouthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ledgererrors "peerbonus/contexts/award-core/vote-ledger/domain/errors"
	ledgerhttp "peerbonus/contexts/award-core/vote-ledger/transport/http"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CreateSessionHandler(r.Context(), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.GetSessionHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.CloseSessionHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if resp.Transitioned && s.metrics != nil {
		s.metrics.SessionsClosed.Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPoolParameters(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.PoolParametersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.SetPoolParametersHandler(r.Context(), r.PathValue("id"), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnrollParticipant(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.EnrollParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.EnrollParticipantHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListParticipantsHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.SessionStatsHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVotes(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.CastVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CastVotesHandler(r.Context(), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.VotesCast.Add(float64(resp.Created))
		s.metrics.VotesUpdated.Add(float64(resp.Updated))
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidScore):
		writeLedgerError(w, http.StatusBadRequest, "invalid_score", err.Error())
	case errors.Is(err, ledgererrors.ErrSelfVoteNotAllowed):
		writeLedgerError(w, http.StatusBadRequest, "self_vote_not_allowed", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidSessionDates):
		writeLedgerError(w, http.StatusBadRequest, "invalid_session_dates", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidPoolParameters):
		writeLedgerError(w, http.StatusBadRequest, "invalid_pool_parameters", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidParticipant):
		writeLedgerError(w, http.StatusBadRequest, "invalid_participant", err.Error())
	case errors.Is(err, ledgererrors.ErrSessionNotFound),
		errors.Is(err, ledgererrors.ErrParticipantNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrVoterNotEligible),
		errors.Is(err, ledgererrors.ErrTargetNotEligible):
		writeLedgerError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, ledgererrors.ErrSessionNotOpen),
		errors.Is(err, ledgererrors.ErrSessionClosed):
		writeLedgerError(w, http.StatusConflict, "session_not_open", err.Error())
	case errors.Is(err, ledgererrors.ErrResultsAlreadyComputed):
		writeLedgerError(w, http.StatusConflict, "results_already_computed", err.Error())
	case errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

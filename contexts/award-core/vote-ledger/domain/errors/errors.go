package errors

import "errors"

var (
	ErrInvalidScore           = errors.New("score is outside the allowed range")
	ErrSelfVoteNotAllowed     = errors.New("self voting is not allowed")
	ErrSessionNotFound        = errors.New("voting session not found")
	ErrSessionNotOpen         = errors.New("voting session is not accepting votes")
	ErrSessionClosed          = errors.New("voting session is already closed")
	ErrVoterNotEligible       = errors.New("voter is not eligible in this session")
	ErrTargetNotEligible      = errors.New("target cannot receive votes in this session")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrInvalidSessionDates    = errors.New("session end date is before start date")
	ErrInvalidPoolParameters  = errors.New("invalid pool parameters")
	ErrInvalidParticipant     = errors.New("invalid participant input")
	ErrResultsAlreadyComputed = errors.New("pool parameters are locked after the first recalculation")
	ErrConflict               = errors.New("concurrent vote conflict")
)

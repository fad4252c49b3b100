package errors

import "errors"

var (
	ErrSessionNotFound         = errors.New("voting session not found")
	ErrNoVotesInSession        = errors.New("no votes were cast in this session")
	ErrNoEligibleRecipients    = errors.New("session has no eligible recipients")
	ErrRecalculationInProgress = errors.New("recalculation is already running for this session")
	ErrResultsNotFound         = errors.New("no computed results for this session")
	ErrUnknownPolicy           = errors.New("unknown normalization policy")
)

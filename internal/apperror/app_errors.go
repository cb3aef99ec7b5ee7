package apperror

import "errors"

var (
	ErrNotFound            = errors.New("no search results")
	ErrTransport           = errors.New("movie database request failed")
	ErrMissingCredential   = errors.New("movie database credential is not configured")
	ErrWrongAnswer         = errors.New("wrong answer")
	ErrTimeout             = errors.New("time is up")
	ErrRoundOver           = errors.New("round is over")
	ErrLookupInFlight      = errors.New("a lookup is already in progress")
	ErrEmptySubmission     = errors.New("submission is empty")
	ErrSubmissionDiscarded = errors.New("submission was discarded by a reset")
	ErrGameNotFound        = errors.New("game not found")
)

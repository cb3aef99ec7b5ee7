package view

import (
	"errors"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
)

const (
	ResultAccepted = "accepted"
	ResultNoMatch  = "no_match"
)

// SubmissionResult names the outcome of a settled submission. It reports
// false for errors that mean the submission was never played.
func SubmissionResult(err error) (string, bool) {
	switch {
	case err == nil:
		return ResultAccepted, true
	case errors.Is(err, apperror.ErrNotFound):
		return ResultNoMatch, true
	case errors.Is(err, apperror.ErrWrongAnswer):
		return string(entity.FailureWrongAnswer), true
	case errors.Is(err, apperror.ErrTimeout):
		return string(entity.FailureTimeout), true
	case errors.Is(err, apperror.ErrTransport):
		return string(entity.FailureAPIError), true
	default:
		return "", false
	}
}

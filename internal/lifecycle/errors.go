package lifecycle

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrTargetRequired     = errors.New("lifecycle: target reference is required")
	ErrNotDraftOrRejected = errors.New("lifecycle: must be draft or rejected to submit for review")
	ErrNotPendingReview   = errors.New("lifecycle: must be pending_review")
	ErrNotPublished       = errors.New("lifecycle: must be published to unpublish")
	ErrReviewerRequired   = errors.New("lifecycle: reviewer is required")
	ErrNotesRequired      = errors.New("lifecycle: rejection notes are required")
)

func validationError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).
		WithTextCode("LIFECYCLE_VALIDATION")
}

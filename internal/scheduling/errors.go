package scheduling

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrTargetRequired         = errors.New("scheduling: target reference is required")
	ErrPublishAtRequired      = errors.New("scheduling: publish time is required")
	ErrPublishAtNotFuture     = errors.New("scheduling: publish time must be in the future")
	ErrUnpublishAtNotFuture   = errors.New("scheduling: unpublish time must be in the future")
	ErrUnpublishBeforePublish = errors.New("scheduling: unpublish time must be after publish time")
	ErrNotPublished           = errors.New("scheduling: content must be published to schedule unpublish")
	ErrTaskNotFound           = errors.New("scheduling: task not found")
	ErrTaskNotPending         = errors.New("scheduling: task is no longer pending")
)

func validationError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).
		WithTextCode("SCHEDULING_VALIDATION")
}

func conflictError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryConflict, msg).
		WithTextCode("SCHEDULING_CONFLICT")
}

func notFoundError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryNotFound, msg).
		WithTextCode("SCHEDULING_NOT_FOUND")
}

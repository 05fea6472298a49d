package content

import (
	"errors"
	"fmt"
)

var (
	ErrSlugRequired = errors.New("content: slug is required")
	ErrSlugInvalid  = errors.New("content: slug contains invalid characters")
	ErrSlugExists   = errors.New("content: slug already exists")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

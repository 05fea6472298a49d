package domain

import "strings"

// Status represents moderation and publication lifecycle states for content entities.
type Status string

const (
	// StatusDraft indicates content still under preparation.
	StatusDraft Status = "draft"
	// StatusPendingReview marks content waiting for an editorial decision.
	StatusPendingReview Status = "pending_review"
	// StatusApproved marks content cleared by a reviewer but not yet published.
	StatusApproved Status = "approved"
	// StatusRejected marks content sent back by a reviewer.
	StatusRejected Status = "rejected"
	// StatusScheduled marks content with a future publish time configured.
	StatusScheduled Status = "scheduled"
	// StatusPublished identifies content available to consumers.
	StatusPublished Status = "published"
)

// Statuses lists every known lifecycle status in moderation order.
func Statuses() []Status {
	return []Status{
		StatusDraft,
		StatusPendingReview,
		StatusApproved,
		StatusRejected,
		StatusScheduled,
		StatusPublished,
	}
}

// NormalizeStatus coerces arbitrary status strings into a known representation,
// defaulting to draft for empty input.
func NormalizeStatus(input string) Status {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return StatusDraft
	}
	return Status(trimmed)
}

// IsValidStatus reports whether the supplied value names a known status.
func IsValidStatus(input string) bool {
	candidate := Status(strings.ToLower(strings.TrimSpace(input)))
	for _, status := range Statuses() {
		if status == candidate {
			return true
		}
	}
	return false
}

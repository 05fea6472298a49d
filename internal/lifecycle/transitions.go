package lifecycle

import "github.com/KCuppens/bedrock-cms/internal/domain"

// Transition names in the content state machine.
const (
	TransitionSubmitForReview = "submit_for_review"
	TransitionApprove         = "approve"
	TransitionReject          = "reject"
	TransitionPublish         = "publish"
	TransitionUnpublish       = "unpublish"
	TransitionSchedule        = "schedule"
	TransitionUnschedule      = "unschedule"
)

// Transition describes one allowed move in the state machine. A nil From
// list means the transition is allowed from any state.
type Transition struct {
	Name string
	From []domain.Status
	To   domain.Status
}

var transitions = []Transition{
	{Name: TransitionSubmitForReview, From: []domain.Status{domain.StatusDraft, domain.StatusRejected}, To: domain.StatusPendingReview},
	{Name: TransitionApprove, From: []domain.Status{domain.StatusPendingReview}, To: domain.StatusApproved},
	{Name: TransitionReject, From: []domain.Status{domain.StatusPendingReview}, To: domain.StatusRejected},
	{Name: TransitionPublish, From: nil, To: domain.StatusPublished},
	{Name: TransitionUnpublish, From: []domain.Status{domain.StatusPublished}, To: domain.StatusDraft},
	{Name: TransitionSchedule, From: nil, To: domain.StatusScheduled},
	{Name: TransitionUnschedule, From: nil, To: domain.StatusDraft},
}

// Transitions returns a copy of the full transition table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// CanTransition reports whether the named transition is allowed from the
// given status.
func CanTransition(name string, from domain.Status) bool {
	for _, t := range transitions {
		if t.Name != name {
			continue
		}
		if t.From == nil {
			return true
		}
		for _, s := range t.From {
			if s == from {
				return true
			}
		}
		return false
	}
	return false
}

// AvailableTransitions lists the transitions permitted from a status.
func AvailableTransitions(from domain.Status) []string {
	out := make([]string, 0, len(transitions))
	for _, t := range transitions {
		if CanTransition(t.Name, from) {
			out = append(out, t.Name)
		}
	}
	return out
}

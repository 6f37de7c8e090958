// Package triage implements the operator workflow that moves trend items from
// the inbox into the personal repository and through production.
//
// States (domain.TriageState):
//
//	StatePending -> StateApproved <-> StateInProgress <-> StateFinished
//	StatePending -> StateIgnored
//
// StateApproved is stored as "NOT_STARTED".
//
// Repository items may be hard-deleted; inbox items may not.
package triage

import "github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"

// working are the repository substates that move freely among themselves.
var working = map[domain.TriageState]bool{
	domain.StateApproved:   true,
	domain.StateInProgress: true,
	domain.StateFinished:   true,
}

// CanTransition reports whether an item in state from may move to state to.
// Staying in the same state is always allowed.
func CanTransition(from, to domain.TriageState) bool {
	if from == to {
		return from.IsValid()
	}
	switch from {
	case domain.StatePending:
		return to == domain.StateApproved || to == domain.StateIgnored
	case domain.StateApproved, domain.StateInProgress, domain.StateFinished:
		return working[to]
	}
	return false
}

// CanDelete reports whether an item with the given origin may be hard-deleted.
func CanDelete(origin domain.Origin) bool {
	return origin == domain.OriginRepository
}

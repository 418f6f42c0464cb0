package services

import (
	"fmt"

	"tournament-dashboard/models"
)

// registrationEdges holds every allowed registration status change. APPROVED,
// REJECTED and CANCELLED have no outgoing edge except APPROVED → CANCELLED.
var registrationEdges = map[models.RegistrationStatus][]models.RegistrationStatus{
	models.RegistrationPending:  {models.RegistrationApproved, models.RegistrationRejected, models.RegistrationCancelled},
	models.RegistrationApproved: {models.RegistrationCancelled},
}

// CanTransition reports whether a registration may move from one status to another.
func CanTransition(from, to models.RegistrationStatus) bool {
	for _, next := range registrationEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition decides whether actor may move reg to status to. approved
// is the tournament's current count of APPROVED registrations and must have
// been read under the same lock as the write that follows.
func CheckTransition(reg *models.Registration, t *models.Tournament, actor Actor, to models.RegistrationStatus, approved int64) error {
	if !to.Valid() {
		return validationf("invalid registration status %q", to)
	}

	// A disallowed edge is a conflict for every caller, so it is checked
	// before who is asking.
	if !CanTransition(reg.Status, to) {
		return conflictf("cannot change registration from %s to %s", reg.Status, to)
	}

	switch to {
	case models.RegistrationApproved, models.RegistrationRejected:
		if !actor.Manages(t) {
			return forbidden("only the tournament organizer or an admin can review registrations")
		}
	case models.RegistrationCancelled:
		if actor.UserID != reg.UserID {
			return forbidden("only the registrant can cancel a registration")
		}
	}

	if to == models.RegistrationApproved && !t.HasCapacityFor(approved) {
		return &ConflictError{
			Message: fmt.Sprintf("%s: %d of %d places approved", ErrCapacityReached, approved, *t.MaxParticipants),
			Err:     ErrCapacityReached,
		}
	}
	return nil
}

// CheckNewRegistration decides whether actor may register userID for t.
// active is the number of non-cancelled registrations userID already holds
// for t.
func CheckNewRegistration(t *models.Tournament, actor Actor, userID string, active int64) error {
	if userID != actor.UserID && !actor.IsAdmin() {
		return forbidden("you can only register yourself")
	}
	if !t.AcceptsRegistrations() {
		return conflictf("tournament is %s and not open for registration", t.Status)
	}
	if active > 0 {
		return conflictf("user already has an active registration for this tournament")
	}
	return nil
}

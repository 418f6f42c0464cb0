package services

import "tournament-dashboard/models"

// Actor is the authenticated user performing an operation. Role always comes
// from the users table, never from the request.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Manages reports whether the actor may administer t: its organizer (while
// still holding an organizing role) or any admin.
func (a Actor) Manages(t *models.Tournament) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role.CanOrganize() && t.OrganizerID == a.UserID
}

// SeesEverything reports whether listings should skip the own-records filter.
func (a Actor) SeesEverything() bool {
	return a.Role.CanOrganize()
}

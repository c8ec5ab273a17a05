package types

import "github.com/google/uuid"

// Actor identifies who performed an operation. It is either a staff member
// (id + role) or an automated subsystem (overdue sweep, seeders). Modeled as a
// tagged value instead of a nullable user reference so audit consumers never
// need null checks.
type Actor struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Role      string     `json:"role,omitempty"`
	Subsystem string     `json:"subsystem,omitempty"`
}

// HumanActor builds an actor for an authenticated staff member.
func HumanActor(userID uuid.UUID, role string) Actor {
	return Actor{UserID: &userID, Role: role}
}

// SystemActor builds an actor for an automated subsystem.
func SystemActor(subsystem string) Actor {
	return Actor{Subsystem: subsystem}
}

func (a Actor) IsSystem() bool {
	return a.UserID == nil
}

// AuditRole is the denormalized role stored on audit rows. System actors are
// tagged with their subsystem name so "who did it" is always answerable.
func (a Actor) AuditRole() string {
	if a.IsSystem() {
		return "SYSTEM/" + a.Subsystem
	}
	return a.Role
}

// RequestContext carries request metadata into audit rows. Optional; zero
// value means a non-HTTP origin.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

package model

import "time"

// ParticipantID uniquely identifies a participant across the system
type ParticipantID int64

// Role determines which messaging policy branch applies to a participant
type Role string

const (
	RolePlayer   Role = "PLAYER"
	RoleOfficial Role = "OFFICIAL"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleOfficial
}

// Participant represents a messaging identity.
// The role is fixed at creation; role changes are out of scope.
type Participant struct {
	ID        ParticipantID
	Username  string
	Role      Role
	CreatedAt time.Time
}

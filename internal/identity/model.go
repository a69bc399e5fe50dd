package identity

import "time"

// Student represents a registered account.
type Student struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    []byte
	DateOfBirth     time.Time
	Gender          string
	Mobile          string
	AdmissionNumber string
	CreatedAt       time.Time
}

// Redact returns a copy safe to hand back to callers: the password hash is
// never serialized outward.
func (s Student) Redact() Student {
	s.PasswordHash = nil
	return s
}

// Registration carries the fields required to create an account. Email is
// the only optional field; accounts without one are reachable solely through
// their admission number.
type Registration struct {
	Name            string
	Email           string
	Password        string
	DateOfBirth     time.Time
	Gender          string
	Mobile          string
	AdmissionNumber string
}

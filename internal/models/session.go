package models

import "time"

// SubjectType distinguishes user sessions from admin sessions
type SubjectType string

const (
	SubjectUser  SubjectType = "user"
	SubjectAdmin SubjectType = "admin"
)

// Session is a server-side session row backing the connect.sid cookie.
// Expiry slides forward on every authenticated request.
type Session struct {
	ID          string      `json:"id" db:"id"`
	SubjectType SubjectType `json:"subject_type" db:"subject_type"`
	SubjectID   int64       `json:"subject_id" db:"subject_id"`
	DeviceType  *string     `json:"device_type,omitempty" db:"device_type"`
	OS          *string     `json:"os,omitempty" db:"os"`
	Browser     *string     `json:"browser,omitempty" db:"browser"`
	IPAddress   *string     `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt   time.Time   `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the session is past its expiry
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

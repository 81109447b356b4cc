package models

import (
	"errors"
	"time"
)

// ApplicationStatus is the business application review state
type ApplicationStatus int

const (
	ApplicationDenied   ApplicationStatus = -1
	ApplicationPending  ApplicationStatus = 0
	ApplicationApproved ApplicationStatus = 1
)

// ErrApplicationNotPending is returned when a reviewed application is
// reviewed again. Only pending applications accept a status change.
var ErrApplicationNotPending = errors.New("application has already been reviewed")

// Valid reports whether s is one of the known review states
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationDenied, ApplicationPending, ApplicationApproved:
		return true
	}
	return false
}

// Label returns the human-readable review state
func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationApproved:
		return "Approved"
	case ApplicationDenied:
		return "Denied"
	default:
		return "Pending"
	}
}

// BusinessApplication is a prospective owner's request for a storefront.
// ApplicationID is the public 6-digit identifier; ID is the row key.
type BusinessApplication struct {
	ID            int64             `json:"id" db:"id"`
	ApplicationID int               `json:"application_id" db:"application_id"`
	UserID        int64             `json:"user_id" db:"user_id"`
	FirstName     string            `json:"firstName" db:"first_name"`
	LastName      string            `json:"lastName" db:"last_name"`
	BusinessName  string            `json:"businessName" db:"business_name"`
	Territory     string            `json:"businessTerritory" db:"territory"`
	Certificate   string            `json:"businessCertificate" db:"certificate"`
	Scope         string            `json:"businessScope" db:"scope"`
	BusinessType  string            `json:"businessType" db:"business_type"`
	Category      StringList        `json:"category" db:"category"`
	Location      string            `json:"location" db:"location"`
	PinLocation   PinLocation       `json:"pin_location" db:"pin_location"`
	Status        ApplicationStatus `json:"status" db:"status"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// SubmitApplicationRequest is the application submission payload
type SubmitApplicationRequest struct {
	FirstName    string      `json:"firstName" binding:"required"`
	LastName     string      `json:"lastName" binding:"required"`
	BusinessName string      `json:"businessName" binding:"required"`
	Territory    string      `json:"businessTerritory" binding:"required"`
	Certificate  string      `json:"businessCertificate" binding:"required"`
	Scope        string      `json:"businessScope" binding:"required"`
	BusinessType string      `json:"businessType" binding:"required"`
	Category     StringList  `json:"category" binding:"required"`
	Location     string      `json:"location" binding:"required"`
	PinLocation  PinLocation `json:"pin_location"`
}

// UpdateApplicationStatusRequest carries the review decision
type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status"`
}

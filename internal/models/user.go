package models

import (
	"time"
)

// User represents a registered account. PasswordHash is nil for accounts
// created through Google sign-in only.
type User struct {
	ID           int64      `json:"user_id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	GoogleID     *string    `json:"-" db:"google_id"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Phone        string     `json:"phone" db:"phone"`
	ProfileImage *string    `json:"profile_image,omitempty" db:"profile_image"`
	ResetToken   *string    `json:"-" db:"reset_token"`
	ResetExpiry  *time.Time `json:"-" db:"reset_expiry"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// PublicView returns the fields safe to echo back to clients
func (u *User) PublicView() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"email":    u.Email,
	}
}

// SignupRequest represents the signup payload
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest accepts a username or an email in the identifier field
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries either the ID token issued by Google
// Sign-In (native clients) or an authorization code to exchange for
// one (web redirect flow). Exactly one must be present.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
	Code    string `json:"code"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateProfileRequest represents profile mutation fields
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Admin represents an administrator account. Admins are provisioned
// directly in the database, never through signup.
type Admin struct {
	ID           int64     `json:"admin_id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

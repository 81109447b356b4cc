package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// SessionRepository handles the database-backed session store behind the
// connect.sid cookie
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, subject_type, subject_id, device_type, os, browser, ip_address,
	expires_at, created_at, updated_at`

// Create inserts a new session row
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (id, subject_type, subject_id, device_type, os, browser, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		query,
		session.ID, session.SubjectType, session.SubjectID,
		session.DeviceType, session.OS, session.Browser, session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves an unexpired session
func (r *SessionRepository) GetByID(sessionID string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND expires_at > NOW()`

	session := &models.Session{}
	var deviceType, os, browser, ipAddress sql.NullString

	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.SubjectType, &session.SubjectID,
		&deviceType, &os, &browser, &ipAddress,
		&session.ExpiresAt, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if deviceType.Valid {
		session.DeviceType = &deviceType.String
	}
	if os.Valid {
		session.OS = &os.String
	}
	if browser.Valid {
		session.Browser = &browser.String
	}
	if ipAddress.Valid {
		session.IPAddress = &ipAddress.String
	}

	return session, nil
}

// Touch slides the expiry forward, implementing the 24-hour rolling TTL
func (r *SessionRepository) Touch(sessionID string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Exec(query, expiresAt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a session (logout)
func (r *SessionRepository) Delete(sessionID string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireRowsAffected(result)
}

// DeleteBySubject removes every session for a subject (cascade delete,
// password reset)
func (r *SessionRepository) DeleteBySubject(subjectType models.SubjectType, subjectID int64) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE subject_type = $1 AND subject_id = $2`, subjectType, subjectID)
	if err != nil {
		return fmt.Errorf("failed to delete subject sessions: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions past their expiry, returning the count
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

package database

import (
	"database/sql"
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// AdminRepository handles the administrators table. Admin accounts are
// provisioned out of band; there is no admin signup path.
type AdminRepository struct {
	db DB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByUsername retrieves an admin by username
func (r *AdminRepository) GetByUsername(username string) (*models.Admin, error) {
	query := `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`

	admin := &models.Admin{}
	err := r.db.QueryRow(query, username).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}
	return admin, nil
}

// GetByID retrieves an admin by primary key
func (r *AdminRepository) GetByID(adminID int64) (*models.Admin, error) {
	query := `SELECT id, username, password_hash, created_at FROM admins WHERE id = $1`

	admin := &models.Admin{}
	err := r.db.QueryRow(query, adminID).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}
	return admin, nil
}

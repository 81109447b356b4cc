package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, google_id, first_name, last_name,
	phone, profile_image, reset_token, reset_expiry, created_at, updated_at`

// Create inserts a password-based account
func (r *UserRepository) Create(username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := r.scanUser(r.db.QueryRow(query, username, email, passwordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateGoogleUser inserts an OAuth-only account with no password hash
func (r *UserRepository) CreateGoogleUser(username, email, googleID string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, google_id)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := r.scanUser(r.db.QueryRow(query, username, email, googleID))
	if err != nil {
		return nil, fmt.Errorf("failed to create google user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by primary key
func (r *UserRepository) GetByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// GetByIdentifier retrieves a user by username or email
func (r *UserRepository) GetByIdentifier(identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`

	user, err := r.scanUser(r.db.QueryRow(query, identifier))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// GetByGoogleID retrieves a user by Google subject id
func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`

	user, err := r.scanUser(r.db.QueryRow(query, googleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// UsernameExists reports whether the username is taken
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = $1`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// SetResetToken stores a password reset token and its expiry on the row
func (r *UserRepository) SetResetToken(userID int64, token string, expiry time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_expiry = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.db.Exec(query, token, expiry, userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return requireRowsAffected(result)
}

// GetByValidResetToken retrieves the user holding an unexpired token
func (r *UserRepository) GetByValidResetToken(token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1 AND reset_expiry > NOW()`

	user, err := r.scanUser(r.db.QueryRow(query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by reset token: %w", err)
	}
	return user, nil
}

// ResetPassword rehashes the password and clears the token in one update
func (r *UserRepository) ResetPassword(userID int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_expiry = NULL, updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.Exec(query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return requireRowsAffected(result)
}

// ClearExpiredResetTokens removes tokens past their expiry
func (r *UserRepository) ClearExpiredResetTokens() (int64, error) {
	query := `
		UPDATE users
		SET reset_token = NULL, reset_expiry = NULL
		WHERE reset_token IS NOT NULL AND reset_expiry <= NOW()`

	result, err := r.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return result.RowsAffected()
}

// UpdateProfile updates mutable profile fields
func (r *UserRepository) UpdateProfile(userID int64, firstName, lastName, phone string) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, updated_at = NOW()
		WHERE id = $4`

	result, err := r.db.Exec(query, firstName, lastName, phone, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRowsAffected(result)
}

// UpdateProfileImage stores the uploaded profile image path
func (r *UserRepository) UpdateProfileImage(userID int64, path string) error {
	query := `UPDATE users SET profile_image = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Exec(query, path, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile image: %w", err)
	}
	return requireRowsAffected(result)
}

// List returns users for the admin dashboard
func (r *UserRepository) List(limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Count returns the number of registered users
func (r *UserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// DeleteCascade removes a user together with their applications,
// businesses, products and deals in one transaction. Bookings are kept
// for the business side's records.
func (r *UserRepository) DeleteCascade(userID int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM deals WHERE user_id = $1`,
		`DELETE FROM products WHERE user_id = $1`,
		`DELETE FROM businesses WHERE user_id = $1`,
		`DELETE FROM business_applications WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, userID); err != nil {
			return fmt.Errorf("failed to cascade delete user data: %w", err)
		}
	}

	result, err := tx.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// scanUser scans a single user row
func (r *UserRepository) scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var passwordHash, googleID, profileImage, resetToken sql.NullString
	var resetExpiry sql.NullTime

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &passwordHash, &googleID,
		&user.FirstName, &user.LastName, &user.Phone, &profileImage,
		&resetToken, &resetExpiry, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if googleID.Valid {
		user.GoogleID = &googleID.String
	}
	if profileImage.Valid {
		user.ProfileImage = &profileImage.String
	}
	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpiry.Valid {
		user.ResetExpiry = &resetExpiry.Time
	}

	return user, nil
}

// requireRowsAffected maps zero affected rows to ErrNotFound
func requireRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

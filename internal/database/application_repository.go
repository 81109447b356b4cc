package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// ErrDuplicateApplicationID is returned when an insert loses the race
// for a generated application id. The unique constraint turns the
// check-then-insert race into a retryable error.
var ErrDuplicateApplicationID = errors.New("application id already taken")

// ApplicationRepository handles database operations for business
// applications and the approval workflow
type ApplicationRepository struct {
	db DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, application_id, user_id, first_name, last_name, business_name,
	territory, certificate, scope, business_type, category, location, pin_location,
	status, created_at, updated_at`

// ApplicationIDExists reports whether the 6-digit id is already in use
func (r *ApplicationRepository) ApplicationIDExists(applicationID int) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM business_applications WHERE application_id = $1`, applicationID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check application id: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new pending application. A unique-violation on the
// application id surfaces as ErrDuplicateApplicationID so the caller can
// redraw.
func (r *ApplicationRepository) Create(app *models.BusinessApplication) error {
	query := `
		INSERT INTO business_applications (
			application_id, user_id, first_name, last_name, business_name,
			territory, certificate, scope, business_type, category, location, pin_location, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		query,
		app.ApplicationID, app.UserID, app.FirstName, app.LastName, app.BusinessName,
		app.Territory, app.Certificate, app.Scope, app.BusinessType,
		app.Category, app.Location, app.PinLocation, models.ApplicationPending,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateApplicationID
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	app.Status = models.ApplicationPending
	return nil
}

// GetByApplicationID retrieves an application by its public 6-digit id
func (r *ApplicationRepository) GetByApplicationID(applicationID int) (*models.BusinessApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM business_applications WHERE application_id = $1`

	app, err := r.scanApplication(r.db.QueryRow(query, applicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}
	return app, nil
}

// ListByUser retrieves a user's applications, newest first
func (r *ApplicationRepository) ListByUser(userID int64) ([]models.BusinessApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM business_applications WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listApplications(query, userID)
}

// ListAll retrieves every application for the admin review queue
func (r *ApplicationRepository) ListAll() ([]models.BusinessApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM business_applications ORDER BY created_at DESC`
	return r.listApplications(query)
}

// ListPending retrieves applications awaiting review
func (r *ApplicationRepository) ListPending() ([]models.BusinessApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM business_applications WHERE status = $1 ORDER BY created_at`
	return r.listApplications(query, models.ApplicationPending)
}

// Review moves a pending application to approved or denied. Approval
// also materializes the Business row; the status update and the insert
// commit or roll back together.
func (r *ApplicationRepository) Review(applicationID int, status models.ApplicationStatus) (*models.Business, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + applicationColumns + ` FROM business_applications WHERE application_id = $1 FOR UPDATE`
	app, err := r.scanApplication(tx.QueryRow(query, applicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	if app.Status != models.ApplicationPending {
		return nil, models.ErrApplicationNotPending
	}

	_, err = tx.Exec(
		`UPDATE business_applications SET status = $1, updated_at = NOW() WHERE application_id = $2`,
		status, applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	var business *models.Business
	if status == models.ApplicationApproved {
		business = models.NewBusinessFromApplication(app)
		if err := insertBusiness(tx, business); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}
	return business, nil
}

// insertBusiness creates the storefront row inside the review transaction
func insertBusiness(tx *sqlx.Tx, business *models.Business) error {
	query := `
		INSERT INTO businesses (
			user_id, application_id, name, business_type, category,
			location, pin_location, card, hero_images, about_us,
			facilities, policies, contact_info, opening_hours
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err := tx.QueryRow(
		query,
		business.UserID, business.ApplicationID, business.Name, business.BusinessType,
		business.Category, business.Location, business.PinLocation, business.Card,
		business.HeroImages, business.AboutUs, business.Facilities, business.Policies,
		business.ContactInfo, business.OpeningHours,
	).Scan(&business.ID, &business.CreatedAt, &business.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

// scanApplication scans a single application row
func (r *ApplicationRepository) scanApplication(row scanner) (*models.BusinessApplication, error) {
	app := &models.BusinessApplication{}
	err := row.Scan(
		&app.ID, &app.ApplicationID, &app.UserID, &app.FirstName, &app.LastName,
		&app.BusinessName, &app.Territory, &app.Certificate, &app.Scope,
		&app.BusinessType, &app.Category, &app.Location, &app.PinLocation,
		&app.Status, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) listApplications(query string, args ...interface{}) ([]models.BusinessApplication, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []models.BusinessApplication{}
	for rows.Next() {
		app, err := r.scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505)
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

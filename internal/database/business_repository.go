package database

import (
	"database/sql"
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// BusinessRepository handles database operations for approved storefronts
type BusinessRepository struct {
	db DB
}

// NewBusinessRepository creates a new BusinessRepository
func NewBusinessRepository(db DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

const businessColumns = `id, user_id, application_id, name, business_type, category,
	location, pin_location, logo_path, card, hero_images, about_us,
	facilities, policies, contact_info, opening_hours, created_at, updated_at`

// GetByID retrieves a business by primary key
func (r *BusinessRepository) GetByID(businessID int64) (*models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	business, err := r.scanBusiness(r.db.QueryRow(query, businessID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch business: %w", err)
	}
	return business, nil
}

// ListByUser retrieves the businesses owned by a user
func (r *BusinessRepository) ListByUser(userID int64) ([]models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listBusinesses(query, userID)
}

// ListAll retrieves every storefront for the public browse surface
func (r *BusinessRepository) ListAll() ([]models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses ORDER BY created_at DESC`
	return r.listBusinesses(query)
}

// OwnedBy reports whether the business belongs to the user
func (r *BusinessRepository) OwnedBy(businessID, userID int64) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM businesses WHERE id = $1 AND user_id = $2`, businessID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check business ownership: %w", err)
	}
	return count > 0, nil
}

// UpdateCard replaces the listing-preview card
func (r *BusinessRepository) UpdateCard(businessID, userID int64, card models.BusinessCard) error {
	return r.ownedUpdate(`UPDATE businesses SET card = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		card, businessID, userID)
}

// UpdateAboutUs replaces the free-text about section
func (r *BusinessRepository) UpdateAboutUs(businessID, userID int64, aboutUs string) error {
	return r.ownedUpdate(`UPDATE businesses SET about_us = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		aboutUs, businessID, userID)
}

// UpdateLogo stores the uploaded logo path
func (r *BusinessRepository) UpdateLogo(businessID, userID int64, logoPath string) error {
	return r.ownedUpdate(`UPDATE businesses SET logo_path = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		logoPath, businessID, userID)
}

// UpdateHeroImages replaces the cover photo set
func (r *BusinessRepository) UpdateHeroImages(businessID, userID int64, images models.HeroImageList) error {
	return r.ownedUpdate(`UPDATE businesses SET hero_images = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		images, businessID, userID)
}

// UpdateFacilities replaces the facilities list
func (r *BusinessRepository) UpdateFacilities(businessID, userID int64, facilities models.FacilityList) error {
	return r.ownedUpdate(`UPDATE businesses SET facilities = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		facilities, businessID, userID)
}

// UpdatePolicies replaces the policies list
func (r *BusinessRepository) UpdatePolicies(businessID, userID int64, policies models.PolicyList) error {
	return r.ownedUpdate(`UPDATE businesses SET policies = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		policies, businessID, userID)
}

// UpdateContactInfo replaces the contact channels
func (r *BusinessRepository) UpdateContactInfo(businessID, userID int64, contact models.ContactFieldList) error {
	return r.ownedUpdate(`UPDATE businesses SET contact_info = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		contact, businessID, userID)
}

// UpdateOpeningHours replaces the weekly hours
func (r *BusinessRepository) UpdateOpeningHours(businessID, userID int64, hours models.OpeningHourList) error {
	return r.ownedUpdate(`UPDATE businesses SET opening_hours = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		hours, businessID, userID)
}

func (r *BusinessRepository) ownedUpdate(query string, value interface{}, businessID, userID int64) error {
	result, err := r.db.Exec(query, value, businessID, userID)
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}
	return requireRowsAffected(result)
}

// scanBusiness scans a single business row
func (r *BusinessRepository) scanBusiness(row scanner) (*models.Business, error) {
	business := &models.Business{}
	var logoPath sql.NullString

	err := row.Scan(
		&business.ID, &business.UserID, &business.ApplicationID, &business.Name,
		&business.BusinessType, &business.Category, &business.Location,
		&business.PinLocation, &logoPath, &business.Card, &business.HeroImages,
		&business.AboutUs, &business.Facilities, &business.Policies,
		&business.ContactInfo, &business.OpeningHours,
		&business.CreatedAt, &business.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if logoPath.Valid {
		business.LogoPath = &logoPath.String
	}
	return business, nil
}

func (r *BusinessRepository) listBusinesses(query string, args ...interface{}) ([]models.Business, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	businesses := []models.Business{}
	for rows.Next() {
		business, err := r.scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *business)
	}
	return businesses, rows.Err()
}

package database

import (
	"database/sql"
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// DealRepository handles database operations for product deals
type DealRepository struct {
	db DB
}

// NewDealRepository creates a new DealRepository
func NewDealRepository(db DB) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = `id, product_id, user_id, category, discount, expiration, created_at`

// Create inserts a new deal
func (r *DealRepository) Create(deal *models.Deal) error {
	query := `
		INSERT INTO deals (product_id, user_id, category, discount, expiration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		query,
		deal.ProductID, deal.UserID, deal.Category, deal.Discount, deal.Expiration,
	).Scan(&deal.ID, &deal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

// GetByID retrieves a deal by primary key
func (r *DealRepository) GetByID(dealID int64) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	deal := &models.Deal{}
	err := r.db.QueryRow(query, dealID).Scan(
		&deal.ID, &deal.ProductID, &deal.UserID, &deal.Category,
		&deal.Discount, &deal.Expiration, &deal.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	return deal, nil
}

// ListByUser retrieves an owner's deals
func (r *DealRepository) ListByUser(userID int64) ([]models.Deal, error) {
	return r.listDeals(`SELECT `+dealColumns+` FROM deals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListActive retrieves unexpired deals for the public browse surface
func (r *DealRepository) ListActive() ([]models.Deal, error) {
	return r.listDeals(`SELECT ` + dealColumns + ` FROM deals WHERE expiration > NOW() ORDER BY expiration`)
}

// Delete removes a deal, scoped to the owner
func (r *DealRepository) Delete(dealID, userID int64) error {
	result, err := r.db.Exec(`DELETE FROM deals WHERE id = $1 AND user_id = $2`, dealID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	return requireRowsAffected(result)
}

// DeleteExpired purges deals past their expiration, returning the count
func (r *DealRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM deals WHERE expiration <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired deals: %w", err)
	}
	return result.RowsAffected()
}

func (r *DealRepository) listDeals(query string, args ...interface{}) ([]models.Deal, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	deals := []models.Deal{}
	for rows.Next() {
		var deal models.Deal
		err := rows.Scan(
			&deal.ID, &deal.ProductID, &deal.UserID, &deal.Category,
			&deal.Discount, &deal.Expiration, &deal.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

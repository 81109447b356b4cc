package database

import (
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// RatingRepository handles the append-only product ratings table
type RatingRepository struct {
	db DB
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(db DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create appends a rating. Ratings are never updated or deleted.
func (r *RatingRepository) Create(rating *models.ProductRating) error {
	query := `
		INSERT INTO product_ratings (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		query,
		rating.ProductID, rating.UserID, rating.Rating, rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// ListByProduct retrieves a product's ratings, newest first
func (r *RatingRepository) ListByProduct(productID int64) ([]models.ProductRating, error) {
	query := `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM product_ratings
		WHERE product_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	ratings := []models.ProductRating{}
	for rows.Next() {
		var rating models.ProductRating
		err := rows.Scan(
			&rating.ID, &rating.ProductID, &rating.UserID,
			&rating.Rating, &rating.Comment, &rating.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// AverageForProduct computes the running average and count at read time
func (r *RatingRepository) AverageForProduct(productID int64) (float64, int64, error) {
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM product_ratings WHERE product_id = $1`

	var average float64
	var count int64
	if err := r.db.QueryRow(query, productID).Scan(&average, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return average, count, nil
}

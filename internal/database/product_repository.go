package database

import (
	"database/sql"
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// ProductRepository handles database operations for products
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, business_id, user_id, category, product_type, name, price,
	pricing_unit, booking_operation, inclusions, terms, images, created_at, updated_at`

// Create inserts a new product
func (r *ProductRepository) Create(product *models.Product) error {
	query := `
		INSERT INTO products (
			business_id, user_id, category, product_type, name, price,
			pricing_unit, booking_operation, inclusions, terms, images
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		query,
		product.BusinessID, product.UserID, product.Category, product.ProductType,
		product.Name, product.Price, product.PricingUnit, product.BookingOperation,
		product.Inclusions, product.Terms, product.Images,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by primary key
func (r *ProductRepository) GetByID(productID int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := r.scanProduct(r.db.QueryRow(query, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return product, nil
}

// ListByBusiness retrieves a business's products
func (r *ProductRepository) ListByBusiness(businessID int64) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 ORDER BY created_at DESC`
	return r.listProducts(query, businessID)
}

// ListByCategory retrieves products for a browse category
func (r *ProductRepository) ListByCategory(category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC`
	return r.listProducts(query, category)
}

// Update rewrites the mutable product fields, scoped to the owner
func (r *ProductRepository) Update(product *models.Product) error {
	query := `
		UPDATE products
		SET category = $1, product_type = $2, name = $3, price = $4, pricing_unit = $5,
			booking_operation = $6, inclusions = $7, terms = $8, images = $9, updated_at = NOW()
		WHERE id = $10 AND user_id = $11`

	result, err := r.db.Exec(
		query,
		product.Category, product.ProductType, product.Name, product.Price,
		product.PricingUnit, product.BookingOperation, product.Inclusions,
		product.Terms, product.Images, product.ID, product.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a product, returning the stored image list so the
// caller can unlink the files from disk
func (r *ProductRepository) Delete(productID, userID int64) (models.ProductImageList, error) {
	query := `DELETE FROM products WHERE id = $1 AND user_id = $2 RETURNING images`

	var images models.ProductImageList
	err := r.db.QueryRow(query, productID, userID).Scan(&images)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return images, nil
}

// scanProduct scans a single product row
func (r *ProductRepository) scanProduct(row scanner) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID, &product.BusinessID, &product.UserID, &product.Category,
		&product.ProductType, &product.Name, &product.Price, &product.PricingUnit,
		&product.BookingOperation, &product.Inclusions, &product.Terms,
		&product.Images, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) listProducts(query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

package database

import (
	"database/sql"
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/models"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, business_id, product_id, customer_name, product_name,
	guest_count, email, phone, booking_type, date_in, date_out, special_requests,
	original_price, discount, discounted_price, status, created_at, updated_at`

// Create inserts a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			user_id, business_id, product_id, customer_name, product_name,
			guest_count, email, phone, booking_type, date_in, date_out,
			special_requests, original_price, discount, discounted_price, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		query,
		booking.UserID, booking.BusinessID, booking.ProductID, booking.CustomerName,
		booking.ProductName, booking.GuestCount, booking.Email, booking.Phone,
		booking.BookingType, booking.DateIn, booking.DateOut, booking.SpecialRequests,
		booking.OriginalPrice, booking.Discount, booking.DiscountedPrice, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by primary key
func (r *BookingRepository) GetByID(bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(query, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return booking, nil
}

// ListByUser retrieves a customer's bookings, newest first
func (r *BookingRepository) ListByUser(userID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listBookings(query, userID)
}

// ListByBusiness retrieves a storefront's bookings, newest first
func (r *BookingRepository) ListByBusiness(businessID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE business_id = $1 ORDER BY created_at DESC`
	return r.listBookings(query, businessID)
}

// TransitionStatus performs an owner-scoped status change as one atomic
// update. Qualifying on the expected current status gives optimistic
// concurrency control: a concurrent transition leaves zero rows and the
// caller sees ErrNotFound.
func (r *BookingRepository) TransitionStatus(bookingID, businessID int64, from, to models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND business_id = $3 AND status = $4`

	result, err := r.db.Exec(query, to, bookingID, businessID, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return requireRowsAffected(result)
}

// CancelByUser sets a customer's own booking to cancelled. Only pending
// and active bookings can be cancelled.
func (r *BookingRepository) CancelByUser(bookingID, userID int64) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status IN ($4, $5)`

	result, err := r.db.Exec(query, models.BookingCancelled, bookingID, userID,
		models.BookingPending, models.BookingActive)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	return requireRowsAffected(result)
}

// scanBooking scans a single booking row
func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var dateOut sql.NullTime

	err := row.Scan(
		&booking.ID, &booking.UserID, &booking.BusinessID, &booking.ProductID,
		&booking.CustomerName, &booking.ProductName, &booking.GuestCount,
		&booking.Email, &booking.Phone, &booking.BookingType,
		&booking.DateIn, &dateOut, &booking.SpecialRequests,
		&booking.OriginalPrice, &booking.Discount, &booking.DiscountedPrice,
		&booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dateOut.Valid {
		booking.DateOut = &dateOut.Time
	}
	return booking, nil
}

func (r *BookingRepository) listBookings(query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

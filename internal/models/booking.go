package models

import (
	"errors"
	"fmt"
	"time"
)

// BookingStatus is the booking lifecycle state, stored as an integer
type BookingStatus int

const (
	BookingPending   BookingStatus = 0
	BookingActive    BookingStatus = 1
	BookingCompleted BookingStatus = 2
	BookingCancelled BookingStatus = 3
)

// ErrIllegalTransition is returned when a requested status change is not
// in the transition table
var ErrIllegalTransition = errors.New("illegal booking status transition")

// bookingTransitions enumerates the legal forward moves. Completed and
// cancelled are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending: {BookingActive, BookingCancelled},
	BookingActive:  {BookingCompleted, BookingCancelled},
}

// Valid reports whether s is a known lifecycle state
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Label maps the stored integer to the client-facing string
func (s BookingStatus) Label() string {
	switch s {
	case BookingActive:
		return "Active"
	case BookingCompleted:
		return "Completed"
	case BookingCancelled:
		return "Cancelled"
	default:
		return "Pending"
	}
}

// CanTransitionTo reports whether target is legal from s
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Booking is a reservation against a product. UserID is zero for
// walk-ins entered by the business owner.
type Booking struct {
	ID              int64         `json:"booking_id" db:"id"`
	UserID          int64         `json:"user_id" db:"user_id"`
	BusinessID      int64         `json:"business_id" db:"business_id"`
	ProductID       int64         `json:"product_id" db:"product_id"`
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	ProductName     string        `json:"product_name" db:"product_name"`
	GuestCount      int           `json:"guest_count" db:"guest_count"`
	Email           string        `json:"email" db:"email"`
	Phone           string        `json:"phone" db:"phone"`
	BookingType     string        `json:"type" db:"booking_type"`
	DateIn          time.Time     `json:"dateIn" db:"date_in"`
	DateOut         *time.Time    `json:"dateOut,omitempty" db:"date_out"`
	SpecialRequests string        `json:"specialRequests" db:"special_requests"`
	OriginalPrice   float64       `json:"originalPrice" db:"original_price"`
	Discount        float64       `json:"discount" db:"discount"`
	DiscountedPrice float64       `json:"discountedPrice" db:"discounted_price"`
	Status          BookingStatus `json:"status" db:"status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// StatusLabel returns the client-facing status string
func (b *Booking) StatusLabel() string {
	return b.Status.Label()
}

// bookingPricing is the shared pricing block on all creation payloads
type bookingPricing struct {
	OriginalPrice   *float64 `json:"originalPrice"`
	Discount        *float64 `json:"discount"`
	DiscountedPrice *float64 `json:"discountedPrice"`
}

// BookAccommodationRequest creates a stay booking. DateOut may be open
// ended.
type BookAccommodationRequest struct {
	bookingPricing
	BusinessID      int64   `json:"business_id" binding:"required"`
	ProductID       int64   `json:"product_id" binding:"required"`
	ProductName     string  `json:"product_name"`
	FirstName       string  `json:"firstName" binding:"required"`
	LastName        string  `json:"lastName" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Phone           string  `json:"phone"`
	GuestCount      int     `json:"guest_count"`
	DateIn          string  `json:"dateIn" binding:"required"` // YYYY-MM-DD
	DateOut         *string `json:"dateOut"`                   // YYYY-MM-DD, nullable
	SpecialRequests string  `json:"specialRequests"`
}

// BookTableRequest creates a restaurant reservation at one instant
type BookTableRequest struct {
	bookingPricing
	BusinessID      int64  `json:"business_id" binding:"required"`
	ProductID       int64  `json:"product_id" binding:"required"`
	ProductName     string `json:"product_name"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone"`
	GuestCount      int    `json:"guest_count"`
	ReservationDate string `json:"reservationDate" binding:"required"` // YYYY-MM-DD
	ReservationTime string `json:"reservationTime" binding:"required"` // HH:MM
	SpecialRequests string `json:"specialRequests"`
}

// BookActivityRequest creates an activity visit booking
type BookActivityRequest struct {
	bookingPricing
	BusinessID      int64  `json:"business_id" binding:"required"`
	ProductID       int64  `json:"product_id" binding:"required"`
	ProductName     string `json:"product_name"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone"`
	GuestCount      int    `json:"guest_count"`
	ActivityType    string `json:"activityType" binding:"required"`
	VisitDate       string `json:"visitDate" binding:"required"` // YYYY-MM-DD
	VisitTime       string `json:"visitTime" binding:"required"` // HH:MM
	SpecialRequests string `json:"specialRequests"`
}

const (
	bookingDateLayout     = "2006-01-02"
	bookingDateTimeLayout = "2006-01-02 15:04"
)

func parseBookingDate(value string) (time.Time, error) {
	t, err := time.Parse(bookingDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func combineDateTime(date, timeOfDay string) (time.Time, error) {
	t, err := time.Parse(bookingDateTimeLayout, date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, timeOfDay, err)
	}
	return t, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// ToBooking normalizes an accommodation request. The discounted price
// falls back to the original price when absent.
func (r *BookAccommodationRequest) ToBooking() (*Booking, error) {
	dateIn, err := parseBookingDate(r.DateIn)
	if err != nil {
		return nil, err
	}
	var dateOut *time.Time
	if r.DateOut != nil && *r.DateOut != "" {
		out, err := parseBookingDate(*r.DateOut)
		if err != nil {
			return nil, err
		}
		dateOut = &out
	}

	booking := r.baseBooking("accommodation")
	booking.DateIn = dateIn
	booking.DateOut = dateOut
	if r.DiscountedPrice == nil {
		booking.DiscountedPrice = booking.OriginalPrice
	}
	return booking, nil
}

// ToBooking normalizes a table reservation into a single instant.
// Pricing falls through discountedPrice, then originalPrice, then zero.
func (r *BookTableRequest) ToBooking() (*Booking, error) {
	instant, err := combineDateTime(r.ReservationDate, r.ReservationTime)
	if err != nil {
		return nil, err
	}

	booking := r.baseBooking("table")
	booking.DateIn = instant
	if r.DiscountedPrice == nil {
		if r.OriginalPrice != nil {
			booking.DiscountedPrice = *r.OriginalPrice
		} else {
			booking.DiscountedPrice = 0
		}
	}
	return booking, nil
}

// ToBooking normalizes an activity visit into a single instant. Pricing
// falls through discountedPrice, then originalPrice, then zero.
func (r *BookActivityRequest) ToBooking() (*Booking, error) {
	instant, err := combineDateTime(r.VisitDate, r.VisitTime)
	if err != nil {
		return nil, err
	}

	booking := r.baseBooking(r.ActivityType)
	booking.DateIn = instant
	if r.DiscountedPrice == nil {
		if r.OriginalPrice != nil {
			booking.DiscountedPrice = *r.OriginalPrice
		} else {
			booking.DiscountedPrice = 0
		}
	}
	return booking, nil
}

func (r *BookAccommodationRequest) baseBooking(bookingType string) *Booking {
	return newBaseBooking(r.BusinessID, r.ProductID, r.ProductName, r.FirstName, r.LastName,
		r.Email, r.Phone, r.GuestCount, bookingType, r.SpecialRequests, r.bookingPricing)
}

func (r *BookTableRequest) baseBooking(bookingType string) *Booking {
	return newBaseBooking(r.BusinessID, r.ProductID, r.ProductName, r.FirstName, r.LastName,
		r.Email, r.Phone, r.GuestCount, bookingType, r.SpecialRequests, r.bookingPricing)
}

func (r *BookActivityRequest) baseBooking(bookingType string) *Booking {
	return newBaseBooking(r.BusinessID, r.ProductID, r.ProductName, r.FirstName, r.LastName,
		r.Email, r.Phone, r.GuestCount, bookingType, r.SpecialRequests, r.bookingPricing)
}

func newBaseBooking(businessID, productID int64, productName, firstName, lastName, email, phone string,
	guests int, bookingType, specialRequests string, pricing bookingPricing) *Booking {
	if guests <= 0 {
		guests = 1
	}
	return &Booking{
		BusinessID:      businessID,
		ProductID:       productID,
		ProductName:     productName,
		CustomerName:    firstName + " " + lastName,
		GuestCount:      guests,
		Email:           email,
		Phone:           phone,
		BookingType:     bookingType,
		SpecialRequests: specialRequests,
		OriginalPrice:   deref(pricing.OriginalPrice),
		Discount:        deref(pricing.Discount),
		DiscountedPrice: deref(pricing.DiscountedPrice),
		Status:          BookingPending,
	}
}

// WalkInBookingRequest is entered by the business owner at the venue.
// Walk-ins carry no user account and start out active, not pending.
type WalkInBookingRequest struct {
	bookingPricing
	BusinessID      int64   `json:"business_id" binding:"required"`
	ProductID       int64   `json:"product_id" binding:"required"`
	ProductName     string  `json:"product_name"`
	FirstName       string  `json:"firstName" binding:"required"`
	LastName        string  `json:"lastName" binding:"required"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	GuestCount      int     `json:"guest_count"`
	BookingType     string  `json:"type" binding:"required"`
	DateIn          string  `json:"dateIn" binding:"required"` // YYYY-MM-DD
	DateOut         *string `json:"dateOut"`                   // YYYY-MM-DD, nullable
	SpecialRequests string  `json:"specialRequests"`
}

// ToBooking normalizes a walk-in. The discounted price falls back to
// the original price when absent.
func (r *WalkInBookingRequest) ToBooking() (*Booking, error) {
	dateIn, err := parseBookingDate(r.DateIn)
	if err != nil {
		return nil, err
	}
	var dateOut *time.Time
	if r.DateOut != nil && *r.DateOut != "" {
		out, err := parseBookingDate(*r.DateOut)
		if err != nil {
			return nil, err
		}
		dateOut = &out
	}

	booking := newBaseBooking(r.BusinessID, r.ProductID, r.ProductName, r.FirstName, r.LastName,
		r.Email, r.Phone, r.GuestCount, r.BookingType, r.SpecialRequests, r.bookingPricing)
	booking.DateIn = dateIn
	booking.DateOut = dateOut
	booking.Status = BookingActive
	if r.DiscountedPrice == nil {
		booking.DiscountedPrice = booking.OriginalPrice
	}
	return booking, nil
}

// UpdateBookingStatusRequest carries the owner's target status
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status"`
}

// BookingView is the list item returned by the bookings endpoints, with
// the integer status mapped to its label.
type BookingView struct {
	Booking
	StatusLabel string `json:"status_label"`
}

// NewBookingView wraps a booking with its status label
func NewBookingView(b Booking) BookingView {
	return BookingView{Booking: b, StatusLabel: b.Status.Label()}
}

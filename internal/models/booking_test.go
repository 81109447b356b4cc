package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to active", BookingPending, BookingActive, true},
		{"pending to cancelled", BookingPending, BookingCancelled, true},
		{"pending to completed", BookingPending, BookingCompleted, false},
		{"active to completed", BookingActive, BookingCompleted, true},
		{"active to cancelled", BookingActive, BookingCancelled, true},
		{"active to pending", BookingActive, BookingPending, false},
		{"completed is terminal", BookingCompleted, BookingCancelled, false},
		{"cancelled is terminal", BookingCancelled, BookingActive, false},
		{"cancelled cannot revive", BookingCancelled, BookingPending, false},
		{"no self transition", BookingActive, BookingActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending", BookingPending.Label())
	assert.Equal(t, "Active", BookingActive.Label())
	assert.Equal(t, "Completed", BookingCompleted.Label())
	assert.Equal(t, "Cancelled", BookingCancelled.Label())
}

func TestAccommodationBookingPriceFallback(t *testing.T) {
	base := BookAccommodationRequest{
		BusinessID: 3,
		ProductID:  12,
		FirstName:  "Juan",
		LastName:   "Dela Cruz",
		Email:      "juan@example.com",
		DateIn:     "2026-03-10",
		DateOut:    strPtr("2026-03-12"),
	}

	t.Run("Discounted Price Wins", func(t *testing.T) {
		req := base
		req.OriginalPrice = floatPtr(2500)
		req.Discount = floatPtr(20)
		req.DiscountedPrice = floatPtr(2000)

		booking, err := req.ToBooking()
		require.NoError(t, err)
		assert.Equal(t, 2000.0, booking.DiscountedPrice)
		assert.Equal(t, 2500.0, booking.OriginalPrice)
	})

	t.Run("Falls Back To Original Price", func(t *testing.T) {
		req := base
		req.OriginalPrice = floatPtr(2500)

		booking, err := req.ToBooking()
		require.NoError(t, err)
		assert.Equal(t, 2500.0, booking.DiscountedPrice)
	})

	t.Run("Open Ended Stay", func(t *testing.T) {
		req := base
		req.DateOut = nil

		booking, err := req.ToBooking()
		require.NoError(t, err)
		assert.Nil(t, booking.DateOut)
	})

	t.Run("Defaults", func(t *testing.T) {
		booking, err := base.ToBooking()
		require.NoError(t, err)
		assert.Equal(t, BookingPending, booking.Status)
		assert.Equal(t, 1, booking.GuestCount)
		assert.Equal(t, "Juan Dela Cruz", booking.CustomerName)
		assert.Equal(t, "accommodation", booking.BookingType)
	})

	t.Run("Bad Date", func(t *testing.T) {
		req := base
		req.DateIn = "10-03-2026"

		_, err := req.ToBooking()
		assert.Error(t, err)
	})
}

func TestTableBookingPriceFallback(t *testing.T) {
	base := BookTableRequest{
		BusinessID:      3,
		ProductID:       12,
		FirstName:       "Juan",
		LastName:        "Dela Cruz",
		Email:           "juan@example.com",
		GuestCount:      4,
		ReservationDate: "2026-03-10",
		ReservationTime: "19:30",
	}

	t.Run("Falls Back To Original Price", func(t *testing.T) {
		req := base
		req.OriginalPrice = floatPtr(800)

		booking, err := req.ToBooking()
		require.NoError(t, err)
		assert.Equal(t, 800.0, booking.DiscountedPrice)
	})

	t.Run("Falls Back To Zero", func(t *testing.T) {
		booking, err := base.ToBooking()
		require.NoError(t, err)
		assert.Equal(t, 0.0, booking.DiscountedPrice)
	})

	t.Run("Reservation Instant", func(t *testing.T) {
		booking, err := base.ToBooking()
		require.NoError(t, err)
		want := time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)
		assert.True(t, booking.DateIn.Equal(want))
		assert.Nil(t, booking.DateOut)
		assert.Equal(t, "table", booking.BookingType)
	})
}

func TestActivityBookingType(t *testing.T) {
	req := BookActivityRequest{
		BusinessID:   3,
		ProductID:    12,
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Email:        "juan@example.com",
		ActivityType: "island-hopping",
		VisitDate:    "2026-03-10",
		VisitTime:    "08:00",
	}

	booking, err := req.ToBooking()
	require.NoError(t, err)
	assert.Equal(t, "island-hopping", booking.BookingType)
	assert.Equal(t, 0.0, booking.DiscountedPrice)
	assert.Equal(t, BookingPending, booking.Status)
}

func TestWalkInBookingStartsActive(t *testing.T) {
	req := WalkInBookingRequest{
		BusinessID:  3,
		ProductID:   12,
		FirstName:   "Walk",
		LastName:    "In",
		BookingType: "table",
		DateIn:      "2026-03-10",
	}
	req.OriginalPrice = floatPtr(500)

	booking, err := req.ToBooking()
	require.NoError(t, err)
	assert.Equal(t, BookingActive, booking.Status)
	assert.Equal(t, int64(0), booking.UserID)
	assert.Equal(t, 500.0, booking.DiscountedPrice)
}

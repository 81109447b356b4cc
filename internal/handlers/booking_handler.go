package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// BookingHandler handles booking creation and the lifecycle endpoints
type BookingHandler struct {
	bookings   *database.BookingRepository
	businesses *database.BusinessRepository
	logger     *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *database.BookingRepository, businesses *database.BusinessRepository, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, businesses: businesses, logger: logger}
}

// BookAccommodation handles POST /book-accommodation
func (h *BookingHandler) BookAccommodation(c *gin.Context) {
	var req models.BookAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	booking, err := req.ToBooking()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.createForUser(c, booking)
}

// BookTable handles POST /book-table
func (h *BookingHandler) BookTable(c *gin.Context) {
	var req models.BookTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	booking, err := req.ToBooking()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.createForUser(c, booking)
}

// BookActivity handles POST /book-activity
func (h *BookingHandler) BookActivity(c *gin.Context) {
	var req models.BookActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	booking, err := req.ToBooking()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.createForUser(c, booking)
}

// AddWalkIn handles POST /add-walkin-booking. Only the business owner
// can enter walk-ins; they start active rather than pending.
func (h *BookingHandler) AddWalkIn(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	var req models.WalkInBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	owned, err := h.businesses.OwnedBy(req.BusinessID, sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check business ownership")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to add booking",
		})
		return
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "not_business_owner",
			"message": "You do not own this business",
		})
		return
	}

	booking, err := req.ToBooking()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if err := h.bookings.Create(booking); err != nil {
		h.logger.WithError(err).Error("Failed to create walk-in booking")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to add booking",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"business_id": booking.BusinessID,
		"type":        booking.BookingType,
	}).Info("Walk-in booking added")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking added successfully",
		"booking": models.NewBookingView(*booking),
	})
}

// UpdateStatus handles PUT /update-booking-status/:id. Only the
// business that holds the booking may move it, and only along the
// legal lifecycle edges.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	bookingID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_status",
			"message": "Unknown booking status",
		})
		return
	}

	booking, err := h.bookings.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Booking not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch booking")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update booking",
		})
		return
	}

	owned, err := h.businesses.OwnedBy(booking.BusinessID, sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check business ownership")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update booking",
		})
		return
	}
	if !owned {
		// Hide bookings of businesses the caller does not manage
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Booking not found",
		})
		return
	}

	if !booking.Status.CanTransitionTo(req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "illegal_transition",
			"message": "Cannot move booking from " + booking.Status.Label() + " to " + req.Status.Label(),
		})
		return
	}

	// The update re-checks the current status, so a concurrent change
	// between the read and the write loses cleanly instead of clobbering.
	err = h.bookings.TransitionStatus(bookingID, booking.BusinessID, booking.Status, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "conflict",
				"message": "Booking status changed concurrently, try again",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update booking status")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update booking",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"from":       booking.Status.Label(),
		"to":         req.Status.Label(),
	}).Info("Booking status updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking status updated",
		"status":  req.Status.Label(),
	})
}

// Cancel handles PUT /cancel-booking/:id, the customer-side cancel.
// Pending and active bookings can be cancelled; completed ones cannot.
func (h *BookingHandler) Cancel(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	bookingID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Booking not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch booking")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to cancel booking",
		})
		return
	}

	if booking.UserID != sessionCtx.SubjectID {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Booking not found",
		})
		return
	}

	if !booking.Status.CanTransitionTo(models.BookingCancelled) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "illegal_transition",
			"message": "A " + booking.Status.Label() + " booking cannot be cancelled",
		})
		return
	}

	if err := h.bookings.CancelByUser(bookingID, sessionCtx.SubjectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "conflict",
				"message": "Booking status changed concurrently, try again",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to cancel booking")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to cancel booking",
		})
		return
	}

	h.logger.WithField("booking_id", bookingID).Info("Booking cancelled by customer")
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// ListMine handles GET /bookings, the customer's bookings with status
// labels
func (h *BookingHandler) ListMine(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	bookings, err := h.bookings.ListByUser(sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": toBookingViews(bookings)})
}

// ListForBusiness handles GET /business-bookings/:business_id for the
// owner's management screen
func (h *BookingHandler) ListForBusiness(c *gin.Context) {
	businessID := c.GetInt64(middleware.BusinessIDContextKey)

	bookings, err := h.bookings.ListByBusiness(businessID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list business bookings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": toBookingViews(bookings)})
}

// createForUser stamps the session user on the booking and inserts it
func (h *BookingHandler) createForUser(c *gin.Context, booking *models.Booking) {
	sessionCtx := middleware.MustGetSessionContext(c)
	booking.UserID = sessionCtx.SubjectID

	if err := h.bookings.Create(booking); err != nil {
		h.logger.WithError(err).Error("Failed to create booking")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create booking",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"business_id": booking.BusinessID,
		"type":        booking.BookingType,
	}).Info("Booking created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created successfully",
		"booking": models.NewBookingView(*booking),
	})
}

func toBookingViews(bookings []models.Booking) []models.BookingView {
	views := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, models.NewBookingView(b))
	}
	return views
}

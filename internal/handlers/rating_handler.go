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

// RatingHandler handles product reviews. Ratings are append-only; the
// average is computed at read time.
type RatingHandler struct {
	ratings  *database.RatingRepository
	products *database.ProductRepository
	logger   *logrus.Logger
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratings *database.RatingRepository, products *database.ProductRepository, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{ratings: ratings, products: products, logger: logger}
}

// Create handles POST /rate-product
func (h *RatingHandler) Create(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	var req models.RateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if _, err := h.products.GetByID(req.ProductID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product for rating")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to submit rating",
		})
		return
	}

	rating := &models.ProductRating{
		ProductID: req.ProductID,
		UserID:    sessionCtx.SubjectID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.ratings.Create(rating); err != nil {
		h.logger.WithError(err).Error("Failed to create rating")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to submit rating",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rating submitted",
		"rating":  rating,
	})
}

// ListForProduct handles GET /products/:product_id/ratings, returning
// the reviews plus the running average
func (h *RatingHandler) ListForProduct(c *gin.Context) {
	productID, ok := parseInt64Param(c, "product_id")
	if !ok {
		return
	}

	ratings, err := h.ratings.ListByProduct(productID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list ratings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch ratings",
		})
		return
	}

	average, count, err := h.ratings.AverageForProduct(productID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to average ratings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch ratings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings": ratings,
		"average": average,
		"count":   count,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// DealHandler handles time-bounded product discounts
type DealHandler struct {
	deals    *database.DealRepository
	products *database.ProductRepository
	logger   *logrus.Logger
}

// NewDealHandler creates a new DealHandler
func NewDealHandler(deals *database.DealRepository, products *database.ProductRepository, logger *logrus.Logger) *DealHandler {
	return &DealHandler{deals: deals, products: products, logger: logger}
}

// Create handles POST /add-deals. The caller must own the product the
// deal discounts; the product price itself is never touched.
func (h *DealHandler) Create(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	var req models.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	expiration, err := time.Parse("2006-01-02", req.Expiration)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "expiration must be a YYYY-MM-DD date",
		})
		return
	}
	if !expiration.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "expiration must be in the future",
		})
		return
	}

	product, err := h.products.GetByID(req.ProductID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product for deal")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create deal",
		})
		return
	}
	if product.UserID != sessionCtx.SubjectID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "not_product_owner",
			"message": "You do not own this product",
		})
		return
	}

	category := req.Category
	if category == "" {
		category = product.Category
	}

	deal := &models.Deal{
		ProductID:  req.ProductID,
		UserID:     sessionCtx.SubjectID,
		Category:   category,
		Discount:   req.Discount,
		Expiration: expiration,
	}

	if err := h.deals.Create(deal); err != nil {
		h.logger.WithError(err).Error("Failed to create deal")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create deal",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"deal_id":    deal.ID,
		"product_id": deal.ProductID,
		"discount":   deal.Discount,
	}).Info("Deal created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Deal created successfully",
		"deal":    deal,
	})
}

// ListActive handles GET /deals, the public list of unexpired deals
func (h *DealHandler) ListActive(c *gin.Context) {
	deals, err := h.deals.ListActive()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list deals")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch deals",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

// ListMine handles GET /my-deals, the owner's deals including expired
// ones awaiting cleanup
func (h *DealHandler) ListMine(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	deals, err := h.deals.ListByUser(sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list owned deals")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch deals",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

// Delete handles DELETE /deals/:deal_id, scoped to the owner
func (h *DealHandler) Delete(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	dealID, ok := parseInt64Param(c, "deal_id")
	if !ok {
		return
	}

	if err := h.deals.Delete(dealID, sessionCtx.SubjectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Deal not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to delete deal")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to delete deal",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deal deleted"})
}

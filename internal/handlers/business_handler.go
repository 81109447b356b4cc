package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
	"github.com/crstnalianza/rabas-backend/internal/services"
)

// BusinessHandler handles storefront reads and the owner-scoped
// sub-document updates
type BusinessHandler struct {
	businesses *database.BusinessRepository
	uploadSvc  *services.UploadService
	logger     *logrus.Logger
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(businesses *database.BusinessRepository, uploadSvc *services.UploadService, logger *logrus.Logger) *BusinessHandler {
	return &BusinessHandler{businesses: businesses, uploadSvc: uploadSvc, logger: logger}
}

// List handles GET /businesses, the public directory
func (h *BusinessHandler) List(c *gin.Context) {
	businesses, err := h.businesses.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list businesses")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch businesses",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

// Get handles GET /businesses/:business_id
func (h *BusinessHandler) Get(c *gin.Context) {
	businessID, ok := parseInt64Param(c, "business_id")
	if !ok {
		return
	}

	business, err := h.businesses.GetByID(businessID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Business not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch business")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch business",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// ListMine handles GET /my-businesses, the owner's storefronts
func (h *BusinessHandler) ListMine(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	businesses, err := h.businesses.ListByUser(sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list owned businesses")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch businesses",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

// UpdateCard handles PUT /businesses/:business_id/card
func (h *BusinessHandler) UpdateCard(c *gin.Context) {
	var req models.UpdateBusinessCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "card", func(businessID, userID int64) error {
		return h.businesses.UpdateCard(businessID, userID, req.Card)
	})
}

// UpdateAboutUs handles PUT /businesses/:business_id/about-us
func (h *BusinessHandler) UpdateAboutUs(c *gin.Context) {
	var req models.UpdateAboutUsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "about us", func(businessID, userID int64) error {
		return h.businesses.UpdateAboutUs(businessID, userID, req.AboutUs)
	})
}

// UpdateFacilities handles PUT /businesses/:business_id/facilities
func (h *BusinessHandler) UpdateFacilities(c *gin.Context) {
	var req models.UpdateFacilitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "facilities", func(businessID, userID int64) error {
		return h.businesses.UpdateFacilities(businessID, userID, req.Facilities)
	})
}

// UpdatePolicies handles PUT /businesses/:business_id/policies
func (h *BusinessHandler) UpdatePolicies(c *gin.Context) {
	var req models.UpdatePoliciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "policies", func(businessID, userID int64) error {
		return h.businesses.UpdatePolicies(businessID, userID, req.Policies)
	})
}

// UpdateContactInfo handles PUT /businesses/:business_id/contact-info
func (h *BusinessHandler) UpdateContactInfo(c *gin.Context) {
	var req models.UpdateContactInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "contact info", func(businessID, userID int64) error {
		return h.businesses.UpdateContactInfo(businessID, userID, req.ContactInfo)
	})
}

// UpdateOpeningHours handles PUT /businesses/:business_id/opening-hours
func (h *BusinessHandler) UpdateOpeningHours(c *gin.Context) {
	var req models.UpdateOpeningHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "opening hours", func(businessID, userID int64) error {
		return h.businesses.UpdateOpeningHours(businessID, userID, req.OpeningHours)
	})
}

// UploadLogo handles POST /businesses/:business_id/logo
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "logo file is required",
		})
		return
	}

	path, err := h.uploadSvc.Save(c, file, "logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_upload",
			"message": err.Error(),
		})
		return
	}

	h.ownedUpdate(c, "logo", func(businessID, userID int64) error {
		return h.businesses.UpdateLogo(businessID, userID, path)
	})
}

// UploadHeroImages handles POST /businesses/:business_id/hero-images.
// Each uploaded file becomes one hero image entry.
func (h *BusinessHandler) UploadHeroImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "multipart form is required",
		})
		return
	}

	files := form.File["hero_images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "at least one hero_images file is required",
		})
		return
	}

	images := models.HeroImageList{}
	for _, file := range files {
		path, err := h.uploadSvc.Save(c, file, "hero")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_upload",
				"message": err.Error(),
			})
			return
		}
		images = append(images, models.HeroImage{ID: uuid.NewString(), Path: path, Title: file.Filename})
	}

	h.ownedUpdate(c, "hero images", func(businessID, userID int64) error {
		return h.businesses.UpdateHeroImages(businessID, userID, images)
	})
}

// ownedUpdate runs an owner-scoped sub-document update and writes the
// response. A zero-row update means the business does not exist or is
// not owned by the caller; both read as not found.
func (h *BusinessHandler) ownedUpdate(c *gin.Context, what string, update func(businessID, userID int64) error) {
	sessionCtx := middleware.MustGetSessionContext(c)

	businessID, ok := parseInt64Param(c, "business_id")
	if !ok {
		return
	}

	if err := update(businessID, sessionCtx.SubjectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Business not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update business " + what)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update business",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Business updated"})
}

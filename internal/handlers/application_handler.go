package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
	"github.com/crstnalianza/rabas-backend/internal/services"
)

// ApplicationHandler handles the user side of the business application
// workflow
type ApplicationHandler struct {
	applications   *database.ApplicationRepository
	applicationSvc *services.ApplicationService
	logger         *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(applications *database.ApplicationRepository, applicationSvc *services.ApplicationService, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications:   applications,
		applicationSvc: applicationSvc,
		logger:         logger,
	}
}

// Submit handles POST /submitBusinessApplication
func (h *ApplicationHandler) Submit(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	var req models.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	app := &models.BusinessApplication{
		UserID:       sessionCtx.SubjectID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BusinessName: req.BusinessName,
		Territory:    req.Territory,
		Certificate:  req.Certificate,
		Scope:        req.Scope,
		BusinessType: req.BusinessType,
		Category:     req.Category,
		Location:     req.Location,
		PinLocation:  req.PinLocation,
	}

	if err := h.applicationSvc.Submit(app); err != nil {
		h.logger.WithError(err).Error("Failed to submit application")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to submit application",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"application_id": app.ApplicationID,
		"user_id":        app.UserID,
		"business_name":  app.BusinessName,
	}).Info("Business application submitted")

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Application submitted successfully",
		"application_id": app.ApplicationID,
		"status":         app.Status.Label(),
	})
}

// ListMine handles GET /businessApplications, returning the caller's
// applications newest first
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	apps, err := h.applications.ListByUser(sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch applications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// Get handles GET /businessApplications/:id, scoped to the caller
func (h *ApplicationHandler) Get(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	applicationID, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	app, err := h.applications.GetByApplicationID(applicationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Application not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch application")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch application",
		})
		return
	}

	if app.UserID != sessionCtx.SubjectID {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Application not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

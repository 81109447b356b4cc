package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// AdminHandler handles the admin dashboard: the application review
// queue, user management and platform counts
type AdminHandler struct {
	users        *database.UserRepository
	sessions     *database.SessionRepository
	applications *database.ApplicationRepository
	businesses   *database.BusinessRepository
	logger       *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	users *database.UserRepository,
	sessions *database.SessionRepository,
	applications *database.ApplicationRepository,
	businesses *database.BusinessRepository,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:        users,
		sessions:     sessions,
		applications: applications,
		businesses:   businesses,
		logger:       logger,
	}
}

// ListApplications handles GET /admin/businessApplications. Pass
// ?status=pending to see only the review queue.
func (h *AdminHandler) ListApplications(c *gin.Context) {
	var (
		apps []models.BusinessApplication
		err  error
	)
	if c.Query("status") == "pending" {
		apps, err = h.applications.ListPending()
	} else {
		apps, err = h.applications.ListAll()
	}
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

// ReviewApplication handles PUT /updateStatus-businessApplications/:id.
// Approval creates the business storefront in the same transaction as
// the status change.
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	applicationID, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if req.Status != models.ApplicationApproved && req.Status != models.ApplicationDenied {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_status",
			"message": "Status must be approved (1) or denied (-1)",
		})
		return
	}

	business, err := h.applications.Review(applicationID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Application not found",
			})
		case errors.Is(err, models.ErrApplicationNotPending):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already_reviewed",
				"message": "Application has already been reviewed",
			})
		default:
			h.logger.WithError(err).Error("Failed to review application")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to review application",
			})
		}
		return
	}

	h.logger.WithFields(logrus.Fields{
		"application_id": applicationID,
		"status":         req.Status.Label(),
	}).Info("Business application reviewed")

	response := gin.H{
		"message": "Application " + req.Status.Label(),
		"status":  req.Status.Label(),
	}
	if business != nil {
		response["business"] = business
	}
	c.JSON(http.StatusOK, response)
}

// ListUsers handles GET /admin/users with limit/offset paging
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.users.List(limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch users",
		})
		return
	}

	total, err := h.users.Count()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// DeleteUser handles DELETE /admin/users/:id. The user's applications,
// businesses, products and deals go with them; their sessions are
// revoked.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteCascade(userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "User not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to delete user",
		})
		return
	}

	if err := h.sessions.DeleteBySubject(models.SubjectUser, userID); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke sessions for deleted user")
	}

	h.logger.WithField("user_id", userID).Info("User deleted")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ListBusinesses handles GET /admin/businesses
func (h *AdminHandler) ListBusinesses(c *gin.Context) {
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

// Dashboard handles GET /admin/dashboard with headline counts
func (h *AdminHandler) Dashboard(c *gin.Context) {
	userCount, err := h.users.Count()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to build dashboard",
		})
		return
	}

	pending, err := h.applications.ListPending()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list pending applications")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to build dashboard",
		})
		return
	}

	businesses, err := h.businesses.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list businesses")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to build dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":                userCount,
		"pending_applications": len(pending),
		"businesses":           len(businesses),
	})
}

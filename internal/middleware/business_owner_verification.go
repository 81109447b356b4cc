package middleware

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crstnalianza/rabas-backend/internal/database"
)

// BusinessIDContextKey is the key used to store the verified business id
const BusinessIDContextKey = "business_id"

// RequireBusinessOwner checks that the authenticated user owns the
// business named by the route parameter.
// Must be used after SessionMiddleware to have the session context available
func RequireBusinessOwner(businessRepo *database.BusinessRepository, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionCtx, exists := GetSessionContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Session context not found",
			})
			c.Abort()
			return
		}

		businessID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_business_id",
				"message": "Business id must be a number",
			})
			c.Abort()
			return
		}

		owned, err := businessRepo.OwnedBy(businessID, sessionCtx.SubjectID)
		if err != nil {
			log.Printf("ERROR: Failed to check business ownership: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to verify business ownership",
			})
			c.Abort()
			return
		}

		if !owned {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "not_business_owner",
				"message": "You do not own this business",
			})
			c.Abort()
			return
		}

		c.Set(BusinessIDContextKey, businessID)

		c.Next()
	}
}

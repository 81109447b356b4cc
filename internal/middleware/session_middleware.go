package middleware

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// SessionContextKey is the key used to store session information in Gin context
const SessionContextKey = "session"

// SessionContext represents the authenticated subject's information
type SessionContext struct {
	SessionID   string             `json:"session_id"`
	SubjectType models.SubjectType `json:"subject_type"`
	SubjectID   int64              `json:"subject_id"`
}

// IsAdmin reports whether the session belongs to an admin account
func (s SessionContext) IsAdmin() bool {
	return s.SubjectType == models.SubjectAdmin
}

// SessionMiddleware validates the session cookie and slides its
// expiry on every authenticated request.
func SessionMiddleware(sessions *database.SessionRepository, cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication required",
				"code":    "MISSING_SESSION",
			})
			c.Abort()
			return
		}

		session, err := sessions.GetByID(sessionID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "unauthorized",
					"message": "Session is invalid or has expired",
					"code":    "INVALID_SESSION",
				})
			} else {
				log.Printf("AUTH FAILED: session lookup error - Path: %s, IP: %s, Error: %v", c.Request.URL.Path, c.ClientIP(), err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "Failed to validate session",
				})
			}
			c.Abort()
			return
		}

		// Sliding expiration: a lookup failure here is not fatal, it
		// only means the window does not advance on this request.
		if err := sessions.Touch(session.ID, time.Now().Add(ttl)); err != nil {
			log.Printf("Failed to refresh session expiry: %v", err)
		}

		c.Set(SessionContextKey, SessionContext{
			SessionID:   session.ID,
			SubjectType: session.SubjectType,
			SubjectID:   session.SubjectID,
		})

		c.Next()
	}
}

// RequireUser ensures the session belongs to a regular user account
func RequireUser() gin.HandlerFunc {
	return requireSubject(models.SubjectUser)
}

// RequireAdmin ensures the session belongs to an admin account
func RequireAdmin() gin.HandlerFunc {
	return requireSubject(models.SubjectAdmin)
}

func requireSubject(want models.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionCtx, exists := GetSessionContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Session context not found. Session middleware may not be applied.",
				"code":    "MISSING_SESSION_CONTEXT",
			})
			c.Abort()
			return
		}

		if sessionCtx.SubjectType != want {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetSessionContext retrieves the session context from Gin context
func GetSessionContext(c *gin.Context) (SessionContext, bool) {
	value, exists := c.Get(SessionContextKey)
	if !exists {
		return SessionContext{}, false
	}

	sessionCtx, ok := value.(SessionContext)
	if !ok {
		return SessionContext{}, false
	}

	return sessionCtx, true
}

// MustGetSessionContext retrieves the session context or panics (use only after SessionMiddleware)
func MustGetSessionContext(c *gin.Context) SessionContext {
	sessionCtx, exists := GetSessionContext(c)
	if !exists {
		panic("session context not found - ensure SessionMiddleware is applied")
	}
	return sessionCtx
}

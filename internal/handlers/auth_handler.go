package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/crstnalianza/rabas-backend/internal/config"
	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
	"github.com/crstnalianza/rabas-backend/internal/services"
	"github.com/crstnalianza/rabas-backend/internal/utils"
	"github.com/crstnalianza/rabas-backend/pkg/token"
)

// AuthHandler handles signup, login, sessions and the password reset
// flow for both users and admins
type AuthHandler struct {
	users       *database.UserRepository
	admins      *database.AdminRepository
	sessions    *database.SessionRepository
	usernameSvc *services.UsernameService
	googleSvc   *services.GoogleService
	mailerSvc   *services.MailerService
	uploadSvc   *services.UploadService
	sessionCfg  config.SessionConfig
	securityCfg config.SecurityConfig
	logger      *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	users *database.UserRepository,
	admins *database.AdminRepository,
	sessions *database.SessionRepository,
	usernameSvc *services.UsernameService,
	googleSvc *services.GoogleService,
	mailerSvc *services.MailerService,
	uploadSvc *services.UploadService,
	sessionCfg config.SessionConfig,
	securityCfg config.SecurityConfig,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:       users,
		admins:      admins,
		sessions:    sessions,
		usernameSvc: usernameSvc,
		googleSvc:   googleSvc,
		mailerSvc:   mailerSvc,
		uploadSvc:   uploadSvc,
		sessionCfg:  sessionCfg,
		securityCfg: securityCfg,
		logger:      logger,
	}
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.securityCfg.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create account",
		})
		return
	}

	user, err := h.users.Create(req.Username, req.Email, string(hash))
	if err != nil {
		if database.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "account_exists",
				"message": "Username or email is already registered",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create account",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    user.PublicView(),
	})
}

// Login handles POST /login. The identifier field accepts a username or
// an email.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	user, err := h.users.GetByIdentifier(req.Identifier)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid username or password",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch user for login")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log in",
		})
		return
	}

	// Google-only accounts carry no password hash
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid username or password",
		})
		return
	}

	if err := h.establishSession(c, models.SubjectUser, user.ID); err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log in",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"user":    user.PublicView(),
	})
}

// GoogleLogin handles POST /google-login. The account is created on
// first sign-in with a derived username.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	var (
		info *services.GoogleUserInfo
		err  error
	)
	switch {
	case req.IDToken != "":
		info, err = h.googleSvc.VerifyIDToken(req.IDToken)
	case req.Code != "":
		info, err = h.googleSvc.ExchangeCode(c.Request.Context(), req.Code)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Either id_token or code is required",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Warn("Google token verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Google sign-in could not be verified",
		})
		return
	}

	user, err := h.users.GetByGoogleID(info.Sub)
	if errors.Is(err, database.ErrNotFound) {
		// Fall back to an existing password account with the same email
		user, err = h.users.GetByEmail(info.Email)
		if errors.Is(err, database.ErrNotFound) {
			username, derr := h.usernameSvc.Derive(info.Name)
			if derr != nil {
				h.logger.WithError(derr).Error("Failed to derive username")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "Failed to create account",
				})
				return
			}
			user, err = h.users.CreateGoogleUser(username, info.Email, info.Sub)
		}
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve google account")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log in",
		})
		return
	}

	if err := h.establishSession(c, models.SubjectUser, user.ID); err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log in",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"user":    user.PublicView(),
	})
}

// AdminLogin handles POST /admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	admin, err := h.admins.GetByUsername(req.Identifier)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid username or password",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch admin for login")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log in",
		})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid username or password",
		})
		return
	}

	if err := h.establishSession(c, models.SubjectAdmin, admin.ID); err != nil {
		h.logger.WithError(err).Error("Failed to create admin session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log in",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Logged in successfully",
		"admin_id": admin.ID,
		"username": admin.Username,
	})
}

// Logout handles POST /logout for both users and admins
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	if err := h.sessions.Delete(sessionCtx.SessionID); err != nil && !errors.Is(err, database.ErrNotFound) {
		h.logger.WithError(err).Error("Failed to delete session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to log out",
		})
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CheckLogin handles GET /check-login. It never fails; an absent or
// expired session simply reports logged out.
func (h *AuthHandler) CheckLogin(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil || session.SubjectType != models.SubjectUser {
		c.JSON(http.StatusOK, gin.H{"isUserLoggedIn": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isUserLoggedIn": true,
		"user_id":        session.SubjectID,
	})
}

// AdminCheckLogin handles GET /admin/check-login
func (h *AuthHandler) AdminCheckLogin(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil || session.SubjectType != models.SubjectAdmin {
		c.JSON(http.StatusOK, gin.H{"isAdminLoggedIn": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isAdminLoggedIn": true,
		"admin_id":        session.SubjectID,
	})
}

// ForgotPassword handles POST /forgot-password. The response is the
// same whether or not the email is registered, so the endpoint cannot
// be used to enumerate accounts.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	response := gin.H{"message": "If that email is registered, a reset link has been sent"}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			h.logger.WithError(err).Error("Failed to fetch user for password reset")
		}
		c.JSON(http.StatusOK, response)
		return
	}

	resetToken, err := token.New()
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate reset token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to start password reset",
		})
		return
	}

	expiry := time.Now().Add(h.securityCfg.ResetTokenExpiry)
	if err := h.users.SetResetToken(user.ID, resetToken, expiry); err != nil {
		h.logger.WithError(err).Error("Failed to store reset token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to start password reset",
		})
		return
	}

	if err := h.mailerSvc.SendPasswordReset(user.Email, resetToken); err != nil {
		h.logger.WithError(err).Error("Failed to send reset email")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to send reset email",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResetPassword handles POST /reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	user, err := h.users.GetByValidResetToken(c.Param("token"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_token",
				"message": "Reset link is invalid or has expired",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch user by reset token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to reset password",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.securityCfg.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to reset password",
		})
		return
	}

	if err := h.users.ResetPassword(user.ID, string(hash)); err != nil {
		h.logger.WithError(err).Error("Failed to reset password")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to reset password",
		})
		return
	}

	// Force re-login everywhere with the new password
	if err := h.sessions.DeleteBySubject(models.SubjectUser, user.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke sessions after password reset")
	}

	h.logger.WithField("user_id", user.ID).Info("Password reset completed")
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// GetProfile handles GET /profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	user, err := h.users.GetByID(sessionCtx.SubjectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Account not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to fetch profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PUT /profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if err := h.users.UpdateProfile(sessionCtx.SubjectID, req.FirstName, req.LastName, req.Phone); err != nil {
		h.logger.WithError(err).Error("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UploadProfileImage handles POST /profile/image
func (h *AuthHandler) UploadProfileImage(c *gin.Context) {
	sessionCtx := middleware.MustGetSessionContext(c)

	file, err := c.FormFile("profile_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "profile_image file is required",
		})
		return
	}

	// Replace the old image on disk after the row points at the new one
	user, err := h.users.GetByID(sessionCtx.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to upload image",
		})
		return
	}

	path, err := h.uploadSvc.Save(c, file, "profile_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_upload",
			"message": err.Error(),
		})
		return
	}

	if err := h.users.UpdateProfileImage(sessionCtx.SubjectID, path); err != nil {
		h.uploadSvc.Remove(path)
		h.logger.WithError(err).Error("Failed to store profile image path")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to upload image",
		})
		return
	}

	if user.ProfileImage != nil {
		h.uploadSvc.Remove(*user.ProfileImage)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Profile image updated",
		"profile_image": path,
	})
}

// establishSession creates the session row and sets the cookie
func (h *AuthHandler) establishSession(c *gin.Context, subjectType models.SubjectType, subjectID int64) error {
	sessionID, err := token.New()
	if err != nil {
		return err
	}

	device := utils.ParseUserAgent(c.Request.UserAgent())
	ip := c.ClientIP()

	session := &models.Session{
		ID:          sessionID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		DeviceType:  &device.DeviceType,
		OS:          &device.OS,
		Browser:     &device.Browser,
		IPAddress:   &ip,
		ExpiresAt:   time.Now().Add(h.sessionCfg.TTL),
	}
	if err := h.sessions.Create(session); err != nil {
		return err
	}

	c.SetCookie(
		h.sessionCfg.CookieName,
		sessionID,
		int(h.sessionCfg.TTL.Seconds()),
		"/", "", h.sessionCfg.Secure, true,
	)
	return nil
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(h.sessionCfg.CookieName, "", -1, "/", "", h.sessionCfg.Secure, true)
}

// currentSession resolves the cookie to a live session, or nil
func (h *AuthHandler) currentSession(c *gin.Context) *models.Session {
	sessionID, err := c.Cookie(h.sessionCfg.CookieName)
	if err != nil || sessionID == "" {
		return nil
	}

	session, err := h.sessions.GetByID(sessionID)
	if err != nil {
		return nil
	}
	return session
}

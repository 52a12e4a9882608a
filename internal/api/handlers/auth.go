package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/session"
	"github.com/jafarshop/storefront/internal/storefront"
)

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// SessionResponse is returned when a session is opened. SessionID is the bearer
// token for every later gateway request.
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	User      *domain.User `json:"user"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// HandleSignIn handles POST /v1/auth/sign-in
func HandleSignIn(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		// Sign in on a throwaway storefront, then open the real session
		anon := reg.Anonymous()
		defer anon.Close(c.Request.Context())

		sess, err := anon.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		openSession(c, reg, logger, sess)
	}
}

// HandleRegister handles POST /v1/auth/register
func HandleRegister(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req backend.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		anon := reg.Anonymous()
		defer anon.Close(c.Request.Context())

		message, err := anon.Auth.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": message})
	}
}

// HandleVerifyCode handles POST /v1/auth/verify-code
func HandleVerifyCode(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		anon := reg.Anonymous()
		defer anon.Close(c.Request.Context())

		sess, err := anon.Auth.VerifyCode(c.Request.Context(), req.Email, req.Code)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		openSession(c, reg, logger, sess)
	}
}

// HandleForgotPassword handles POST /v1/auth/forgot-password
func HandleForgotPassword(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		anon := reg.Anonymous()
		defer anon.Close(c.Request.Context())

		message, err := anon.Auth.ForgotPassword(c.Request.Context(), req.Email)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// HandleResetPassword handles POST /v1/auth/reset-password
func HandleResetPassword(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req backend.ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		anon := reg.Anonymous()
		defer anon.Close(c.Request.Context())

		message, err := anon.Auth.ResetPassword(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// HandleMe handles GET /v1/me
func HandleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sessionResponse(sf.Session))
	}
}

// HandleSignOut handles POST /v1/me/sign-out
func HandleSignOut(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}
		if err := reg.SignOut(c.Request.Context(), sf.Session.ID); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func openSession(c *gin.Context, reg *storefront.Registry, logger *zap.Logger, sess *session.Session) {
	sf, err := reg.Open(c.Request.Context(), sess)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sf.Session))
}

func sessionResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{SessionID: sess.ID, User: sess.User()}
	if exp := sess.ExpiresAt(); !exp.IsZero() {
		resp.ExpiresAt = &exp
	}
	return resp
}

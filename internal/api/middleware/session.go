package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/guard"
	"github.com/jafarshop/storefront/internal/session"
	"github.com/jafarshop/storefront/internal/storefront"
)

// Redirect targets for failed guards
const (
	SignInPath       = "/sign-in"
	AccessDeniedPath = "/access-denied"
)

const storefrontKey = "storefront"

// authCheckTimeout bounds how long a guarded request waits for the auth check
const authCheckTimeout = 5 * time.Second

// SessionMiddleware resolves the bearer token to a live storefront, if any
func SessionMiddleware(reg *storefront.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := bearerToken(c); id != "" {
			if sf, ok := reg.Get(c.Request.Context(), id); ok {
				c.Set(storefrontKey, sf)
			}
		}
		c.Next()
	}
}

// PersistSession writes the session's slices back after every successful request, so a
// session resumed after a crash sees the state its last request left behind
func PersistSession(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		sf, ok := GetStorefrontFromContext(c)
		if !ok || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		// signed out during this request; its slices are already cleared
		if sf.Session.Ended() {
			return
		}
		if err := sf.Save(c.Request.Context()); err != nil {
			logger.Warn("Failed to persist session",
				zap.String("session_id", sf.Session.ID),
				zap.Error(err),
			)
		}
	}
}

// GetStorefrontFromContext returns the storefront SessionMiddleware attached
func GetStorefrontFromContext(c *gin.Context) (*storefront.Storefront, bool) {
	v, ok := c.Get(storefrontKey)
	if !ok {
		return nil, false
	}
	sf, ok := v.(*storefront.Storefront)
	return sf, ok
}

// RequireRoles admits authenticated sessions whose role is in roles. No roles admits
// any authenticated session. Failures redirect to sign-in or access-denied.
func RequireRoles(logger *zap.Logger, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session
		if sf, ok := GetStorefrontFromContext(c); ok {
			sess = sf.Session
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), authCheckTimeout)
		defer cancel()

		decision, err := guard.Authorize(ctx, sess, roles)
		switch decision {
		case guard.Allow:
			c.Next()
		case guard.SignIn:
			c.Redirect(http.StatusSeeOther, SignInPath)
			c.Abort()
		case guard.AccessDenied:
			logger.Info("Access denied",
				zap.String("path", c.Request.URL.Path),
				zap.String("role", string(sess.Role())),
			)
			c.Redirect(http.StatusSeeOther, AccessDeniedPath)
			c.Abort()
		default:
			logger.Warn("Auth check did not complete", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth check pending"})
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

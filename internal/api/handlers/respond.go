package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/inflight"
	"github.com/jafarshop/storefront/internal/notify"
	"github.com/jafarshop/storefront/internal/storefront"
	"github.com/jafarshop/storefront/pkg/errors"
)

// statusFor maps a store error to the gateway's HTTP status
func statusFor(err error) int {
	var (
		valErr        *errors.ErrValidation
		reqErr        *errors.ErrRequest
		unauthorized  *errors.ErrUnauthorized
		forbidden     *errors.ErrForbidden
		notFound      *errors.ErrNotFound
		transitionErr *errors.ErrInvalidStateTransition
		eligibleErr   *errors.ErrNotEligible
	)

	switch {
	case stderrors.As(err, &valErr):
		return http.StatusBadRequest
	case stderrors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case stderrors.As(err, &forbidden):
		return http.StatusForbidden
	case stderrors.As(err, &notFound):
		return http.StatusNotFound
	case stderrors.As(err, &transitionErr), stderrors.As(err, &eligibleErr):
		return http.StatusConflict
	case stderrors.Is(err, inflight.ErrSuperseded), stderrors.Is(err, notify.ErrNoPrompt):
		return http.StatusConflict
	case stderrors.As(err, &reqErr):
		if reqErr.Status >= 400 && reqErr.Status < 500 {
			return reqErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := errors.Message(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		message = errors.FallbackMessage
	}
	c.JSON(status, gin.H{"error": message})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}

// sessionStorefront returns the caller's storefront on a guarded route
func sessionStorefront(c *gin.Context) (*storefront.Storefront, bool) {
	sf, ok := middleware.GetStorefrontFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return sf, true
}

// publicStorefront returns the caller's storefront, or a throwaway one for anonymous
// visitors. The returned func must be called once the request is done.
func publicStorefront(c *gin.Context, reg *storefront.Registry) (*storefront.Storefront, func()) {
	if sf, ok := middleware.GetStorefrontFromContext(c); ok {
		return sf, func() {}
	}
	anon := reg.Anonymous()
	return anon, func() { anon.Close(c.Request.Context()) }
}

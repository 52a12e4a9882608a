package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// HandleMyDeliveries handles GET /v1/delivery/mine
func HandleMyDeliveries(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		deliveries, err := sf.Delivery.FetchMine(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
	}
}

// HandleWeeklyDeliveries handles GET /v1/delivery/weekly
func HandleWeeklyDeliveries(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		weekly, err := sf.Delivery.FetchWeekly(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, weekly)
	}
}

// HandleGetPrompt handles GET /v1/me/rating-prompt
func HandleGetPrompt() gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}
		prompt := sf.Notify.Prompt()
		if prompt == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, prompt)
	}
}

// HandleDismissPrompt handles DELETE /v1/me/rating-prompt
func HandleDismissPrompt() gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}
		sf.Notify.Dismiss()
		c.Status(http.StatusNoContent)
	}
}

// HandleRate handles POST /v1/me/rating-prompt
func HandleRate(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req RateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		// Rate the delivery the pending prompt is about
		if err := sf.Notify.Rate(c.Request.Context(), req.Rating, req.Comment); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/orders"
)

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// ConfirmCancellationRequest carries the mandatory reason of an admin cancellation
type ConfirmCancellationRequest struct {
	Reason string `json:"reason"`
}

type CreateDeliveryBoyRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleListOrders handles GET /v1/admin/orders
func HandleListOrders(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		filters, err := parseOrderFilters(c)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		page, err := sf.Orders.FetchAdminOrders(c.Request.Context(), filters)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleSearchOrders handles GET /v1/admin/orders/search?q=
func HandleSearchOrders(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		page, err := sf.Orders.SearchOrders(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleUpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		// Validate the transition and apply it, or open a confirmation
		id := c.Param("id")
		change, err := sf.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		// Cancellation waits for a reason
		if change == orders.StatusChangeAwaitingConfirmation {
			c.JSON(http.StatusAccepted, gin.H{"result": change, "order_id": id})
			return
		}

		// Return the refetched order
		order, _ := sf.Orders.Lookup(id)
		logger.Info("Order status updated",
			zap.String("order_id", id),
			zap.String("status", req.Status.String()),
		)
		c.JSON(http.StatusOK, gin.H{"result": change, "order": order})
	}
}

// HandleConfirmCancellation handles POST /v1/admin/orders/cancellation
func HandleConfirmCancellation(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req ConfirmCancellationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		id := sf.Orders.PendingCancellation()
		if err := sf.Orders.ConfirmCancellation(c.Request.Context(), req.Reason); err != nil {
			respondError(c, logger, err)
			return
		}

		order, _ := sf.Orders.Lookup(id)
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// HandleDismissCancellation handles DELETE /v1/admin/orders/cancellation
func HandleDismissCancellation() gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}
		sf.Orders.DismissCancellation()
		c.Status(http.StatusNoContent)
	}
}

// HandleCreateDeliveryBoy handles POST /v1/admin/delivery-boys
func HandleCreateDeliveryBoy(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req CreateDeliveryBoyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		boy, err := sf.Delivery.CreateDeliveryBoy(c.Request.Context(), backend.CreateDeliveryBoyRequest{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"delivery_boy": boy})
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/orders"
	"github.com/jafarshop/storefront/pkg/errors"
)

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// RefundOrderRequest refunds Items, or the order's current selection when Items is empty
type RefundOrderRequest struct {
	Items []domain.ItemRef `json:"items"`
}

type SelectItemRequest struct {
	Index     int    `json:"index"`
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
}

type UpdateSelectionItemRequest struct {
	Size     *string `json:"size,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

// OrderResponse is an order together with the actions it currently allows.
// ExpectedFinal is recomputed from the order's amounts for display next to its final amount.
type OrderResponse struct {
	Order         *domain.Order  `json:"order"`
	Actions       orders.Actions `json:"actions"`
	ExpectedFinal float64        `json:"expectedFinal"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{Order: order, Actions: orders.ActionsFor(order)}
	if order != nil {
		resp.ExpectedFinal = order.ExpectedFinal()
	}
	return resp
}

// SelectionResponse is the refund selection of an order
type SelectionResponse struct {
	Selected   []domain.SelectionItem `json:"selected"`
	Unselected []domain.SelectionItem `json:"unselected"`
}

// HandleMyOrders handles GET /v1/me/orders
func HandleMyOrders(logger *zap.Logger) gin.HandlerFunc {
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

		page, err := sf.Orders.FetchMyOrders(c.Request.Context(), filters)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleGetOrder handles GET /v1/me/orders/:id
func HandleGetOrder(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		order, err := sf.Orders.FetchOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// HandleCancelOrder handles POST /v1/me/orders/:id/cancel
func HandleCancelOrder(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req CancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		order, err := sf.Orders.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// HandleRefundOrder handles POST /v1/me/orders/:id/refund
func HandleRefundOrder(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		// Parse refund items, the body is optional
		var req RefundOrderRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBindError(c, err)
				return
			}
		}

		id := c.Param("id")
		var (
			order *domain.Order
			err   error
		)
		// Explicit items win over the selection
		if len(req.Items) > 0 {
			order, err = sf.Orders.RefundOrder(c.Request.Context(), id, req.Items)
		} else {
			sel, selErr := sf.Selection(c.Request.Context(), id)
			if selErr != nil {
				respondError(c, logger, selErr)
				return
			}
			order, err = sf.Orders.RefundSelection(c.Request.Context(), id, sel)
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		// The selection is spent
		sf.DiscardSelection(id)
		logger.Info("Refund requested", zap.String("order_id", id), zap.String("session_id", sf.Session.ID))
		c.JSON(http.StatusOK, newOrderResponse(order))
	}
}

// HandleGetSelection handles GET /v1/me/orders/:id/selection
func HandleGetSelection(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		sel, err := sf.Selection(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, SelectionResponse{Selected: sel.Selected(), Unselected: sel.Unselected()})
	}
}

// HandleSelectItem handles POST /v1/me/orders/:id/selection
func HandleSelectItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req SelectItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		sel, err := sf.Selection(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		// Move the item into the selected partition
		item := domain.SelectionItem{ProductID: req.ProductID, VariantID: req.VariantID}
		if err := sel.AddToSelected(item, req.Index); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, SelectionResponse{Selected: sel.Selected(), Unselected: sel.Unselected()})
	}
}

// HandleDeselectItem handles DELETE /v1/me/orders/:id/selection/:index
func HandleDeselectItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}

		sel, err := sf.Selection(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if err := sel.RemoveFromSelected(index); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, SelectionResponse{Selected: sel.Selected(), Unselected: sel.Unselected()})
	}
}

// HandleUpdateSelectionItem handles PATCH /v1/me/orders/:id/selection/:index
func HandleUpdateSelectionItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}

		var req UpdateSelectionItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		sel, err := sf.Selection(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		// Apply quantity before size so a rejected quantity changes nothing
		if req.Quantity != nil {
			if err := sel.ChangeQuantity(index, *req.Quantity); err != nil {
				respondError(c, logger, err)
				return
			}
		}
		if req.Size != nil {
			if err := sel.ChangeSize(index, *req.Size); err != nil {
				respondError(c, logger, err)
				return
			}
		}
		c.JSON(http.StatusOK, SelectionResponse{Selected: sel.Selected(), Unselected: sel.Unselected()})
	}
}

// parseOrderFilters reads order filters from the query string
func parseOrderFilters(c *gin.Context) (orders.OrderFilters, error) {
	var f orders.OrderFilters

	for _, s := range splitList(c.Query("status")) {
		f.Statuses = append(f.Statuses, domain.OrderStatus(s))
	}
	for _, s := range splitList(c.Query("paymentStatus")) {
		f.PaymentStatuses = append(f.PaymentStatuses, domain.PaymentStatus(s))
	}

	var err error
	if f.From, err = parseDate(c, "startDate"); err != nil {
		return f, err
	}
	if f.To, err = parseDate(c, "endDate"); err != nil {
		return f, err
	}
	if f.MinAmount, err = parseAmount(c, "minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmount(c, "maxAmount"); err != nil {
		return f, err
	}

	f.CouponCode = c.Query("couponCode")
	f.City = c.Query("city")
	f.Country = c.Query("country")
	f.Search = c.Query("search")
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, &errors.ErrValidation{Field: key, Message: key + " must be YYYY-MM-DD"}
	}
	return &t, nil
}

func parseAmount(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &errors.ErrValidation{Field: key, Message: key + " must be a number"}
	}
	return &v, nil
}

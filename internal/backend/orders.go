package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jafarshop/storefront/internal/domain"
)

// OrderPage is one page of an order listing
type OrderPage struct {
	Orders      []domain.Order `json:"orders"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalOrders int            `json:"totalOrders"`
	Limit       int            `json:"limit"`
}

type orderResponse struct {
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type StatusUpdateRequest struct {
	Status       domain.OrderStatus `json:"status"`
	CancelReason string             `json:"cancelReason,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type refundRequest struct {
	Items []domain.ItemRef `json:"items"`
}

// MyOrders lists the authenticated user's orders
func (c *Client) MyOrders(ctx context.Context, query url.Values) (*OrderPage, error) {
	var page OrderPage
	if err := c.do(ctx, http.MethodGet, PathMyOrders, PathMyOrders, query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FilterOrders lists orders across all users (admin)
func (c *Client) FilterOrders(ctx context.Context, query url.Values) (*OrderPage, error) {
	var page OrderPage
	if err := c.do(ctx, http.MethodGet, PathOrderFilter, PathOrderFilter, query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) SearchOrders(ctx context.Context, term string) ([]domain.Order, error) {
	query := url.Values{}
	query.Set("q", term)

	var resp ordersResponse
	if err := c.do(ctx, http.MethodGet, PathOrderSearch, PathOrderSearch, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var resp orderResponse
	path := fmt.Sprintf(PathOrder, url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, PathOrder, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, req StatusUpdateRequest) (*domain.Order, error) {
	var resp orderResponse
	path := fmt.Sprintf(PathOrderStatus, url.PathEscape(id))
	if err := c.do(ctx, http.MethodPatch, PathOrderStatus, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) CancelOrder(ctx context.Context, id, reason string) (*domain.Order, error) {
	var resp orderResponse
	path := fmt.Sprintf(PathOrderCancel, url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, PathOrderCancel, path, nil, cancelRequest{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) RefundOrder(ctx context.Context, id string, items []domain.ItemRef) (*domain.Order, error) {
	var resp orderResponse
	path := fmt.Sprintf(PathOrderRefund, url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, PathOrderRefund, path, nil, refundRequest{Items: items}, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

package backend

import (
	"context"
	"net/http"

	"github.com/jafarshop/storefront/internal/domain"
)

type CreateDeliveryBoyRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type deliveryBoyResponse struct {
	DeliveryBoy domain.DeliveryBoy `json:"deliveryBoy"`
}

type deliveriesResponse struct {
	Deliveries []domain.Delivery `json:"deliveries"`
}

func (c *Client) CreateDeliveryBoy(ctx context.Context, req CreateDeliveryBoyRequest) (*domain.DeliveryBoy, error) {
	var resp deliveryBoyResponse
	if err := c.do(ctx, http.MethodPost, PathCreateDeliveryBoy, PathCreateDeliveryBoy, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.DeliveryBoy, nil
}

func (c *Client) MyDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	var resp deliveriesResponse
	if err := c.do(ctx, http.MethodGet, PathMyDeliveries, PathMyDeliveries, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Deliveries, nil
}

func (c *Client) WeeklyDeliveries(ctx context.Context) (*domain.WeeklyDeliveries, error) {
	var resp domain.WeeklyDeliveries
	if err := c.do(ctx, http.MethodGet, PathWeeklyDeliveries, PathWeeklyDeliveries, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RateDelivery(ctx context.Context, rating domain.Rating) error {
	return c.do(ctx, http.MethodPost, PathRating, PathRating, nil, rating, nil)
}

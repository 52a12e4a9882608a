package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jafarshop/storefront/internal/domain"
)

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type productResponse struct {
	Product domain.Product `json:"product"`
}

type AddCartRequest struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// CartResponse is the cart as the backend holds it after a change
type CartResponse struct {
	Message string            `json:"message"`
	Cart    []domain.CartItem `json:"cart"`
}

// CategoryProducts lists every product of a category
func (c *Client) CategoryProducts(ctx context.Context, category string) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("category", category)

	var resp productsResponse
	if err := c.do(ctx, http.MethodGet, PathCategoryUnique, PathCategoryUnique, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// FilterProducts sends the full criteria and returns the matching products
func (c *Client) FilterProducts(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, http.MethodPost, PathFilters, PathFilters, nil, criteria, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var resp productResponse
	path := fmt.Sprintf(PathProduct, url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, PathProduct, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *Client) AddToCart(ctx context.Context, productID, variantID string, req AddCartRequest) (*CartResponse, error) {
	var resp CartResponse
	path := fmt.Sprintf(PathAddCart, url.PathEscape(productID), url.PathEscape(variantID))
	if err := c.do(ctx, http.MethodPost, PathAddCart, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

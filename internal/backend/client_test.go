package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func setupClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, zaptest.NewLogger(t))
}

func TestClient_SendsHeaders(t *testing.T) {
	var got *http.Request
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		json.NewEncoder(w).Encode(OrderPage{Orders: []domain.Order{{ID: "o1"}}, CurrentPage: 1})
	})

	page, err := client.WithToken("tok").MyOrders(context.Background(), map[string][]string{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, "o1", page.Orders[0].ID)

	require.NotNil(t, got)
	assert.Equal(t, PathMyOrders, got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	_, err = uuid.Parse(got.Header.Get("X-Request-ID"))
	assert.NoError(t, err)
	assert.Empty(t, client.Token(), "WithToken must not mutate the base client")
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
		message string
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"message":"Token expired"}`,
			check: func(t *testing.T, err error) {
				var target *errors.ErrUnauthorized
				assert.ErrorAs(t, err, &target)
			},
			message: "Token expired",
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				var target *errors.ErrForbidden
				assert.ErrorAs(t, err, &target)
			},
			message: "access denied",
		},
		{
			name:   "server message under error key",
			status: http.StatusBadRequest,
			body:   `{"error":"Order already cancelled"}`,
			check: func(t *testing.T, err error) {
				var target *errors.ErrRequest
				require.ErrorAs(t, err, &target)
				assert.Equal(t, http.StatusBadRequest, target.Status)
			},
			message: "Order already cancelled",
		},
		{
			name:   "no message falls back",
			status: http.StatusInternalServerError,
			body:   `<html>oops</html>`,
			check: func(t *testing.T, err error) {
				var target *errors.ErrRequest
				assert.ErrorAs(t, err, &target)
			},
			message: errors.FallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetOrder(context.Background(), "o1")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, tt.message, errors.Message(err))
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(config.BackendConfig{BaseURL: url, Timeout: time.Second}, zaptest.NewLogger(t))
	_, err := client.CategoryProducts(context.Background(), "clothing")
	require.Error(t, err)
	assert.Equal(t, errors.FallbackMessage, errors.Message(err))
}

func TestClient_FilterProductsSendsCriteria(t *testing.T) {
	var body map[string]interface{}
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathFilters, r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"products":[]}`))
	})

	products, err := client.FilterProducts(context.Background(), domain.FilterCriteria{Brands: []string{"Acme"}})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, []interface{}{"Acme"}, body["brands"])
	assert.NotContains(t, body, "colors")
}

func TestClient_AddToCartPath(t *testing.T) {
	var path string
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"message":"Added","cart":[{"productId":"p1","variantId":"v 1","size":"M","quantity":2}]}`))
	})

	resp, err := client.AddToCart(context.Background(), "p1", "v 1", AddCartRequest{Size: "M", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "/product/addcart/p1/v 1", path)
	require.Len(t, resp.Cart, 1)
	assert.Equal(t, 2, resp.Cart[0].Quantity)
}

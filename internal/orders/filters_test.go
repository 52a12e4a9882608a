package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jafarshop/storefront/internal/domain"
)

func TestOrderFilters_ValuesDefaults(t *testing.T) {
	q := OrderFilters{}.Values()

	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "10", q.Get("limit"))
	assert.Len(t, q, 2, "unset filters add no parameters")
}

func TestOrderFilters_Values(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	minAmount, maxAmount := 10.5, 200.0

	q := OrderFilters{
		Statuses:        []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusShipped},
		PaymentStatuses: []domain.PaymentStatus{domain.PaymentStatusCompleted},
		From:            &from,
		To:              &to,
		CouponCode:      "SPRING",
		City:            "Amman",
		Country:         "JO",
		MinAmount:       &minAmount,
		MaxAmount:       &maxAmount,
		Search:          "  hoodie ",
		Page:            3,
		Limit:           500,
	}.Values()

	assert.Equal(t, "pending,shipped", q.Get("status"))
	assert.Equal(t, "completed", q.Get("paymentStatus"))
	assert.Equal(t, "2024-03-01", q.Get("startDate"))
	assert.Equal(t, "2024-03-31", q.Get("endDate"))
	assert.Equal(t, "SPRING", q.Get("couponCode"))
	assert.Equal(t, "Amman", q.Get("city"))
	assert.Equal(t, "JO", q.Get("country"))
	assert.Equal(t, "10.5", q.Get("minAmount"))
	assert.Equal(t, "200", q.Get("maxAmount"))
	assert.Equal(t, "hoodie", q.Get("search"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "10", q.Get("limit"), "limit above the maximum falls back to the default")
}

func TestEligibility(t *testing.T) {
	tests := []struct {
		status  domain.OrderStatus
		payment domain.PaymentStatus
		cancel  bool
		refund  bool
	}{
		{domain.OrderStatusPending, domain.PaymentStatusPending, true, false},
		{domain.OrderStatusProcessing, domain.PaymentStatusCompleted, true, false},
		{domain.OrderStatusShipped, domain.PaymentStatusCompleted, false, true},
		{domain.OrderStatusDelivered, domain.PaymentStatusCompleted, false, true},
		{domain.OrderStatusDelivered, domain.PaymentStatusRefunded, false, false},
		{domain.OrderStatusCancelled, domain.PaymentStatusCompleted, false, false},
		{domain.OrderStatusReturned, domain.PaymentStatusCompleted, false, false},
		{domain.OrderStatusReturnRequested, domain.PaymentStatusCompleted, false, true},
		{domain.OrderStatus("lost"), domain.PaymentStatusCompleted, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+string(tt.payment), func(t *testing.T) {
			order := &domain.Order{Status: tt.status, Payment: domain.Payment{Status: tt.payment}}
			assert.Equal(t, Actions{Cancel: tt.cancel, Refund: tt.refund}, ActionsFor(order))
		})
	}

	assert.Equal(t, Actions{}, ActionsFor(nil))
}

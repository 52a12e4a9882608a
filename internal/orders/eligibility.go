package orders

import (
	"github.com/jafarshop/storefront/internal/domain"
)

// Actions reports which order actions are available to the viewer
type Actions struct {
	Cancel bool `json:"cancel"`
	Refund bool `json:"refund"`
}

// CanCancel is the single cancellation policy shared by the customer and admin views.
// Only orders that have not left the warehouse can be cancelled.
func CanCancel(order *domain.Order) bool {
	if order == nil {
		return false
	}
	switch order.Status {
	case domain.OrderStatusPending, domain.OrderStatusProcessing:
		return true
	default:
		return false
	}
}

// CanRefund is the single refund policy shared by the customer and admin views
func CanRefund(order *domain.Order) bool {
	if order == nil {
		return false
	}
	if order.Payment.Status == domain.PaymentStatusRefunded {
		return false
	}
	switch order.Status {
	case domain.OrderStatusCancelled,
		domain.OrderStatusReturned,
		domain.OrderStatusProcessing,
		domain.OrderStatusPending:
		return false
	default:
		return order.Status.IsValid()
	}
}

func ActionsFor(order *domain.Order) Actions {
	return Actions{
		Cancel: CanCancel(order),
		Refund: CanRefund(order),
	}
}

package orders

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// OrderFilters are the list/filter parameters for both the customer and admin views.
// Zero values mean "no constraint"; Page defaults to 1 and Limit to 10.
type OrderFilters struct {
	Statuses        []domain.OrderStatus   `json:"statuses,omitempty"`
	PaymentStatuses []domain.PaymentStatus `json:"paymentStatuses,omitempty"`
	From            *time.Time             `json:"from,omitempty"`
	To              *time.Time             `json:"to,omitempty"`
	CouponCode      string                 `json:"couponCode,omitempty"`
	City            string                 `json:"city,omitempty"`
	Country         string                 `json:"country,omitempty"`
	MinAmount       *float64               `json:"minAmount,omitempty"`
	MaxAmount       *float64               `json:"maxAmount,omitempty"`
	Search          string                 `json:"search,omitempty"`
	Page            int                    `json:"page,omitempty"`
	Limit           int                    `json:"limit,omitempty"`
}

func (f OrderFilters) withDefaults() OrderFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	return f
}

// Values encodes the filters as backend query parameters
func (f OrderFilters) Values() url.Values {
	f = f.withDefaults()
	q := url.Values{}

	if len(f.Statuses) > 0 {
		parts := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			parts[i] = string(s)
		}
		q.Set("status", strings.Join(parts, ","))
	}
	if len(f.PaymentStatuses) > 0 {
		parts := make([]string, len(f.PaymentStatuses))
		for i, s := range f.PaymentStatuses {
			parts[i] = string(s)
		}
		q.Set("paymentStatus", strings.Join(parts, ","))
	}
	if f.From != nil {
		q.Set("startDate", f.From.Format("2006-01-02"))
	}
	if f.To != nil {
		q.Set("endDate", f.To.Format("2006-01-02"))
	}
	setIfNotEmpty(q, "couponCode", f.CouponCode)
	setIfNotEmpty(q, "city", f.City)
	setIfNotEmpty(q, "country", f.Country)
	if f.MinAmount != nil {
		q.Set("minAmount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount != nil {
		q.Set("maxAmount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64))
	}
	setIfNotEmpty(q, "search", strings.TrimSpace(f.Search))
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))

	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

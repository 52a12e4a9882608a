package domain

import (
	"time"
)

// User represents an authenticated identity
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Address is the shipping address snapshot taken at checkout
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Payment is the payment sub-record of an order
type Payment struct {
	Provider      string        `json:"provider"`
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
}

// ItemRequest is a refund or replacement sub-record of an order item
type ItemRequest struct {
	Status      RequestStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	RequestedAt *time.Time    `json:"requestedAt,omitempty"`
	ResolvedAt  *time.Time    `json:"resolvedAt,omitempty"`
}

// OrderItem is one line item of an order
type OrderItem struct {
	ProductID       string       `json:"productId"`
	VariantID       string       `json:"variantId"`
	Name            string       `json:"name,omitempty"`
	Size            string       `json:"size"`
	Quantity        int          `json:"quantity"`
	PriceAtPurchase float64      `json:"priceAtPurchase"`
	Discount        float64      `json:"discount"`
	CouponDiscount  float64      `json:"couponDiscount"`
	IsReplaceable   bool         `json:"isReplaceable"`
	IsReturnable    bool         `json:"isReturnable"`
	Refund          *ItemRequest `json:"refund,omitempty"`
	Replacement     *ItemRequest `json:"replacement,omitempty"`
}

// Ref returns the (product, variant) identity of the item
func (i OrderItem) Ref() ItemRef {
	return ItemRef{ProductID: i.ProductID, VariantID: i.VariantID}
}

// AuditEntry is one entry of an order's audit log
type AuditEntry struct {
	Action      string    `json:"action"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// Gift holds optional gift metadata
type Gift struct {
	IsGift    bool   `json:"isGift"`
	Message   string `json:"message,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

// Order represents a placed order
type Order struct {
	ID                 string       `json:"_id"`
	UserID             string       `json:"userId"`
	Items              []OrderItem  `json:"products"`
	ShippingAddress    Address      `json:"shippingAddress"`
	Payment            Payment      `json:"payment"`
	Subtotal           float64      `json:"subtotal"`
	Total              float64      `json:"totalAmount"`
	Discount           float64      `json:"discount"`
	Tax                float64      `json:"tax"`
	DeliveryCharge     float64      `json:"deliveryCharge"`
	FinalAmount        float64      `json:"finalAmount"`
	Status             OrderStatus  `json:"status"`
	AuditLog           []AuditEntry `json:"auditLog"`
	CancellationReason *string      `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time   `json:"cancelledAt,omitempty"`
	Gift               *Gift        `json:"gift,omitempty"`
	LoyaltyPointsUsed  int          `json:"loyaltyPointsUsed"`
	CouponCode         string       `json:"couponCode,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// ExpectedFinal is total − discount + tax + delivery charge. Clients surface it next to
// FinalAmount, they do not enforce it.
func (o *Order) ExpectedFinal() float64 {
	return o.Total - o.Discount + o.Tax + o.DeliveryCharge
}

// HasItem reports whether ref names one of the order's items
func (o *Order) HasItem(ref ItemRef) bool {
	for _, item := range o.Items {
		if item.Ref() == ref {
			return true
		}
	}
	return false
}

// ItemRef identifies a line item by product and variant
type ItemRef struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// SelectionItem is a line item held by a selection set
type SelectionItem struct {
	ProductID       string  `json:"productId"`
	VariantID       string  `json:"variantId"`
	Quantity        int     `json:"quantity"`
	Size            string  `json:"size"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
	Discount        float64 `json:"discount"`
}

// Ref returns the (product, variant) identity of the item
func (i SelectionItem) Ref() ItemRef {
	return ItemRef{ProductID: i.ProductID, VariantID: i.VariantID}
}

// SizeStock is the stock held for one size of a variant
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Variant is one color/material variant of a product
type Variant struct {
	ID     string      `json:"_id"`
	Color  string      `json:"color"`
	Images []string    `json:"images"`
	Sizes  []SizeStock `json:"sizes"`
	Price  float64     `json:"price,omitempty"`
}

// Review is a customer review of a product
type Review struct {
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// DiscountWindow is a time-bounded percentage discount
type DiscountWindow struct {
	Percentage float64   `json:"percentage"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil"`
}

// Active reports whether the window covers t
func (d *DiscountWindow) Active(t time.Time) bool {
	return d != nil && !t.Before(d.ValidFrom) && !t.After(d.ValidUntil)
}

// Policy is a return or replacement policy record
type Policy struct {
	Eligible bool   `json:"eligible"`
	Days     int    `json:"days"`
	Terms    string `json:"terms,omitempty"`
}

// Product represents a catalog product
type Product struct {
	ID                  string            `json:"_id"`
	Name                string            `json:"name"`
	Category            string            `json:"category"`
	Subcategory         string            `json:"subcategory"`
	Childcategory       string            `json:"childcategory"`
	BasePrice           float64           `json:"basePrice"`
	Materials           []string          `json:"materials"`
	SustainabilityScore float64           `json:"sustainabilityRating"`
	Brand               string            `json:"brand"`
	Stock               int               `json:"stock"`
	DefaultImage        string            `json:"defaultImage"`
	Variants            []Variant         `json:"variants"`
	Reviews             []Review          `json:"reviews"`
	Rating              float64           `json:"rating"`
	Discount            *DiscountWindow   `json:"discount,omitempty"`
	LoyaltyPoints       int               `json:"loyaltyPoints"`
	ReturnPolicy        Policy            `json:"returnPolicy"`
	ReplacementPolicy   Policy            `json:"replacementPolicy"`
	Gender              Gender            `json:"gender"`
	Highlights          []string          `json:"highlights"`
	Details             map[string]string `json:"details,omitempty"`
}

// PriceAt returns the price of variant i at t. A variant without its own price uses
// the base price, and an active discount window takes its percentage off.
func (p *Product) PriceAt(i int, t time.Time) float64 {
	price := p.BasePrice
	if i >= 0 && i < len(p.Variants) && p.Variants[i].Price > 0 {
		price = p.Variants[i].Price
	}
	if p.Discount.Active(t) {
		price -= price * p.Discount.Percentage / 100
	}
	return price
}

// PriceRange is an inclusive [Min, Max] price interval
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp narrows r into bounds
func (r PriceRange) Clamp(bounds PriceRange) PriceRange {
	out := r
	if out.Min < bounds.Min || out.Min > bounds.Max {
		out.Min = bounds.Min
	}
	if out.Max > bounds.Max || out.Max < bounds.Min {
		out.Max = bounds.Max
	}
	if out.Min > out.Max {
		out.Min, out.Max = bounds.Min, bounds.Max
	}
	return out
}

// FilterCriteria is the full set of recognized catalog filter options
type FilterCriteria struct {
	Gender            Gender      `json:"gender,omitempty"`
	Childcategory     string      `json:"childcategory,omitempty"`
	Price             *PriceRange `json:"price,omitempty"`
	Brands            []string    `json:"brands,omitempty"`
	Colors            []string    `json:"colors,omitempty"`
	Sizes             []string    `json:"sizes,omitempty"`
	Materials         []string    `json:"materials,omitempty"`
	MinSustainability float64     `json:"minSustainability,omitempty"`
	Search            string      `json:"search,omitempty"`
}

// Delivery is one delivery assigned to delivery staff
type Delivery struct {
	ID            string     `json:"_id"`
	OrderID       string     `json:"orderId"`
	DeliveryBoyID string     `json:"deliveryBoyId"`
	Status        string     `json:"status"`
	Address       Address    `json:"address"`
	DeliveredAt   *time.Time `json:"deliveredAt,omitempty"`
}

// DeliveryBoy is a member of the delivery staff
type DeliveryBoy struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	AverageRating float64 `json:"averageRating"`
}

// WeeklyDeliveries is the per-day delivery count for the current week
type WeeklyDeliveries struct {
	Days   []string `json:"days"`
	Counts []int    `json:"counts"`
}

// Rating is a customer's rating of a delivery
type Rating struct {
	DeliveryBoyID string `json:"deliveryBoyId"`
	Stars         int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

// CartItem is one entry of the session's cart
type CartItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Package catalog holds the product listing of a session, the facets derived from it
// and the product open in detail view.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/inflight"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Backend is the slice of the commerce backend the catalog store talks to
type Backend interface {
	CategoryProducts(ctx context.Context, category string) ([]domain.Product, error)
	FilterProducts(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	AddToCart(ctx context.Context, productID, variantID string, req backend.AddCartRequest) (*backend.CartResponse, error)
}

// Detail is the product open in detail view with its current variant, size and image
type Detail struct {
	Product      *domain.Product `json:"product"`
	VariantIndex int             `json:"variantIndex"`
	Size         string          `json:"size"`
	Image        string          `json:"image"`
	Price        float64         `json:"price"`
}

// Variant returns the selected variant, or nil when the product has none
func (d *Detail) Variant() *domain.Variant {
	if d == nil || d.Product == nil || d.VariantIndex < 0 || d.VariantIndex >= len(d.Product.Variants) {
		return nil
	}
	return &d.Product.Variants[d.VariantIndex]
}

// State is a snapshot of the store for rendering
type State struct {
	Category  string                `json:"category"`
	Listing   []domain.Product      `json:"listing"`
	Products  []domain.Product      `json:"products"`
	Facets    Facets                `json:"facets"`
	Criteria  domain.FilterCriteria `json:"criteria"`
	NoResults bool                  `json:"noResults"`
	Loading   bool                  `json:"loading"`
	Detail    *Detail               `json:"detail,omitempty"`
	Cart      []domain.CartItem     `json:"cart,omitempty"`
	Error     string                `json:"error,omitempty"`
}

type Store struct {
	backend Backend
	logger  *zap.Logger

	mu        sync.Mutex
	category  string
	listing   []domain.Product
	facets    Facets
	listReq   inflight.Tracker
	products  []domain.Product
	criteria  domain.FilterCriteria
	noResults bool
	filterReq inflight.Tracker
	detail    *Detail
	detailReq inflight.Tracker
	cart      []domain.CartItem
	cartReq   inflight.Tracker
}

// NewStore creates a new catalog store
func NewStore(b Backend, logger *zap.Logger) *Store {
	return &Store{
		backend:   b,
		logger:    logger,
		facets:    DeriveFacets(nil),
		listReq:   inflight.NewTracker("catalog.listing"),
		filterReq: inflight.NewTracker("catalog.products"),
		detailReq: inflight.NewTracker("catalog.detail"),
		cartReq:   inflight.NewTracker("catalog.cart"),
	}
}

// LoadCategory replaces the listing with every product of category. The facets are
// recomputed, the price filter is clamped to the new bounds and the visible products
// reset to the full listing.
func (s *Store) LoadCategory(ctx context.Context, category string) (State, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		err := &errors.ErrValidation{Field: "category", Message: "category is required"}
		s.mu.Lock()
		s.listReq.Fail(err)
		s.mu.Unlock()
		return State{}, err
	}

	s.mu.Lock()
	seq := s.listReq.Begin()
	filterSeq := s.filterReq.Begin()
	s.mu.Unlock()

	products, err := s.backend.CategoryProducts(ctx, category)

	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.listReq.Finish(seq, err)
	visible := s.filterReq.Finish(filterSeq, err)
	if !latest {
		s.logger.Debug("Dropped stale category listing", zap.String("category", category), zap.Uint64("seq", seq))
		return State{}, inflight.ErrSuperseded
	}
	if err != nil {
		s.logger.Warn("Failed to load category", zap.String("category", category), zap.Error(err))
		return State{}, err
	}

	s.setListingLocked(category, products)
	if visible {
		s.products = products
		s.noResults = len(products) == 0
	}
	return s.stateLocked(), nil
}

// SetListing installs products as the listing without a round-trip
func (s *Store) SetListing(category string, products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setListingLocked(category, products)
	s.products = products
	s.noResults = len(products) == 0
}

func (s *Store) setListingLocked(category string, products []domain.Product) {
	if category != s.category {
		s.criteria = domain.FilterCriteria{}
	}
	s.category = category
	s.listing = products
	s.facets = DeriveFacets(products)

	bounds := s.facets.Price
	if s.criteria.Price == nil {
		s.criteria.Price = &bounds
	} else {
		clamped := s.criteria.Price.Clamp(bounds)
		s.criteria.Price = &clamped
	}
}

// ApplyFilter sends criteria to the backend and replaces the visible products with the
// result. An empty result sets NoResults and is not an error.
func (s *Store) ApplyFilter(ctx context.Context, criteria domain.FilterCriteria) (State, error) {
	if criteria.Price != nil && criteria.Price.Min > criteria.Price.Max {
		err := &errors.ErrValidation{Field: "price", Message: "minimum price exceeds maximum"}
		s.mu.Lock()
		s.filterReq.Fail(err)
		s.mu.Unlock()
		return State{}, err
	}

	s.mu.Lock()
	seq := s.filterReq.Begin()
	s.criteria = criteria
	s.mu.Unlock()

	products, err := s.backend.FilterProducts(ctx, criteria)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filterReq.Finish(seq, err) {
		s.logger.Debug("Dropped stale filter result", zap.Uint64("seq", seq))
		return State{}, inflight.ErrSuperseded
	}
	if err != nil {
		s.logger.Warn("Failed to filter products", zap.Error(err))
		return State{}, err
	}

	s.products = products
	s.noResults = len(products) == 0
	return s.stateLocked(), nil
}

// Refresh re-sends the last applied criteria
func (s *Store) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	criteria := s.criteria
	s.mu.Unlock()
	return s.ApplyFilter(ctx, criteria)
}

// SelectProduct opens p in detail view on its first variant, size and image
func (s *Store) SelectProduct(p domain.Product) Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = newDetail(p)
	return *s.detail
}

// SelectVariant switches the detail view to variant i. Size and image reset to the
// variant's first entries.
func (s *Store) SelectVariant(i int) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detail == nil || s.detail.Product == nil {
		return Detail{}, &errors.ErrValidation{Field: "product", Message: "no product selected"}
	}
	if i < 0 || i >= len(s.detail.Product.Variants) {
		return Detail{}, &errors.ErrValidation{
			Field:   "variant",
			Message: fmt.Sprintf("variant %d out of range [0,%d)", i, len(s.detail.Product.Variants)),
		}
	}

	s.detail.VariantIndex = i
	s.detail.Size, s.detail.Image = firstOf(s.detail.Product, i)
	s.detail.Price = s.detail.Product.PriceAt(i, time.Now())
	return *s.detail, nil
}

// SelectSize picks a size offered by the current variant
func (s *Store) SelectSize(size string) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.detail.Variant()
	if v == nil {
		return Detail{}, &errors.ErrValidation{Field: "product", Message: "no product selected"}
	}
	for _, entry := range v.Sizes {
		if entry.Size == size {
			s.detail.Size = size
			return *s.detail, nil
		}
	}
	return Detail{}, &errors.ErrValidation{Field: "size", Message: fmt.Sprintf("size %q is not offered", size)}
}

// FetchProduct loads the product and opens it in detail view
func (s *Store) FetchProduct(ctx context.Context, id string) (Detail, error) {
	if strings.TrimSpace(id) == "" {
		return Detail{}, &errors.ErrValidation{Field: "id", Message: "product id is required"}
	}

	s.mu.Lock()
	seq := s.detailReq.Begin()
	s.mu.Unlock()

	product, err := s.backend.GetProduct(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.detailReq.Finish(seq, err) {
		return Detail{}, inflight.ErrSuperseded
	}
	if err != nil {
		return Detail{}, err
	}

	s.detail = newDetail(*product)
	return *s.detail, nil
}

// AddToCart adds qty of the product, variant and size open in detail view
func (s *Store) AddToCart(ctx context.Context, qty int) ([]domain.CartItem, error) {
	if qty < 1 {
		return nil, &errors.ErrValidation{Field: "quantity", Message: "quantity must be at least 1"}
	}

	s.mu.Lock()
	v := s.detail.Variant()
	if v == nil {
		s.mu.Unlock()
		return nil, &errors.ErrValidation{Field: "product", Message: "no product selected"}
	}
	if s.detail.Size == "" {
		s.mu.Unlock()
		return nil, &errors.ErrValidation{Field: "size", Message: "select a size"}
	}
	productID, variantID, size := s.detail.Product.ID, v.ID, s.detail.Size
	seq := s.cartReq.Begin()
	s.mu.Unlock()

	resp, err := s.backend.AddToCart(ctx, productID, variantID, backend.AddCartRequest{Size: size, Quantity: qty})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cartReq.Finish(seq, err) {
		return nil, inflight.ErrSuperseded
	}
	if err != nil {
		s.logger.Warn("Failed to add to cart",
			zap.String("product_id", productID),
			zap.String("variant_id", variantID),
			zap.Error(err),
		)
		return nil, err
	}

	s.cart = resp.Cart
	return append([]domain.CartItem(nil), s.cart...), nil
}

// Restore replaces the store with a persisted snapshot. Facets are derived again from
// the listing rather than trusted from the snapshot.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.category = st.Category
	s.listing = st.Listing
	s.facets = DeriveFacets(st.Listing)
	s.products = st.Products
	s.noResults = st.NoResults
	s.criteria = st.Criteria
	if s.criteria.Price != nil {
		clamped := s.criteria.Price.Clamp(s.facets.Price)
		s.criteria.Price = &clamped
	}
	s.detail = st.Detail
	s.cart = st.Cart
}

// Facets returns the facets of the current listing
func (s *Store) Facets() Facets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facets
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{
		Category:  s.category,
		Listing:   append([]domain.Product(nil), s.listing...),
		Products:  append([]domain.Product(nil), s.products...),
		Facets:    s.facets,
		Criteria:  s.criteria,
		NoResults: s.noResults,
		Loading:   s.listReq.Loading() || s.filterReq.Loading() || s.detailReq.Loading() || s.cartReq.Loading(),
		Cart:      append([]domain.CartItem(nil), s.cart...),
	}
	if s.criteria.Price != nil {
		price := *s.criteria.Price
		st.Criteria.Price = &price
	}
	if s.detail != nil {
		d := *s.detail
		st.Detail = &d
	}
	for _, t := range []*inflight.Tracker{&s.cartReq, &s.detailReq, &s.filterReq, &s.listReq} {
		if msg := t.Err(); msg != "" {
			st.Error = msg
			break
		}
	}
	return st
}

func newDetail(p domain.Product) *Detail {
	d := &Detail{Product: &p, Price: p.PriceAt(0, time.Now())}
	if len(p.Variants) == 0 {
		d.Image = p.DefaultImage
		return d
	}
	d.Size, d.Image = firstOf(d.Product, 0)
	return d
}

func firstOf(p *domain.Product, i int) (size, image string) {
	v := p.Variants[i]
	if len(v.Sizes) > 0 {
		size = v.Sizes[0].Size
	}
	image = p.DefaultImage
	if len(v.Images) > 0 {
		image = v.Images[0]
	}
	return size, image
}

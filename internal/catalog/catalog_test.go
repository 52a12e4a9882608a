package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

type mockBackend struct {
	mu           sync.Mutex
	products     []domain.Product
	filtered     []domain.Product
	product      *domain.Product
	err          error
	lastCriteria domain.FilterCriteria
	lastCart     backend.AddCartRequest
	lastCartIDs  [2]string
}

func (m *mockBackend) CategoryProducts(ctx context.Context, category string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products, m.err
}

func (m *mockBackend) FilterProducts(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCriteria = criteria
	return m.filtered, m.err
}

func (m *mockBackend) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func (m *mockBackend) AddToCart(ctx context.Context, productID, variantID string, req backend.AddCartRequest) (*backend.CartResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.lastCart = req
	m.lastCartIDs = [2]string{productID, variantID}
	return &backend.CartResponse{Cart: []domain.CartItem{
		{ProductID: productID, VariantID: variantID, Size: req.Size, Quantity: req.Quantity},
	}}, nil
}

func variantProduct() domain.Product {
	return domain.Product{
		ID:           "p1",
		Name:         "Linen shirt",
		DefaultImage: "default.jpg",
		Variants: []domain.Variant{
			{ID: "A", Color: "red", Images: []string{"i1", "i2"}, Sizes: []domain.SizeStock{{Size: "S", Stock: 1}, {Size: "M", Stock: 2}}},
			{ID: "B", Color: "blue", Images: []string{"i3"}, Sizes: []domain.SizeStock{{Size: "L", Stock: 4}}},
		},
	}
}

func sampleListing() []domain.Product {
	return []domain.Product{
		{
			ID: "p1", Brand: "Nordic", Gender: domain.GenderMen, Childcategory: "shirts", BasePrice: 40,
			Materials: []string{"linen"},
			Variants: []domain.Variant{
				{ID: "v1", Color: "red", Sizes: []domain.SizeStock{{Size: "S"}, {Size: "M"}}},
				{ID: "v2", Color: "blue", Sizes: []domain.SizeStock{{Size: "M"}}},
			},
		},
		{
			ID: "p2", Brand: "Tern", Gender: domain.GenderWomen, Childcategory: "dresses", BasePrice: 120,
			Materials: []string{"cotton", "linen"},
			Variants: []domain.Variant{
				{ID: "v1", Color: "red", Sizes: []domain.SizeStock{{Size: "L"}}},
			},
		},
		{
			ID: "p3", Brand: "Nordic", Gender: domain.GenderMen, Childcategory: "shirts", BasePrice: 15,
			Variants: []domain.Variant{{ID: "v1", Color: "green"}},
		},
	}
}

func TestDeriveFacets_Empty(t *testing.T) {
	f := DeriveFacets(nil)
	assert.Empty(t, f.Brands)
	assert.Empty(t, f.Colors)
	assert.Empty(t, f.Sizes)
	assert.Empty(t, f.Genders)
	assert.Equal(t, domain.PriceRange{Min: 0, Max: 0}, f.Price)
}

func TestDeriveFacets(t *testing.T) {
	f := DeriveFacets(sampleListing())

	assert.Equal(t, []string{"red", "blue", "green"}, f.Colors)
	assert.Equal(t, []string{"S", "M", "L"}, f.Sizes)
	assert.Equal(t, []string{"Nordic", "Tern"}, f.Brands)
	assert.Equal(t, []string{"linen", "cotton"}, f.Materials)
	assert.Equal(t, []string{"shirts", "dresses"}, f.Childcategories)
	assert.Equal(t, []domain.Gender{domain.GenderMen, domain.GenderWomen}, f.Genders)
	assert.Equal(t, domain.PriceRange{Min: 15, Max: 120}, f.Price)
}

func TestStore_LoadCategory(t *testing.T) {
	m := &mockBackend{products: sampleListing()}
	store := NewStore(m, zaptest.NewLogger(t))

	st, err := store.LoadCategory(context.Background(), "clothing")
	require.NoError(t, err)
	assert.Len(t, st.Listing, 3)
	assert.Len(t, st.Products, 3)
	require.NotNil(t, st.Criteria.Price)
	assert.Equal(t, domain.PriceRange{Min: 15, Max: 120}, *st.Criteria.Price)
	assert.False(t, st.NoResults)
	assert.False(t, st.Loading)
}

func TestStore_LoadCategory_ClampsPrice(t *testing.T) {
	m := &mockBackend{products: sampleListing()}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.LoadCategory(ctx, "clothing")
	require.NoError(t, err)
	_, err = store.ApplyFilter(ctx, domain.FilterCriteria{Price: &domain.PriceRange{Min: 30, Max: 100}})
	require.NoError(t, err)

	m.products = sampleListing()[:1]
	st, err := store.LoadCategory(ctx, "clothing")
	require.NoError(t, err)
	assert.Equal(t, domain.PriceRange{Min: 40, Max: 40}, *st.Criteria.Price)
}

func TestStore_LoadCategory_EmptyCategory(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))
	_, err := store.LoadCategory(context.Background(), "  ")
	assert.True(t, errors.IsValidation(err))
}

func TestStore_LoadCategory_FailureKeepsListing(t *testing.T) {
	m := &mockBackend{products: sampleListing()}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.LoadCategory(ctx, "clothing")
	require.NoError(t, err)

	m.err = &errors.ErrRequest{Status: 500, Message: "catalog offline"}
	_, err = store.LoadCategory(ctx, "clothing")
	require.Error(t, err)

	st := store.State()
	assert.Len(t, st.Listing, 3)
	assert.Equal(t, "catalog offline", st.Error)
}

func TestStore_ApplyFilter_NoResults(t *testing.T) {
	m := &mockBackend{products: sampleListing(), filtered: []domain.Product{}}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.LoadCategory(ctx, "clothing")
	require.NoError(t, err)

	st, err := store.ApplyFilter(ctx, domain.FilterCriteria{Brands: []string{"Acme"}})
	require.NoError(t, err)
	assert.True(t, st.NoResults)
	assert.Empty(t, st.Products)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Listing, 3, "filtering never touches the listing")
	assert.Equal(t, []string{"Nordic", "Tern"}, st.Facets.Brands)
	assert.Equal(t, []string{"Acme"}, m.lastCriteria.Brands)
}

func TestStore_ApplyFilter_InvalidPrice(t *testing.T) {
	m := &mockBackend{}
	store := NewStore(m, zaptest.NewLogger(t))

	_, err := store.ApplyFilter(context.Background(), domain.FilterCriteria{Price: &domain.PriceRange{Min: 50, Max: 10}})
	assert.True(t, errors.IsValidation(err))
}

func TestStore_Refresh(t *testing.T) {
	m := &mockBackend{filtered: sampleListing()[:2]}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	criteria := domain.FilterCriteria{Colors: []string{"red"}, Search: "shirt"}
	_, err := store.ApplyFilter(ctx, criteria)
	require.NoError(t, err)

	m.lastCriteria = domain.FilterCriteria{}
	st, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, criteria, m.lastCriteria)
	assert.Len(t, st.Products, 2)
}

func TestStore_SelectVariant(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))

	d := store.SelectProduct(variantProduct())
	assert.Equal(t, 0, d.VariantIndex)
	assert.Equal(t, "S", d.Size)
	assert.Equal(t, "i1", d.Image)

	d, err := store.SelectVariant(1)
	require.NoError(t, err)
	assert.Equal(t, 1, d.VariantIndex)
	assert.Equal(t, "L", d.Size)
	assert.Equal(t, "i3", d.Image)

	_, err = store.SelectVariant(2)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, 1, store.State().Detail.VariantIndex)
}

func TestStore_SelectVariant_NoProduct(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))
	_, err := store.SelectVariant(0)
	assert.True(t, errors.IsValidation(err))
}

func TestStore_SelectSize(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))
	store.SelectProduct(variantProduct())

	d, err := store.SelectSize("M")
	require.NoError(t, err)
	assert.Equal(t, "M", d.Size)

	_, err = store.SelectSize("XL")
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, "M", store.State().Detail.Size)
}

func TestStore_SelectProduct_NoVariants(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))
	d := store.SelectProduct(domain.Product{ID: "p9", DefaultImage: "default.jpg"})
	assert.Equal(t, "default.jpg", d.Image)
	assert.Empty(t, d.Size)
}

func TestStore_FetchProduct(t *testing.T) {
	p := variantProduct()
	store := NewStore(&mockBackend{product: &p}, zaptest.NewLogger(t))

	d, err := store.FetchProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", d.Product.ID)
	assert.Equal(t, "S", d.Size)
}

func TestStore_AddToCart(t *testing.T) {
	m := &mockBackend{}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.AddToCart(ctx, 1)
	assert.True(t, errors.IsValidation(err), "nothing selected")

	store.SelectProduct(variantProduct())
	_, err = store.SelectVariant(1)
	require.NoError(t, err)

	_, err = store.AddToCart(ctx, 0)
	assert.True(t, errors.IsValidation(err))

	cart, err := store.AddToCart(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, [2]string{"p1", "B"}, m.lastCartIDs)
	assert.Equal(t, backend.AddCartRequest{Size: "L", Quantity: 2}, m.lastCart)
}

func TestStore_Restore(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))
	store.Restore(State{
		Category: "clothing",
		Listing:  sampleListing(),
		Products: sampleListing()[:1],
		Criteria: domain.FilterCriteria{Price: &domain.PriceRange{Min: 0, Max: 1000}},
	})

	st := store.State()
	assert.Equal(t, "clothing", st.Category)
	assert.Equal(t, []string{"Nordic", "Tern"}, st.Facets.Brands)
	assert.Equal(t, domain.PriceRange{Min: 15, Max: 120}, *st.Criteria.Price)
	assert.Len(t, st.Products, 1)
}

func TestStore_Restore_OutOfRangeVariant(t *testing.T) {
	p := variantProduct()
	for _, idx := range []int{-1, len(p.Variants)} {
		store := NewStore(&mockBackend{}, zaptest.NewLogger(t))
		store.Restore(State{Detail: &Detail{Product: &p, VariantIndex: idx, Size: "M"}})

		st := store.State()
		require.NotNil(t, st.Detail)
		assert.Nil(t, st.Detail.Variant(), "index %d", idx)

		_, err := store.AddToCart(context.Background(), 1)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestStore_DetailPriceFollowsVariant(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))

	p := variantProduct()
	p.BasePrice = 40
	p.Variants[1].Price = 55
	p.Discount = &domain.DiscountWindow{
		Percentage: 10,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
	}

	d := store.SelectProduct(p)
	assert.InDelta(t, 36, d.Price, 1e-9)

	d, err := store.SelectVariant(1)
	require.NoError(t, err)
	assert.InDelta(t, 49.5, d.Price, 1e-9)
}

package selection

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func workingSet() []domain.SelectionItem {
	return []domain.SelectionItem{
		{ProductID: "p1", VariantID: "v1", Quantity: 1, Size: "S", PriceAtPurchase: 10},
		{ProductID: "p1", VariantID: "v2", Quantity: 2, Size: "M", PriceAtPurchase: 12},
		{ProductID: "p2", VariantID: "v1", Quantity: 1, Size: "L", PriceAtPurchase: 30, Discount: 5},
		{ProductID: "p3", VariantID: "v9", Quantity: 3, Size: "XL", PriceAtPurchase: 8},
	}
}

func keys(items []domain.SelectionItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ProductID+"/"+item.VariantID)
	}
	sort.Strings(out)
	return out
}

func TestStore_AddAndRemove(t *testing.T) {
	initial := workingSet()
	s := New(nil, initial)

	require.NoError(t, s.AddToSelected(initial[1], 1))
	assert.Equal(t, []domain.SelectionItem{initial[1]}, s.Selected())
	assert.Len(t, s.Unselected(), 3)
	assert.True(t, s.Contains(domain.ItemRef{ProductID: "p1", VariantID: "v2"}))

	require.NoError(t, s.RemoveFromSelected(0))
	assert.Empty(t, s.Selected())

	unselected := s.Unselected()
	require.Len(t, unselected, 4)
	assert.Equal(t, initial[1], unselected[3], "removed item goes to the end of unselected")
}

func TestStore_Conservation(t *testing.T) {
	initial := workingSet()
	want := keys(initial)
	rng := rand.New(rand.NewSource(42))

	s := New(nil, initial)
	for step := 0; step < 500; step++ {
		if rng.Intn(2) == 0 {
			unselected := s.Unselected()
			if len(unselected) == 0 {
				continue
			}
			i := rng.Intn(len(unselected))
			require.NoError(t, s.AddToSelected(unselected[i], i))
		} else {
			selected := s.Selected()
			if len(selected) == 0 {
				continue
			}
			require.NoError(t, s.RemoveFromSelected(rng.Intn(len(selected))))
		}

		all := append(s.Selected(), s.Unselected()...)
		require.Equal(t, want, keys(all), "step %d", step)
		for _, sel := range s.Selected() {
			for _, un := range s.Unselected() {
				require.NotEqual(t, sel.Ref(), un.Ref(), "partitions must be disjoint")
			}
		}
	}
}

func TestStore_AddToSelected_OutOfRange(t *testing.T) {
	initial := workingSet()
	s := New(nil, initial)

	for _, idx := range []int{-1, 4, 100} {
		err := s.AddToSelected(initial[0], idx)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
	assert.Empty(t, s.Selected())
	assert.Equal(t, initial, s.Unselected())
}

func TestStore_AddToSelected_MismatchedItem(t *testing.T) {
	initial := workingSet()
	s := New(nil, initial)

	err := s.AddToSelected(initial[2], 0)
	require.Error(t, err)
	assert.Equal(t, initial, s.Unselected())
}

func TestStore_RemoveFromSelected_OutOfRange(t *testing.T) {
	s := New(workingSet()[:1], nil)
	assert.Error(t, s.RemoveFromSelected(1))
	assert.Len(t, s.Selected(), 1)
}

func TestStore_ChangeQuantity(t *testing.T) {
	initial := workingSet()
	s := New(initial, nil)

	for _, qty := range []int{0, -1, -100} {
		err := s.ChangeQuantity(1, qty)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Equal(t, initial, s.Selected(), "qty %d must not change state", qty)
	}

	require.NoError(t, s.ChangeQuantity(1, 7))
	got := s.Selected()
	for i := range got {
		if i == 1 {
			assert.Equal(t, 7, got[i].Quantity)
			continue
		}
		assert.Equal(t, initial[i], got[i])
	}
}

func TestStore_ChangeSize(t *testing.T) {
	initial := workingSet()
	s := New(initial, nil)

	require.NoError(t, s.ChangeSize(0, "XXL"))
	assert.Equal(t, "XXL", s.Selected()[0].Size)
	assert.Equal(t, initial[1], s.Selected()[1])
	assert.Error(t, s.ChangeSize(9, "S"))
}

func TestNewFromOrder(t *testing.T) {
	order := &domain.Order{
		ID: "o1",
		Items: []domain.OrderItem{
			{ProductID: "p1", VariantID: "v1", Size: "M", Quantity: 2, PriceAtPurchase: 20, Discount: 1},
			{ProductID: "p2", VariantID: "v3", Size: "S", Quantity: 1, PriceAtPurchase: 15},
		},
	}

	s := NewFromOrder(order)
	assert.Empty(t, s.Selected())
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.AddToSelected(s.Unselected()[1], 1))
	assert.Equal(t, []domain.ItemRef{{ProductID: "p2", VariantID: "v3"}}, s.Refs())
}

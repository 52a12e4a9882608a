// Package selection partitions a working set of line items into selected and
// unselected, for multi-item operations such as checkout or refund.
//
// Items move between the two partitions. They are never copied, so the count across
// both partitions is conserved.
package selection

import (
	"fmt"
	"sync"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

type Store struct {
	mu         sync.Mutex
	selected   []domain.SelectionItem
	unselected []domain.SelectionItem
}

// New creates a store holding the given partitions. The slices are copied.
func New(selected, unselected []domain.SelectionItem) *Store {
	return &Store{
		selected:   append([]domain.SelectionItem(nil), selected...),
		unselected: append([]domain.SelectionItem(nil), unselected...),
	}
}

// NewFromOrder seeds the unselected partition with the order's items
func NewFromOrder(order *domain.Order) *Store {
	items := make([]domain.SelectionItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.SelectionItem{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			Size:            item.Size,
			PriceAtPurchase: item.PriceAtPurchase,
			Discount:        item.Discount,
		})
	}
	return New(nil, items)
}

// AddToSelected moves the unselected item at sourceIndex to the end of selected.
// item must carry the same (product, variant) key as the entry at sourceIndex.
func (s *Store) AddToSelected(item domain.SelectionItem, sourceIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sourceIndex < 0 || sourceIndex >= len(s.unselected) {
		return indexError(sourceIndex, len(s.unselected))
	}
	moved := s.unselected[sourceIndex]
	if moved.Ref() != item.Ref() {
		return &errors.ErrValidation{
			Field:   "item",
			Message: fmt.Sprintf("item %s/%s is not at index %d", item.ProductID, item.VariantID, sourceIndex),
		}
	}

	s.unselected = remove(s.unselected, sourceIndex)
	s.selected = append(s.selected, moved)
	return nil
}

// RemoveFromSelected moves the selected item at index to the end of unselected
func (s *Store) RemoveFromSelected(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.selected) {
		return indexError(index, len(s.selected))
	}
	moved := s.selected[index]
	s.selected = remove(s.selected, index)
	s.unselected = append(s.unselected, moved)
	return nil
}

// ChangeSize replaces the size of the selected item at index. Stock for the new
// size is the caller's concern.
func (s *Store) ChangeSize(index int, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.selected) {
		return indexError(index, len(s.selected))
	}
	s.selected[index].Size = size
	return nil
}

// ChangeQuantity replaces the quantity of the selected item at index. Quantities
// below one are rejected without touching the state.
func (s *Store) ChangeQuantity(index, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		return &errors.ErrValidation{Field: "quantity", Message: "quantity must be at least 1"}
	}
	if index < 0 || index >= len(s.selected) {
		return indexError(index, len(s.selected))
	}
	s.selected[index].Quantity = qty
	return nil
}

// Selected returns a copy of the selected partition
func (s *Store) Selected() []domain.SelectionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SelectionItem(nil), s.selected...)
}

// Unselected returns a copy of the unselected partition
func (s *Store) Unselected() []domain.SelectionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SelectionItem(nil), s.unselected...)
}

// Refs returns the keys of the selected items
func (s *Store) Refs() []domain.ItemRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make([]domain.ItemRef, 0, len(s.selected))
	for _, item := range s.selected {
		refs = append(refs, item.Ref())
	}
	return refs
}

// Contains reports whether ref is in the selected partition
func (s *Store) Contains(ref domain.ItemRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.selected {
		if item.Ref() == ref {
			return true
		}
	}
	return false
}

// Len returns the number of items across both partitions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected) + len(s.unselected)
}

func remove(items []domain.SelectionItem, i int) []domain.SelectionItem {
	out := make([]domain.SelectionItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func indexError(index, length int) error {
	return &errors.ErrValidation{
		Field:   "index",
		Message: fmt.Sprintf("index %d out of range [0,%d)", index, length),
	}
}

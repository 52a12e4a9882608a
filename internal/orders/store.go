package orders

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/inflight"
	"github.com/jafarshop/storefront/internal/selection"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Backend is the slice of the commerce backend the order store talks to
type Backend interface {
	MyOrders(ctx context.Context, query url.Values) (*backend.OrderPage, error)
	FilterOrders(ctx context.Context, query url.Values) (*backend.OrderPage, error)
	SearchOrders(ctx context.Context, term string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, req backend.StatusUpdateRequest) (*domain.Order, error)
	CancelOrder(ctx context.Context, id, reason string) (*domain.Order, error)
	RefundOrder(ctx context.Context, id string, items []domain.ItemRef) (*domain.Order, error)
}

// Pagination is the page metadata of a listing
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalOrders int `json:"totalOrders"`
	Limit       int `json:"limit"`
}

// Page is one committed page of orders
type Page struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// StatusChange tells the caller what UpdateStatus did
type StatusChange string

const (
	StatusChangeApplied              StatusChange = "applied"
	StatusChangeAwaitingConfirmation StatusChange = "awaiting_confirmation"
)

// State is a snapshot of the store for rendering
type State struct {
	MyOrders            []domain.Order `json:"myOrders"`
	MyPagination        Pagination     `json:"myPagination"`
	MyOrdersLoading     bool           `json:"myOrdersLoading"`
	AdminOrders         []domain.Order `json:"adminOrders"`
	AdminPagination     Pagination     `json:"adminPagination"`
	AdminLoading        bool           `json:"adminLoading"`
	Detail              *domain.Order  `json:"detail,omitempty"`
	DetailActions       Actions        `json:"detailActions"`
	DetailLoading       bool           `json:"detailLoading"`
	PendingCancellation string         `json:"pendingCancellation,omitempty"`
	Error               string         `json:"error,omitempty"`
}

// Store holds the orders of one session: the user's own orders, the admin listing and
// the order currently open in detail view.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu          sync.Mutex
	mine        []domain.Order
	minePage    Pagination
	mineReq     inflight.Tracker
	admin       []domain.Order
	adminPage   Pagination
	adminReq    inflight.Tracker
	detail      *domain.Order
	detailReq   inflight.Tracker
	actionReq   inflight.Tracker
	cancelOrder string
}

// NewStore creates a new order store
func NewStore(b Backend, logger *zap.Logger) *Store {
	return &Store{
		backend:   b,
		logger:    logger,
		mineReq:   inflight.NewTracker("orders.mine"),
		adminReq:  inflight.NewTracker("orders.admin"),
		detailReq: inflight.NewTracker("orders.detail"),
		actionReq: inflight.NewTracker("orders.action"),
	}
}

// FetchMyOrders replaces the user's orders with the page matching filters.
// On failure the previous orders are kept.
func (s *Store) FetchMyOrders(ctx context.Context, filters OrderFilters) (Page, error) {
	s.mu.Lock()
	seq := s.mineReq.Begin()
	s.mu.Unlock()

	resp, err := s.backend.MyOrders(ctx, filters.Values())

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mineReq.Finish(seq, err) {
		s.logger.Debug("Dropped stale order page", zap.Uint64("seq", seq))
		return Page{}, inflight.ErrSuperseded
	}
	if err != nil {
		s.logger.Warn("Failed to fetch my orders", zap.Error(err))
		return Page{}, err
	}

	s.mine = resp.Orders
	s.minePage = paginationOf(resp)
	return Page{Orders: copyOrders(s.mine), Pagination: s.minePage}, nil
}

// FetchAdminOrders replaces the admin listing with the page matching filters
func (s *Store) FetchAdminOrders(ctx context.Context, filters OrderFilters) (Page, error) {
	s.mu.Lock()
	seq := s.adminReq.Begin()
	s.mu.Unlock()

	resp, err := s.backend.FilterOrders(ctx, filters.Values())

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.adminReq.Finish(seq, err) {
		s.logger.Debug("Dropped stale admin order page", zap.Uint64("seq", seq))
		return Page{}, inflight.ErrSuperseded
	}
	if err != nil {
		s.logger.Warn("Failed to fetch admin orders", zap.Error(err))
		return Page{}, err
	}

	s.admin = resp.Orders
	s.adminPage = paginationOf(resp)
	return Page{Orders: copyOrders(s.admin), Pagination: s.adminPage}, nil
}

// SearchOrders replaces the admin listing with the server-side matches for term
func (s *Store) SearchOrders(ctx context.Context, term string) (Page, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		err := &errors.ErrValidation{Field: "term", Message: "search term is required"}
		s.mu.Lock()
		s.adminReq.Fail(err)
		s.mu.Unlock()
		return Page{}, err
	}

	s.mu.Lock()
	seq := s.adminReq.Begin()
	s.mu.Unlock()

	found, err := s.backend.SearchOrders(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.adminReq.Finish(seq, err) {
		return Page{}, inflight.ErrSuperseded
	}
	if err != nil {
		return Page{}, err
	}

	s.admin = found
	s.adminPage = Pagination{CurrentPage: 1, TotalPages: 1, TotalOrders: len(found), Limit: len(found)}
	return Page{Orders: copyOrders(s.admin), Pagination: s.adminPage}, nil
}

// FetchOrder loads the order into the detail slice and merges it into any listing
// that holds it
func (s *Store) FetchOrder(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &errors.ErrValidation{Field: "id", Message: "order id is required"}
	}

	s.mu.Lock()
	seq := s.detailReq.Begin()
	s.mu.Unlock()

	order, err := s.backend.GetOrder(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.detailReq.Finish(seq, err) {
		return nil, inflight.ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	s.detail = order
	s.mergeLocked(order)
	return copyOrder(order), nil
}

// UpdateStatus requests a status change. A move to cancelled only opens a confirmation;
// ConfirmCancellation performs it. Moves the state machine does not allow from the
// known current status never reach the backend.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (StatusChange, error) {
	if !status.IsValid() {
		return "", &errors.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	current, err := s.orderFor(ctx, id)
	if err != nil {
		return "", err
	}
	if !current.Status.CanTransitionTo(status) {
		return "", &errors.ErrInvalidStateTransition{From: current.Status, To: status}
	}

	if status == domain.OrderStatusCancelled {
		if !CanCancel(current) {
			return "", &errors.ErrNotEligible{Action: "cancel", Reason: fmt.Sprintf("order is %s", current.Status)}
		}
		s.mu.Lock()
		s.cancelOrder = id
		s.mu.Unlock()
		return StatusChangeAwaitingConfirmation, nil
	}

	if err := s.applyStatus(ctx, id, backend.StatusUpdateRequest{Status: status}); err != nil {
		return "", err
	}
	return StatusChangeApplied, nil
}

// ConfirmCancellation completes the cancellation opened by UpdateStatus
func (s *Store) ConfirmCancellation(ctx context.Context, reason string) error {
	s.mu.Lock()
	id := s.cancelOrder
	s.mu.Unlock()

	if id == "" {
		return &errors.ErrValidation{Field: "cancellation", Message: "no cancellation awaiting confirmation"}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return &errors.ErrValidation{Field: "reason", Message: "cancellation reason is required"}
	}

	err := s.applyStatus(ctx, id, backend.StatusUpdateRequest{
		Status:       domain.OrderStatusCancelled,
		CancelReason: reason,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancelOrder == id {
		s.cancelOrder = ""
	}
	s.mu.Unlock()
	return nil
}

// DismissCancellation closes a pending cancellation without changing the order
func (s *Store) DismissCancellation() {
	s.mu.Lock()
	s.cancelOrder = ""
	s.mu.Unlock()
}

// PendingCancellation returns the id of the order awaiting cancel confirmation, or ""
func (s *Store) PendingCancellation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelOrder
}

// CancelOrder cancels the order on behalf of its owner. The reason and eligibility are
// checked before the request is attempted.
func (s *Store) CancelOrder(ctx context.Context, id, reason string) (*domain.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &errors.ErrValidation{Field: "reason", Message: "cancellation reason is required"}
	}

	current, err := s.orderFor(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanCancel(current) {
		return nil, &errors.ErrNotEligible{Action: "cancel", Reason: fmt.Sprintf("order is %s", current.Status)}
	}

	return s.runAction(ctx, "cancel", id, func() (*domain.Order, error) {
		return s.backend.CancelOrder(ctx, id, reason)
	})
}

// RefundOrder requests a partial refund for items, which must all belong to the order
func (s *Store) RefundOrder(ctx context.Context, id string, items []domain.ItemRef) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, &errors.ErrValidation{Field: "items", Message: "select at least one item to refund"}
	}

	current, err := s.orderFor(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, ref := range items {
		if !current.HasItem(ref) {
			return nil, &errors.ErrValidation{
				Field:   "items",
				Message: fmt.Sprintf("item %s/%s is not part of order %s", ref.ProductID, ref.VariantID, id),
			}
		}
	}
	if !CanRefund(current) {
		return nil, &errors.ErrNotEligible{
			Action: "refund",
			Reason: fmt.Sprintf("order is %s with payment %s", current.Status, current.Payment.Status),
		}
	}

	return s.runAction(ctx, "refund", id, func() (*domain.Order, error) {
		return s.backend.RefundOrder(ctx, id, items)
	})
}

// RefundSelection refunds the items currently selected in sel
func (s *Store) RefundSelection(ctx context.Context, id string, sel *selection.Store) (*domain.Order, error) {
	return s.RefundOrder(ctx, id, sel.Refs())
}

// Lookup returns the cached copy of an order, if any slice holds it
func (s *Store) Lookup(id string) (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.lookupLocked(id)
	if order == nil {
		return nil, false
	}
	return copyOrder(order), true
}

// State returns a snapshot of the store
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	errMsg := ""
	for _, t := range []*inflight.Tracker{&s.actionReq, &s.detailReq, &s.adminReq, &s.mineReq} {
		if t.Err() != "" {
			errMsg = t.Err()
			break
		}
	}

	return State{
		MyOrders:            copyOrders(s.mine),
		MyPagination:        s.minePage,
		MyOrdersLoading:     s.mineReq.Loading(),
		AdminOrders:         copyOrders(s.admin),
		AdminPagination:     s.adminPage,
		AdminLoading:        s.adminReq.Loading(),
		Detail:              copyOrder(s.detail),
		DetailActions:       ActionsFor(s.detail),
		DetailLoading:       s.detailReq.Loading() || s.actionReq.Loading(),
		PendingCancellation: s.cancelOrder,
		Error:               errMsg,
	}
}

func (s *Store) applyStatus(ctx context.Context, id string, req backend.StatusUpdateRequest) error {
	_, err := s.runAction(ctx, "status", id, func() (*domain.Order, error) {
		return s.backend.UpdateOrderStatus(ctx, id, req)
	})
	return err
}

// runAction issues a mutation and merges the server's view of the order. The backend
// appends the audit entry, so a response without an order triggers a refetch.
func (s *Store) runAction(ctx context.Context, action, id string, call func() (*domain.Order, error)) (*domain.Order, error) {
	s.mu.Lock()
	seq := s.actionReq.Begin()
	s.mu.Unlock()

	order, err := call()

	s.mu.Lock()
	s.actionReq.Finish(seq, err)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("Order action failed",
			zap.String("action", action),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	s.mu.Unlock()

	s.logger.Info("Order action applied", zap.String("action", action), zap.String("order_id", id))

	if order == nil || order.ID == "" {
		return s.FetchOrder(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(order)
	if s.detail == nil || s.detail.ID == order.ID {
		s.detail = order
	}
	return copyOrder(order), nil
}

// orderFor returns the cached order, fetching it when no slice holds it
func (s *Store) orderFor(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &errors.ErrValidation{Field: "id", Message: "order id is required"}
	}
	if order, ok := s.Lookup(id); ok {
		return order, nil
	}
	return s.FetchOrder(ctx, id)
}

func (s *Store) lookupLocked(id string) *domain.Order {
	if s.detail != nil && s.detail.ID == id {
		return s.detail
	}
	for i := range s.mine {
		if s.mine[i].ID == id {
			return &s.mine[i]
		}
	}
	for i := range s.admin {
		if s.admin[i].ID == id {
			return &s.admin[i]
		}
	}
	return nil
}

func (s *Store) mergeLocked(order *domain.Order) {
	for i := range s.mine {
		if s.mine[i].ID == order.ID {
			s.mine[i] = *order
		}
	}
	for i := range s.admin {
		if s.admin[i].ID == order.ID {
			s.admin[i] = *order
		}
	}
	if s.detail != nil && s.detail.ID == order.ID && s.detail != order {
		updated := *order
		s.detail = &updated
	}
}

func paginationOf(resp *backend.OrderPage) Pagination {
	return Pagination{
		CurrentPage: resp.CurrentPage,
		TotalPages:  resp.TotalPages,
		TotalOrders: resp.TotalOrders,
		Limit:       resp.Limit,
	}
}

func copyOrders(orders []domain.Order) []domain.Order {
	if orders == nil {
		return nil
	}
	return append([]domain.Order(nil), orders...)
}

func copyOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	c := *order
	return &c
}

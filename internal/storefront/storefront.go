// Package storefront composes the stores of one session around its backend client,
// push channel and persisted slices.
package storefront

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/catalog"
	"github.com/jafarshop/storefront/internal/delivery"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/notify"
	"github.com/jafarshop/storefront/internal/orders"
	"github.com/jafarshop/storefront/internal/persist"
	"github.com/jafarshop/storefront/internal/selection"
	"github.com/jafarshop/storefront/internal/session"
)

// Options are the process-wide dependencies shared by every storefront
type Options struct {
	Backend   *backend.Client
	SocketURL string
	Dialer    notify.Dialer
	// Persist may be nil, in which case nothing survives a restart
	Persist persist.Store
	Logger  *zap.Logger
}

type Storefront struct {
	Session  *session.Session
	Client   *backend.Client
	Auth     *auth.Store
	Orders   *orders.Store
	Catalog  *catalog.Store
	Delivery *delivery.Store
	Notify   *notify.Channel

	socketURL string
	persist   persist.Store
	logger    *zap.Logger

	mu         sync.Mutex
	selections map[string]*selection.Store
	closed     bool
}

// New builds the stores for sess. The backend client authenticates as the session's token.
func New(sess *session.Session, opts Options) *Storefront {
	logger := opts.Logger.With(zap.String("session_id", sess.ID))
	client := opts.Backend.WithToken(sess.Token())
	deliveries := delivery.NewStore(client, logger)

	sf := &Storefront{
		Session:    sess,
		Client:     client,
		Auth:       auth.NewStore(client, logger),
		Orders:     orders.NewStore(client, logger),
		Catalog:    catalog.NewStore(client, logger),
		Delivery:   deliveries,
		Notify:     notify.NewChannel(opts.SocketURL, opts.Dialer, deliveries, logger).WithToken(sess.Token()),
		socketURL:  opts.SocketURL,
		persist:    opts.Persist,
		logger:     logger,
		selections: make(map[string]*selection.Store),
	}
	metrics.SessionStarted()
	return sf
}

// Start restores the persisted slices and, for an authenticated session, opens the
// push channel. A channel that fails to open is logged; the session stays usable.
func (s *Storefront) Start(ctx context.Context) error {
	if err := s.Restore(ctx); err != nil {
		return err
	}

	user := s.Session.User()
	if s.socketURL == "" || !s.Session.Authenticated() || user == nil || user.ID == "" {
		return nil
	}
	if err := s.Notify.Start(ctx, user.ID); err != nil && !stderrors.Is(err, notify.ErrAlreadyStarted) {
		s.logger.Warn("Push channel unavailable", zap.Error(err))
	}
	return nil
}

// Restore loads the persisted product and delivery slices into their stores
func (s *Storefront) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	var auths auth.State
	if ok, err := s.persist.Load(ctx, s.Session.ID, persist.SliceAuth, &auths); err != nil {
		return err
	} else if ok {
		s.Auth.Restore(auths)
	}

	var products catalog.State
	if ok, err := s.persist.Load(ctx, s.Session.ID, persist.SliceProduct, &products); err != nil {
		return err
	} else if ok {
		s.Catalog.Restore(products)
	}

	var deliveries delivery.State
	if ok, err := s.persist.Load(ctx, s.Session.ID, persist.SliceDelivery, &deliveries); err != nil {
		return err
	} else if ok {
		s.Delivery.Restore(deliveries)
	}
	return nil
}

// Save persists the auth, product and delivery slices. Orders are always refetched.
func (s *Storefront) Save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	authState := s.Auth.State()
	if authState.Token == "" {
		authState.Token = s.Session.Token()
		authState.User = s.Session.User()
	}

	slices := map[persist.Slice]interface{}{
		persist.SliceAuth:     authState,
		persist.SliceProduct:  s.Catalog.State(),
		persist.SliceDelivery: s.Delivery.State(),
	}
	for _, slice := range persist.Slices {
		if err := s.persist.Save(ctx, s.Session.ID, slice, slices[slice]); err != nil {
			return fmt.Errorf("failed to persist session %s: %w", s.Session.ID, err)
		}
	}
	return nil
}

// Selection returns the refund selection for an order, seeding it from the order's
// items on first use
func (s *Storefront) Selection(ctx context.Context, orderID string) (*selection.Store, error) {
	s.mu.Lock()
	sel, ok := s.selections[orderID]
	s.mu.Unlock()
	if ok {
		return sel, nil
	}

	order, ok := s.Orders.Lookup(orderID)
	if !ok {
		var err error
		if order, err = s.Orders.FetchOrder(ctx, orderID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sel, ok := s.selections[orderID]; ok {
		return sel, nil
	}
	sel = selection.NewFromOrder(order)
	s.selections[orderID] = sel
	return sel, nil
}

// DiscardSelection drops the selection held for orderID
func (s *Storefront) DiscardSelection(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, orderID)
}

// Close stops the push channel and persists the session. Closing twice is a no-op.
func (s *Storefront) Close(ctx context.Context) error {
	if !s.markClosed() {
		return nil
	}
	stopErr := s.Notify.Stop()
	if err := s.Save(ctx); err != nil {
		return err
	}
	return stopErr
}

// SignOut ends the session and forgets everything persisted for it
func (s *Storefront) SignOut(ctx context.Context) error {
	s.Session.End()
	s.Auth.SignOut()
	if !s.markClosed() {
		return nil
	}
	if err := s.Notify.Stop(); err != nil {
		s.logger.Warn("Failed to stop push channel", zap.Error(err))
	}
	if s.persist != nil {
		if err := s.persist.Clear(ctx, s.Session.ID); err != nil {
			return err
		}
	}
	s.logger.Info("Session signed out")
	return nil
}

func (s *Storefront) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	metrics.SessionEnded()
	return true
}

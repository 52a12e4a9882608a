package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/persist"
	"github.com/jafarshop/storefront/internal/session"
)

// Registry indexes the live storefronts of the process by session id
type Registry struct {
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	byID map[string]*Storefront
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:   opts,
		logger: opts.Logger,
		byID:   make(map[string]*Storefront),
	}
}

// Open builds and starts the storefront for a freshly authenticated session
func (r *Registry) Open(ctx context.Context, sess *session.Session) (*Storefront, error) {
	sf := New(sess, r.opts)
	if err := sf.Start(ctx); err != nil {
		sf.Close(ctx)
		return nil, err
	}
	if err := sf.Save(ctx); err != nil {
		r.logger.Warn("Failed to persist new session", zap.String("session_id", sess.ID), zap.Error(err))
	}

	r.mu.Lock()
	r.byID[sess.ID] = sf
	r.mu.Unlock()
	return sf, nil
}

// Get returns the storefront of session id. A session missing from memory is resumed
// from its persisted auth slice when one exists.
func (r *Registry) Get(ctx context.Context, id string) (*Storefront, bool) {
	if id == "" {
		return nil, false
	}

	r.mu.Lock()
	sf, ok := r.byID[id]
	r.mu.Unlock()
	if ok {
		return sf, true
	}
	if r.opts.Persist == nil {
		return nil, false
	}

	var st auth.State
	found, err := r.opts.Persist.Load(ctx, id, persist.SliceAuth, &st)
	if err != nil {
		r.logger.Warn("Failed to load persisted session", zap.String("session_id", id), zap.Error(err))
		return nil, false
	}
	if !found || st.Token == "" {
		return nil, false
	}

	sess := session.Resume(id, st.Token, st.User)
	if !sess.Authenticated() {
		return nil, false
	}

	r.mu.Lock()
	// another request may have resumed it meanwhile
	if existing, ok := r.byID[id]; ok {
		r.mu.Unlock()
		return existing, true
	}
	sf = New(sess, r.opts)
	r.byID[id] = sf
	r.mu.Unlock()

	if err := sf.Start(ctx); err != nil {
		r.logger.Warn("Failed to resume session", zap.String("session_id", id), zap.Error(err))
	}
	r.logger.Info("Session resumed", zap.String("session_id", id))
	return sf, true
}

// Anonymous returns a throwaway storefront for requests without a session. It is never
// registered or persisted.
func (r *Registry) Anonymous() *Storefront {
	opts := r.opts
	opts.Persist = nil
	sess := session.NewAnonymous()
	sess.MarkChecked()
	return New(sess, opts)
}

// SignOut ends session id and forgets it
func (r *Registry) SignOut(ctx context.Context, id string) error {
	r.mu.Lock()
	sf, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return sf.SignOut(ctx)
}

// Len returns the number of live storefronts
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// CloseAll persists and closes every live storefront
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	all := make([]*Storefront, 0, len(r.byID))
	for id, sf := range r.byID {
		all = append(all, sf)
		delete(r.byID, id)
	}
	r.mu.Unlock()

	for _, sf := range all {
		if err := sf.Close(ctx); err != nil {
			r.logger.Warn("Failed to close session", zap.String("session_id", sf.Session.ID), zap.Error(err))
		}
	}
}

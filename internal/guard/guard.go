// Package guard gates views by authentication and role.
package guard

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/session"
)

// Decision is the outcome of evaluating a guard
type Decision int

const (
	// Pending means the auth check has not completed yet
	Pending Decision = iota
	// SignIn means no authenticated session
	SignIn
	// AccessDenied means the session's role is not allowed
	AccessDenied
	Allow
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case SignIn:
		return "sign_in"
	case AccessDenied:
		return "access_denied"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// State is the part of a session a guard looks at
type State struct {
	Checked       bool
	Authenticated bool
	Role          domain.Role
}

// StateOf snapshots sess
func StateOf(sess *session.Session) State {
	if sess == nil {
		return State{Checked: true}
	}
	return State{
		Checked:       sess.IsChecked(),
		Authenticated: sess.Authenticated(),
		Role:          sess.Role(),
	}
}

// Evaluate decides access for state. An empty allowed set admits any authenticated role.
func Evaluate(state State, allowed []domain.Role) Decision {
	if !state.Checked {
		return Pending
	}
	if !state.Authenticated {
		return SignIn
	}
	if len(allowed) == 0 {
		return Allow
	}
	for _, role := range allowed {
		if role == state.Role {
			return Allow
		}
	}
	return AccessDenied
}

// Authorize waits for the session's auth check to complete, then evaluates it.
// It returns Pending with the context's error if ctx ends first.
func Authorize(ctx context.Context, sess *session.Session, allowed []domain.Role) (Decision, error) {
	if sess != nil {
		select {
		case <-sess.Checked():
		case <-ctx.Done():
			return Pending, ctx.Err()
		}
	}
	return Evaluate(StateOf(sess), allowed), nil
}

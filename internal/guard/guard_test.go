package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/session"
)

func TestEvaluate(t *testing.T) {
	admin := []domain.Role{domain.RoleAdmin}

	tests := []struct {
		name    string
		state   State
		allowed []domain.Role
		want    Decision
	}{
		{"check in flight", State{Checked: false, Authenticated: true, Role: domain.RoleAdmin}, admin, Pending},
		{"anonymous", State{Checked: true}, admin, SignIn},
		{"wrong role", State{Checked: true, Authenticated: true, Role: domain.RoleUser}, admin, AccessDenied},
		{"allowed role", State{Checked: true, Authenticated: true, Role: domain.RoleAdmin}, admin, Allow},
		{"any role", State{Checked: true, Authenticated: true, Role: domain.RoleDelivery}, nil, Allow},
		{"anonymous any role", State{Checked: true}, nil, SignIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state, tt.allowed))
		})
	}
}

func TestAuthorize_WaitsForCheck(t *testing.T) {
	sess := session.New("opaque", &domain.User{ID: "u1", Role: domain.RoleAdmin})
	done := make(chan Decision, 1)

	go func() {
		d, _ := Authorize(context.Background(), sess, []domain.Role{domain.RoleAdmin})
		done <- d
	}()

	select {
	case <-done:
		t.Fatal("authorize decided before the auth check completed")
	case <-time.After(20 * time.Millisecond):
	}

	sess.MarkChecked()

	select {
	case d := <-done:
		assert.Equal(t, Allow, d)
	case <-time.After(time.Second):
		t.Fatal("authorize did not return")
	}
}

func TestAuthorize_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := Authorize(ctx, session.NewAnonymous(), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Pending, d)
}

func TestAuthorize_EndedSession(t *testing.T) {
	sess := session.New("opaque", &domain.User{ID: "u1", Role: domain.RoleUser})
	sess.MarkChecked()
	sess.End()

	d, err := Authorize(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Equal(t, SignIn, d)
}

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

type mockBackend struct {
	calls    int
	err      error
	verified backend.VerifyCodeRequest
}

func (m *mockBackend) SignIn(ctx context.Context, req backend.SignInRequest) (*backend.AuthResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &backend.AuthResponse{
		Message: "Signed in",
		Token:   "tok-" + req.Email,
		User:    domain.User{ID: "u1", Email: req.Email, Role: domain.RoleAdmin},
	}, nil
}

func (m *mockBackend) Register(ctx context.Context, req backend.RegisterRequest) (*backend.MessageResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &backend.MessageResponse{Message: "Verification code sent"}, nil
}

func (m *mockBackend) VerifyCode(ctx context.Context, req backend.VerifyCodeRequest) (*backend.AuthResponse, error) {
	m.calls++
	m.verified = req
	if m.err != nil {
		return nil, m.err
	}
	return &backend.AuthResponse{Token: "tok", User: domain.User{ID: "u2", Email: req.Email, Role: domain.RoleUser}}, nil
}

func (m *mockBackend) ForgotPassword(ctx context.Context, email string) (*backend.MessageResponse, error) {
	m.calls++
	return &backend.MessageResponse{Message: "Reset code sent"}, m.err
}

func (m *mockBackend) ResetPassword(ctx context.Context, req backend.ResetPasswordRequest) (*backend.MessageResponse, error) {
	m.calls++
	return &backend.MessageResponse{Message: "Password updated"}, m.err
}

func TestStore_SignIn(t *testing.T) {
	m := &mockBackend{}
	store := NewStore(m, zaptest.NewLogger(t))

	sess, err := store.SignIn(context.Background(), " admin@example.com ", "pw")
	require.NoError(t, err)
	assert.True(t, sess.IsChecked())
	assert.True(t, sess.Authenticated())
	assert.Equal(t, domain.RoleAdmin, sess.Role())

	st := store.State()
	assert.Equal(t, "tok-admin@example.com", st.Token)
	assert.Equal(t, "u1", st.User.ID)
}

func TestStore_SignIn_BlankCredentials(t *testing.T) {
	m := &mockBackend{}
	store := NewStore(m, zaptest.NewLogger(t))

	_, err := store.SignIn(context.Background(), "", "pw")
	assert.True(t, errors.IsValidation(err))
	_, err = store.SignIn(context.Background(), "a@b.c", " ")
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, m.calls)
	assert.Equal(t, "password is required", store.State().Error)
}

func TestStore_SignIn_Rejected(t *testing.T) {
	m := &mockBackend{err: &errors.ErrUnauthorized{Message: "Invalid credentials"}}
	store := NewStore(m, zaptest.NewLogger(t))

	_, err := store.SignIn(context.Background(), "a@b.c", "wrong")
	var unauthorized *errors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Empty(t, store.State().Token)
	assert.Equal(t, "Invalid credentials", store.State().Error)
}

func TestStore_RegisterThenVerify(t *testing.T) {
	m := &mockBackend{}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	msg, err := store.Register(ctx, backend.RegisterRequest{Name: "Lina", Email: "lina@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Verification code sent", msg)
	assert.Equal(t, "lina@example.com", store.State().PendingEmail)

	calls := m.calls
	_, err = store.VerifyCode(ctx, "", "123456")
	assert.True(t, errors.IsValidation(err), "verification needs the address it was sent to")
	assert.Equal(t, calls, m.calls)

	sess, err := store.VerifyCode(ctx, "lina@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "lina@example.com", m.verified.Email)
	assert.Equal(t, "u2", sess.User().ID)
	assert.Empty(t, store.State().PendingEmail)
}

func TestStore_PasswordReset(t *testing.T) {
	m := &mockBackend{}
	store := NewStore(m, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := store.ForgotPassword(ctx, "")
	assert.True(t, errors.IsValidation(err))

	msg, err := store.ForgotPassword(ctx, "lina@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Reset code sent", msg)

	_, err = store.ResetPassword(ctx, backend.ResetPasswordRequest{Email: "lina@example.com", Code: "1"})
	assert.True(t, errors.IsValidation(err))

	msg, err = store.ResetPassword(ctx, backend.ResetPasswordRequest{Email: "lina@example.com", Code: "1", NewPassword: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Password updated", msg)
}

func TestStore_RestoreAndSignOut(t *testing.T) {
	store := NewStore(&mockBackend{}, zaptest.NewLogger(t))

	assert.Nil(t, store.Restore(State{}))

	sess := store.Restore(State{Token: "opaque", User: &domain.User{ID: "u1", Role: domain.RoleDelivery}})
	require.NotNil(t, sess)
	assert.Equal(t, domain.RoleDelivery, sess.Role())

	store.SignOut()
	assert.Empty(t, store.State().Token)
	assert.Nil(t, store.State().User)
}

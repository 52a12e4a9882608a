package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestNew_ReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"sub": "u1", "role": "admin", "exp": exp.Unix()})

	s := New(token, nil)
	assert.NotEmpty(t, s.ID)
	assert.True(t, s.Authenticated())
	assert.Equal(t, domain.RoleAdmin, s.Role())
	assert.Equal(t, "u1", s.User().ID)
	assert.True(t, exp.Equal(s.ExpiresAt()))
}

func TestNew_UserOverridesClaims(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u1", "role": "admin"})

	s := New(token, &domain.User{ID: "u2", Role: domain.RoleDelivery})
	assert.Equal(t, domain.RoleDelivery, s.Role())
	assert.Equal(t, "u2", s.User().ID)
}

func TestNew_OpaqueToken(t *testing.T) {
	s := New("not-a-jwt", &domain.User{ID: "u1", Role: domain.RoleUser})
	assert.True(t, s.Authenticated())
	assert.True(t, s.ExpiresAt().IsZero())
}

func TestSession_Expired(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})

	s := New(token, &domain.User{ID: "u1", Role: domain.RoleUser})
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Role())
}

func TestSession_Lifecycle(t *testing.T) {
	anon := NewAnonymous()
	assert.False(t, anon.IsChecked())
	assert.False(t, anon.Authenticated())

	s := New("opaque", &domain.User{ID: "u1", Role: domain.RoleUser})
	assert.False(t, s.IsChecked())
	s.MarkChecked()
	s.MarkChecked()
	assert.True(t, s.IsChecked())
	assert.True(t, s.Authenticated())

	s.End()
	s.End()
	assert.True(t, s.Ended())
	assert.False(t, s.Authenticated())
	assert.True(t, s.IsChecked())
	assert.Nil(t, s.User())
}

func TestResume(t *testing.T) {
	s := Resume("fixed-id", "opaque", &domain.User{ID: "u1", Role: domain.RoleAdmin})
	assert.Equal(t, "fixed-id", s.ID)
	assert.True(t, s.IsChecked())
	assert.Equal(t, domain.RoleAdmin, s.Role())
}

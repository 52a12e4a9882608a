// Package auth holds the auth slice: sign-in, registration, e-mail verification and
// password reset. Successful sign-in yields a session.
package auth

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/inflight"
	"github.com/jafarshop/storefront/internal/session"
	"github.com/jafarshop/storefront/pkg/errors"
)

type Backend interface {
	SignIn(ctx context.Context, req backend.SignInRequest) (*backend.AuthResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.MessageResponse, error)
	VerifyCode(ctx context.Context, req backend.VerifyCodeRequest) (*backend.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) (*backend.MessageResponse, error)
	ResetPassword(ctx context.Context, req backend.ResetPasswordRequest) (*backend.MessageResponse, error)
}

// State is the persistable snapshot of the auth slice
type State struct {
	Token        string       `json:"token,omitempty"`
	User         *domain.User `json:"user,omitempty"`
	PendingEmail string       `json:"pendingEmail,omitempty"`
	Message      string       `json:"message,omitempty"`
	Loading      bool         `json:"-"`
	Error        string       `json:"-"`
}

type Store struct {
	backend Backend
	logger  *zap.Logger

	mu           sync.Mutex
	token        string
	user         *domain.User
	pendingEmail string
	message      string
	req          inflight.Tracker
}

func NewStore(b Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: b,
		logger:  logger,
		req:     inflight.NewTracker("auth"),
	}
}

// SignIn authenticates with the backend and returns a checked session for the identity
func (s *Store) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if err := requireFields(map[string]string{"email": email, "password": password}); err != nil {
		return nil, s.fail(err)
	}

	seq := s.begin()
	resp, err := s.backend.SignIn(ctx, backend.SignInRequest{Email: email, Password: password})
	if err := s.finish(seq, err); err != nil {
		s.logger.Info("Sign-in failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return s.commit(resp), nil
}

// Register creates an account; the backend then mails a verification code
func (s *Store) Register(ctx context.Context, req backend.RegisterRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := requireFields(map[string]string{"name": req.Name, "email": req.Email, "password": req.Password}); err != nil {
		return "", s.fail(err)
	}

	seq := s.begin()
	resp, err := s.backend.Register(ctx, req)
	if err := s.finish(seq, err); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingEmail = req.Email
	s.message = resp.Message
	return resp.Message, nil
}

// VerifyCode confirms the code mailed at registration and signs the user in
func (s *Store) VerifyCode(ctx context.Context, email, code string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if err := requireFields(map[string]string{"email": email, "code": strings.TrimSpace(code)}); err != nil {
		return nil, s.fail(err)
	}

	seq := s.begin()
	resp, err := s.backend.VerifyCode(ctx, backend.VerifyCodeRequest{Email: email, Code: strings.TrimSpace(code)})
	if err := s.finish(seq, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pendingEmail = ""
	s.mu.Unlock()
	return s.commit(resp), nil
}

func (s *Store) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := requireFields(map[string]string{"email": email}); err != nil {
		return "", s.fail(err)
	}

	seq := s.begin()
	resp, err := s.backend.ForgotPassword(ctx, email)
	if err := s.finish(seq, err); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = resp.Message
	return resp.Message, nil
}

func (s *Store) ResetPassword(ctx context.Context, req backend.ResetPasswordRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := requireFields(map[string]string{"email": req.Email, "code": req.Code, "newPassword": req.NewPassword}); err != nil {
		return "", s.fail(err)
	}

	seq := s.begin()
	resp, err := s.backend.ResetPassword(ctx, req)
	if err := s.finish(seq, err); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = resp.Message
	return resp.Message, nil
}

// SignOut clears the identity held by the slice
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.message = ""
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Token:        s.token,
		PendingEmail: s.pendingEmail,
		Message:      s.message,
		Loading:      s.req.Loading(),
		Error:        s.req.Err(),
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Restore replaces the slice with a persisted snapshot and returns the session it
// describes, or nil when the snapshot holds no identity
func (s *Store) Restore(st State) *session.Session {
	s.mu.Lock()
	s.token = st.Token
	s.user = st.User
	s.pendingEmail = st.PendingEmail
	s.message = st.Message
	s.mu.Unlock()

	if st.Token == "" {
		return nil
	}
	sess := session.New(st.Token, st.User)
	sess.MarkChecked()
	return sess
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req.Begin()
}

func (s *Store) finish(seq uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.req.Finish(seq, err) {
		return inflight.ErrSuperseded
	}
	return err
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.req.Fail(err)
	return err
}

func (s *Store) commit(resp *backend.AuthResponse) *session.Session {
	user := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.message = resp.Message
	s.mu.Unlock()

	sess := session.New(resp.Token, &user)
	sess.MarkChecked()
	s.logger.Info("Signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return sess
}

func requireFields(fields map[string]string) error {
	for _, name := range []string{"name", "email", "code", "password", "newPassword"} {
		v, ok := fields[name]
		if ok && strings.TrimSpace(v) == "" {
			return &errors.ErrValidation{Field: name, Message: name + " is required"}
		}
	}
	return nil
}

package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/model"
	"github.com/goliatone/go-inventory/session"
	"github.com/rs/zerolog"
)

// Service runs the account flows against a backend.
type Service struct {
	auth backend.Auth
}

func NewService(auth backend.Auth) *Service {
	return &Service{auth: auth}
}

// Register validates form and creates an unconfirmed account carrying the
// username and phone as metadata.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*model.Principal, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form.normalize()

	principal, err := s.auth.SignUp(ctx, strings.ToLower(form.Email), form.Password, map[string]any{
		model.MetaUsername: form.Username,
		model.MetaPhone:    form.Phone,
	})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", principal.ID).Msg("account registered")
	return principal, nil
}

// Login signs in with email and password. Accounts without a confirmed
// email are signed out again and rejected with ErrUnconfirmedEmail.
func (s *Service) Login(ctx context.Context, form LoginForm) (*model.Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	principal, sess, err := s.auth.SignInWithPassword(ctx, strings.TrimSpace(form.Email), form.Password)
	if err != nil {
		return nil, err
	}

	if principal == nil && sess != nil {
		principal = sess.User
	}

	logger := zerolog.Ctx(ctx)
	if principal != nil && !principal.Confirmed() {
		signOutCtx := ctx
		if sess != nil {
			signOutCtx = backend.WithAccessToken(ctx, sess.AccessToken)
		}
		if err := s.auth.SignOut(signOutCtx); err != nil {
			logger.Warn().Err(err).Str("user_id", principal.ID).Msg("sign-out of unconfirmed account failed")
		}
		logger.Info().Str("user_id", principal.ID).Msg("rejected sign-in of unconfirmed account")
		return nil, ErrUnconfirmedEmail
	}

	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.User == nil {
		sess.User = principal
	}
	return sess, nil
}

// Logout closes the session bound to ctx.
func (s *Service) Logout(ctx context.Context) error {
	return s.auth.SignOut(ctx)
}

// CurrentUser returns the principal of the session bound to ctx. It fails
// with session.ErrAuthRequired when there is no session.
func (s *Service) CurrentUser(ctx context.Context) (*model.Principal, error) {
	sess, err := s.auth.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.User == nil {
		return nil, session.ErrAuthRequired
	}
	return sess.User, nil
}

// DisplayName is the name shown for p in the navigation bar.
func DisplayName(p *model.Principal) string {
	return p.DisplayName()
}

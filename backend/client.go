package backend

import (
	"context"

	"github.com/goliatone/go-inventory/model"
)

// Auth is the account and session surface of the backend.
type Auth interface {
	// SignUp creates an account. metadata is stored on the principal.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*model.Principal, error)
	// SignInWithPassword opens a session. It succeeds for unconfirmed
	// accounts too; callers decide whether to accept them.
	SignInWithPassword(ctx context.Context, email, password string) (*model.Principal, *model.Session, error)
	// GetSession returns the session bound to ctx, or nil when there is none.
	GetSession(ctx context.Context) (*model.Session, error)
	// GetUser returns the principal of the session bound to ctx, or nil.
	GetUser(ctx context.Context) (*model.Principal, error)
	// SignOut ends the session bound to ctx. Signing out without a session
	// is not an error.
	SignOut(ctx context.Context) error
}

// Table is row-level CRUD over one owner-scoped entity.
type Table[R any] interface {
	Select(ctx context.Context, q *Query) ([]R, error)
	// Single returns exactly one row or an error wrapping ErrNotFound.
	Single(ctx context.Context, q *Query) (R, error)
	// Insert stores row and returns it with backend-assigned fields set.
	Insert(ctx context.Context, row R) (R, error)
	Update(ctx context.Context, patch Patch, q *Query) error
	Delete(ctx context.Context, q *Query) error
}

// Client groups the surfaces the inventory needs.
type Client interface {
	Auth() Auth
	Products() Table[model.Product]
	Categories() Table[model.Category]
}

type accessTokenKey struct{}

// WithAccessToken binds the caller's session token to ctx.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom returns the token bound by WithAccessToken.
func AccessTokenFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

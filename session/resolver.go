// Package session determines which user an operation acts for.
package session

import (
	"context"
	"errors"

	"github.com/goliatone/go-inventory/backend"
)

// ErrAuthRequired is returned when no authenticated user can be determined.
var ErrAuthRequired = errors.New("could not determine authenticated user")

// Resolver resolves the owner id of an operation. An explicit id always
// wins; otherwise the principal of the session bound to the context is used.
type Resolver struct {
	auth backend.Auth
}

func NewResolver(auth backend.Auth) *Resolver {
	return &Resolver{auth: auth}
}

// Resolve returns explicitID unchanged when it is set. Otherwise it asks the
// backend for the current principal and returns its id, or "" when there is
// none. Backend errors are returned as is.
func (r *Resolver) Resolve(ctx context.Context, explicitID string) (string, error) {
	if explicitID != "" {
		return explicitID, nil
	}
	principal, err := r.auth.GetUser(ctx)
	if err != nil {
		return "", err
	}
	if principal == nil {
		return "", nil
	}
	return principal.ID, nil
}

// Require is Resolve with an empty result turned into ErrAuthRequired.
func (r *Resolver) Require(ctx context.Context, explicitID string) (string, error) {
	id, err := r.Resolve(ctx, explicitID)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrAuthRequired
	}
	return id, nil
}

// Package model holds the records exchanged with the backend: principals,
// sessions and the two owner-scoped inventory tables.
package model

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Metadata keys recorded at registration.
const (
	MetaUsername = "username"
	MetaPhone    = "phone"
	MetaFullName = "full_name"
	MetaName     = "name"
)

// Principal is an authenticated account.
type Principal struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	Metadata         map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Confirmed reports whether the account's email address has been verified.
func (p *Principal) Confirmed() bool {
	return p != nil && p.EmailConfirmedAt != nil
}

// DisplayName picks the first non-empty of username, full_name, name and the
// email local part, falling back to "User".
func (p *Principal) DisplayName() string {
	if p == nil {
		return "User"
	}
	for _, key := range []string{MetaUsername, MetaFullName, MetaName} {
		if s, ok := p.Metadata[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	if local, _, ok := strings.Cut(p.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}

// Session binds a principal to an opaque access token.
type Session struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    time.Time  `json:"expires_at"`
	User         *Principal `json:"user"`
}

// Category groups products. Names are unique per owner by convention only.
type Category struct {
	bun.BaseModel `bun:"table:categories" json:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Product is a stocked item. CategoryID may reference a category that no
// longer exists.
type Product struct {
	bun.BaseModel `bun:"table:products" json:"-"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	CategoryID  *int64    `bun:"category_id" json:"category_id"`
	Stock       int       `bun:"stock,notnull" json:"stock"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Description *string   `bun:"description" json:"description"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Clone returns a copy that shares no pointers with p.
func (p Product) Clone() Product {
	out := p
	if p.CategoryID != nil {
		id := *p.CategoryID
		out.CategoryID = &id
	}
	if p.Description != nil {
		d := *p.Description
		out.Description = &d
	}
	return out
}

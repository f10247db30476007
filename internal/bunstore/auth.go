package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var errWeakPassword = fmt.Errorf("password should be at least %d characters", minPasswordLength)

type userRecord struct {
	bun.BaseModel `bun:"table:auth_users"`

	ID               string         `bun:"id,pk"`
	Email            string         `bun:"email,notnull,unique"`
	PasswordHash     string         `bun:"password_hash,notnull"`
	EmailConfirmedAt *time.Time     `bun:"email_confirmed_at"`
	Metadata         map[string]any `bun:"metadata"`
	CreatedAt        time.Time      `bun:"created_at,notnull"`
}

func (u *userRecord) principal() *model.Principal {
	return &model.Principal{
		ID:               u.ID,
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		Metadata:         u.Metadata,
		CreatedAt:        u.CreatedAt,
	}
}

type sessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions"`

	ID           string    `bun:"id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	RefreshToken string    `bun:"refresh_token,notnull"`
	ExpiresAt    time.Time `bun:"expires_at,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type accessClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	db          bun.IDB
	secret      []byte
	ttl         time.Duration
	autoConfirm bool
	now         func() time.Time
}

func newAuthService(db bun.IDB, opts Options) *authService {
	return &authService{
		db:          db,
		secret:      opts.JWTSecret,
		ttl:         opts.SessionTTL,
		autoConfirm: opts.AutoConfirm,
		now:         opts.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *authService) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*model.Principal, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, backend.Wrap("signup", "auth_users", errors.New("email is required"))
	}
	if len(password) < minPasswordLength {
		return nil, backend.Wrap("signup", "auth_users", errWeakPassword)
	}

	exists, err := a.db.NewSelect().Model((*userRecord)(nil)).Where("email = ?", email).Exists(ctx)
	if err != nil {
		return nil, backend.Wrap("signup", "auth_users", err)
	}
	if exists {
		return nil, backend.Wrap("signup", "auth_users", backend.ErrUserAlreadyRegistered)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, backend.Wrap("signup", "auth_users", err)
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	now := a.now().UTC()
	user := &userRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     metadata,
		CreatedAt:    now,
	}
	if a.autoConfirm {
		user.EmailConfirmedAt = &now
	}

	if _, err := a.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, backend.Wrap("signup", "auth_users", err)
	}
	return user.principal(), nil
}

func (a *authService) SignInWithPassword(ctx context.Context, email, password string) (*model.Principal, *model.Session, error) {
	user := new(userRecord)
	err := a.db.NewSelect().Model(user).Where("email = ?", normalizeEmail(email)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, backend.Wrap("signin", "auth_users", backend.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, nil, backend.Wrap("signin", "auth_users", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, backend.Wrap("signin", "auth_users", backend.ErrInvalidCredentials)
	}

	now := a.now().UTC()
	record := &sessionRecord{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    now.Add(a.ttl),
		CreatedAt:    now,
	}
	if _, err := a.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, nil, backend.Wrap("signin", "auth_sessions", err)
	}

	token, err := a.sign(user, record)
	if err != nil {
		return nil, nil, backend.Wrap("signin", "auth_sessions", err)
	}

	principal := user.principal()
	return principal, &model.Session{
		AccessToken:  token,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    record.ExpiresAt,
		User:         principal,
	}, nil
}

func (a *authService) sign(user *userRecord, record *sessionRecord) (string, error) {
	claims := accessClaims{
		SessionID: record.ID,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(record.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *authService) parse(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrInvalidToken, err)
	}
	return claims, nil
}

// current loads the live session and its user for the token bound to ctx.
// Missing, revoked and expired sessions all yield nil without error.
func (a *authService) current(ctx context.Context, op string) (*sessionRecord, *userRecord, string, error) {
	token := backend.AccessTokenFrom(ctx)
	if token == "" {
		return nil, nil, "", nil
	}
	claims, err := a.parse(token)
	if err != nil {
		return nil, nil, "", backend.Wrap(op, "auth_sessions", err)
	}

	record := new(sessionRecord)
	err = a.db.NewSelect().Model(record).Where("id = ?", claims.SessionID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, "", nil
	}
	if err != nil {
		return nil, nil, "", backend.Wrap(op, "auth_sessions", err)
	}
	if !a.now().Before(record.ExpiresAt) {
		return nil, nil, "", nil
	}

	user := new(userRecord)
	err = a.db.NewSelect().Model(user).Where("id = ?", record.UserID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, "", nil
	}
	if err != nil {
		return nil, nil, "", backend.Wrap(op, "auth_users", err)
	}
	return record, user, token, nil
}

func (a *authService) GetSession(ctx context.Context) (*model.Session, error) {
	record, user, token, err := a.current(ctx, "get_session")
	if err != nil || record == nil {
		return nil, err
	}
	return &model.Session{
		AccessToken:  token,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    record.ExpiresAt,
		User:         user.principal(),
	}, nil
}

func (a *authService) GetUser(ctx context.Context) (*model.Principal, error) {
	record, user, _, err := a.current(ctx, "get_user")
	if err != nil || record == nil {
		return nil, err
	}
	return user.principal(), nil
}

func (a *authService) SignOut(ctx context.Context) error {
	token := backend.AccessTokenFrom(ctx)
	if token == "" {
		return nil
	}
	claims, err := a.parse(token)
	if err != nil {
		return backend.Wrap("signout", "auth_sessions", err)
	}
	if _, err := a.db.NewDelete().Model((*sessionRecord)(nil)).Where("id = ?", claims.SessionID).Exec(ctx); err != nil {
		return backend.Wrap("signout", "auth_sessions", err)
	}
	return nil
}

func (a *authService) confirmEmail(ctx context.Context, email string) error {
	now := a.now().UTC()
	res, err := a.db.NewUpdate().Model((*userRecord)(nil)).
		Set("email_confirmed_at = ?", now).
		Where("email = ?", normalizeEmail(email)).
		Exec(ctx)
	if err != nil {
		return backend.Wrap("confirm_email", "auth_users", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return backend.Wrap("confirm_email", "auth_users", backend.ErrNotFound)
	}
	return nil
}

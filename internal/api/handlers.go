package api

import (
	"net/http"
	"time"

	"github.com/goliatone/go-inventory/auth"
	"github.com/goliatone/go-inventory/inventory"
	"github.com/goliatone/go-inventory/model"
	"github.com/goliatone/go-inventory/pkg/di"
	"github.com/rs/zerolog"
)

// Handler serves the JSON API of one container.
type Handler struct {
	container *di.Container
	cookie    string
	secure    bool
}

func NewHandler(container *di.Container, cookie string, secureCookie bool) *Handler {
	return &Handler{container: container, cookie: cookie, secure: secureCookie}
}

type userResponse struct {
	User        *model.Principal `json:"user"`
	DisplayName string           `json:"display_name"`
}

type registerResponse struct {
	User    *model.Principal `json:"user"`
	Message string           `json:"message"`
}

type loginResponse struct {
	Session     *model.Session `json:"session"`
	DisplayName string         `json:"display_name"`
}

type productResponse struct {
	*inventory.ProductResult
	RefreshError string `json:"refresh_error,omitempty"`
}

type categoryResponse struct {
	*inventory.CategoryResult
	RefreshError string `json:"refresh_error,omitempty"`
}

func newProductResponse(res *inventory.ProductResult) productResponse {
	out := productResponse{ProductResult: res}
	if res.RefreshError != nil {
		out.RefreshError = res.RefreshError.Error()
	}
	return out
}

func newCategoryResponse(res *inventory.CategoryResult) categoryResponse {
	out := categoryResponse{CategoryResult: res}
	if res.RefreshError != nil {
		out.RefreshError = res.RefreshError.Error()
	}
	return out
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register creates an account awaiting email confirmation.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form auth.RegisterForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.container.Accounts().Register(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		User:    p,
		Message: "Account created. Check your email to confirm your address before signing in.",
	})
}

// Login opens a session and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form auth.LoginForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.container.Accounts().Login(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.AccessToken, sess.ExpiresAt)
	if sess.User != nil {
		zerolog.Ctx(r.Context()).Info().Str("user_id", sess.User.ID).Msg("signed in")
	}
	writeJSON(w, http.StatusOK, loginResponse{Session: sess, DisplayName: auth.DisplayName(sess.User)})
}

// Logout closes the session, drops the caller's workspace and clears the
// cookie. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := h.container.Resolver().Resolve(ctx, "")
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("logout without a valid session")
	}
	if owner != "" {
		if err := h.container.Accounts().Logout(ctx); err != nil {
			writeError(w, r, err)
			return
		}
		if err := h.container.Evict(ctx, owner); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("workspace eviction failed")
		}
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.container.Accounts().CurrentUser(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: p, DisplayName: auth.DisplayName(p)})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	stats, err := s.workspace.Dashboard.Stats(r.Context(), s.owner, reloadParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

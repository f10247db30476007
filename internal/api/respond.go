package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-inventory/auth"
	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/inventory"
	"github.com/goliatone/go-inventory/session"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

var errInvalidID = errors.New("invalid id")

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status and response body. Backend
// messages are passed through unchanged.
func statusFor(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}

	var (
		invErr  *inventory.ValidationError
		authErr *auth.ValidationError
		badReq  *badRequestError
		beErr   *backend.Error
	)
	switch {
	case errors.As(err, &invErr):
		body.Fields = invErr.Fields
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &authErr):
		body.Fields = authErr.Fields
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &badReq):
		return http.StatusBadRequest, body
	case errors.Is(err, session.ErrAuthRequired):
		return http.StatusUnauthorized, body
	case errors.Is(err, auth.ErrUnconfirmedEmail):
		return http.StatusForbidden, body
	case errors.Is(err, inventory.ErrSubmissionInProgress):
		return http.StatusConflict, body
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, backend.ErrUserAlreadyRegistered):
		return http.StatusConflict, body
	case errors.Is(err, backend.ErrInvalidCredentials), errors.Is(err, backend.ErrInvalidToken):
		return http.StatusUnauthorized, body
	case errors.Is(err, backend.ErrUnscoped):
		return http.StatusForbidden, body
	case errors.As(err, &beErr), errors.Is(err, auth.ErrNoSession):
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	event := zerolog.Ctx(r.Context()).Debug()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, body)
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &badRequestError{err: errors.New("invalid request body")}
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &badRequestError{err: errInvalidID}
	}
	return id, nil
}

func reloadParam(r *http.Request) bool {
	reload, _ := strconv.ParseBool(r.URL.Query().Get("reload"))
	return reload
}

package backend

import "errors"

var (
	ErrNotFound              = errors.New("no rows returned")
	ErrUnscoped              = errors.New("owner-scoped query requires a user_id predicate")
	ErrInvalidCredentials    = errors.New("invalid login credentials")
	ErrUserAlreadyRegistered = errors.New("user already registered")
	ErrInvalidToken          = errors.New("invalid or expired session token")
)

// Error is a failed backend call. Its message is the underlying backend
// message unchanged; Op and Table are kept for logs.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "backend " + e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err, otherwise err wrapped in an *Error. An
// err that already is an *Error is returned unchanged.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Op: op, Table: table, Err: err}
}

package auth

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrUnconfirmedEmail is returned by Login for accounts that have not
	// verified their email address. The new session has been signed out.
	ErrUnconfirmedEmail = errors.New("Please verify your email before signing in. Check your inbox and spam folder.")

	// ErrNoSession is returned by Login when the backend accepted the
	// credentials but issued no session.
	ErrNoSession = errors.New("Could not create the session. Please try again.")
)

// ValidationError carries per-field messages for a rejected account form.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return strings.Join(msgs, " ")
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := map[string]string{}
	for k, v := range errs {
		if v != nil {
			fields[k] = v.Error()
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

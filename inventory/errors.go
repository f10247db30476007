package inventory

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrSubmissionInProgress is returned when the same form is submitted while
// a previous submission has not finished.
var ErrSubmissionInProgress = errors.New("a submission for this form is already in progress")

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = e.Fields[k]
	}
	return strings.Join(parts, " ")
}

// Message returns the message for field, or "".
func (e *ValidationError) Message(field string) string {
	return e.Fields[field]
}

// fromValidation converts ozzo-validation errors. Nil entries are dropped
// and nil is returned when nothing remains.
func fromValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
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

package domain

import (
	"errors"
	"fmt"
	"sort"
)

// UnauthenticatedError is returned for every credential problem. Msg is the only
// part that reaches the client; Err stays server-side.
type UnauthenticatedError struct {
	Msg string
	Err error
}

func (e UnauthenticatedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "authentication invalid"
}

func (e UnauthenticatedError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// Fields returns the error in the field-keyed shape used by ValidationErrors.
func (e ValidationError) Fields() map[string][]string {
	field := e.Field
	if field == "" {
		field = "body"
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Error()
	}
	return map[string][]string{field: {msg}}
}

// ValidationErrors collects every failing field of one payload.
type ValidationErrors map[string][]string

func (e ValidationErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", keys[0])
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsUnauthenticated(err error) bool {
	var target UnauthenticatedError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports both single-field and multi-field validation failures.
func IsValidation(err error) bool {
	var single ValidationError
	if errors.As(err, &single) {
		return true
	}
	var multi ValidationErrors
	return errors.As(err, &multi)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// ValidationFields extracts the field-keyed messages of a validation failure.
func ValidationFields(err error) map[string][]string {
	var multi ValidationErrors
	if errors.As(err, &multi) {
		return multi
	}
	var single ValidationError
	if errors.As(err, &single) {
		return single.Fields()
	}
	return nil
}

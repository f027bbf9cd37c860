package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"labchem/internal/forms"
	"labchem/internal/repositories"
)

var (
	// ErrNotFound is returned for an unknown reagent ID.
	ErrNotFound = repositories.ErrNotFound
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = repositories.ErrDuplicateEmail
	// ErrEmailNotFound is returned by Login when no user has the email.
	ErrEmailNotFound = errors.New("email does not exist")
	// ErrInvalidCredentials is returned by Login when the password does not match.
	ErrInvalidCredentials = errors.New("wrong password")
	// ErrPasswordTooLong is returned by a hasher that cannot take the whole password.
	ErrPasswordTooLong = errors.New("password too long")
)

// ValidationError carries the field-level errors of a rejected form.
type ValidationError struct {
	Fields forms.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// validateForm wraps forms.Validate into a *ValidationError.
func validateForm(form any) error {
	if errs := forms.Validate(form); errs != nil {
		return &ValidationError{Fields: errs}
	}
	return nil
}

package store

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by updates and deletes whose id matches nothing.
// The state returned alongside it is the input state, untouched.
var ErrNotFound = errors.New("not found")

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError rejects an operation before anything is written.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// fieldInvalid is shorthand for a one-field ValidationError.
func fieldInvalid(field, msg string) error {
	return NewValidationError(errors.New(field+": "+msg), FieldError{Field: field, Error: msg})
}

// IsValidation reports whether err (or its cause) is a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// AsValidation returns the *ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// fromValidator turns validator output into a ValidationError whose field
// names are the JSON names of the input.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	flds := make([]FieldError, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(translator)
		flds = append(flds, FieldError{Field: fe.Field(), Error: msg})
		msgs = append(msgs, msg)
	}
	return NewValidationError(errors.New(strings.Join(msgs, "; ")), flds...)
}

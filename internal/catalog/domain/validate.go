package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate uses the same "binding" tag the HTTP layer binds with, so the loader
// and the API enforce one set of field constraints.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}()

// Validate checks a record against its field constraints. Failures wrap
// ErrValidation.
func Validate(record any) error {
	return ValidationError(validate.Struct(record))
}

// ValidationError wraps a decode or validator failure in ErrValidation, listing
// each failed field constraint. nil stays nil.
func ValidationError(err error) error {
	if err == nil || errors.Is(err, ErrValidation) {
		return err
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

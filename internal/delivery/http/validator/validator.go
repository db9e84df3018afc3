// Package validator plugs go-playground/validator into echo's binding flow.
package validator

import (
	domainerrors "vanguard/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// echoValidator adapts the playground validator to echo.Validator.
type echoValidator struct {
	validate *playground.Validate
}

// New creates the validator used by the HTTP server.
func New() *echoValidator {
	return &echoValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate checks struct tags and maps failures to the domain taxonomy so
// the error middleware renders them as 400s with field details.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

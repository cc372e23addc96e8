// Package validator adapts go-playground/validator to echo's Validator
// interface so handlers can call c.Validate on bound request structs.
package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator wraps a validator.Validate instance.
type Validator struct {
	v *validator.Validate
}

// New returns an echo-compatible request validator.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.  Failures surface as HTTP 400 with
// the validator's message, which is descriptive enough for an API client.
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

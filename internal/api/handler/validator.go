package handler

import (
	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/guard"
)

// echoValidator lets Echo call c.Validate(req) with the shared
// go-playground validator.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface. Failures come back as
// validation errors so the error handler renders them as 400.
func (ev *echoValidator) Validate(i any) error {
	if err := guard.ValidateStruct(i); err != nil {
		return domain.ValidationError(err.Error())
	}
	return nil
}

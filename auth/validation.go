package auth

import (
	"strings"

	"github.com/jrsteele09/go-ticket-client/users"
)

// Validator checks that a call has what the API needs before it is sent.
// Field rules (password strength, email format) stay with the server.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials validates login credentials
func (v *Validator) ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return MissingEmailErr
	}
	if password == "" {
		return MissingPasswordErr
	}
	return nil
}

// ValidateVerification validates the second login step. The code may only
// be omitted when the step is skipped.
func (v *Validator) ValidateVerification(tempSessionID, code string, skip bool) error {
	if strings.TrimSpace(tempSessionID) == "" {
		return MissingSessionHandleErr
	}
	if !skip {
		return v.ValidateCode(code)
	}
	return nil
}

func (v *Validator) ValidateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return MissingCodeErr
	}
	return nil
}

func (v *Validator) ValidateRegistration(req users.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return MissingUsernameErr
	}
	if err := v.ValidateCredentials(req.Email, req.Password); err != nil {
		return err
	}
	if !req.Role.Valid() {
		return InvalidRoleErr
	}
	return nil
}

func (v *Validator) ValidatePasswordChange(current, next string) error {
	if current == "" || next == "" {
		return MissingPasswordErr
	}
	return nil
}

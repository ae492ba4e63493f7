package auth

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-ticket-client/users"
)

// API endpoints, relative to the API root.
const (
	pathSmartLogin       = "/users/smart-login/"
	pathSmartLoginVerify = "/users/smart-login/verify/"
	pathTokenCreate      = "/auth/jwt/create/"
	pathUsers            = "/auth/users/"
	pathMe               = "/auth/users/me/"
	pathSetPassword      = "/auth/users/set_password/"
	pathTwoFactorSetup   = "/users/two-factor/setup/"
	pathTwoFactorEnable  = "/users/two-factor/enable/"
	pathTwoFactorDisable = "/users/two-factor/disable/"
	pathTwoFactorVerify  = "/users/two-factor/verify/"
	pathTwoFactorStatus  = "/users/two-factor/status/"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginChallenge is the answer to the first login step. No tokens are
// issued until the challenge is verified with SmartLoginVerify.
type LoginChallenge struct {
	TempSessionID    string                `json:"temp_session_id"`
	Requires2FA      bool                  `json:"requires_2fa"`
	TwoFactorEnabled bool                  `json:"two_factor_enabled"`
	Method           users.TwoFactorMethod `json:"two_factor_method,omitempty"`
	Message          string                `json:"message,omitempty"`
}

type verifyRequest struct {
	TempSessionID string `json:"temp_session_id"`
	Code          string `json:"code"`
	Skip          bool   `json:"skip"`
}

// TokenResponse is returned by the token issuing endpoints. User is only
// present on the smart login verification step.
type TokenResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    json.RawMessage `json:"user,omitempty"`
}

type passwordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ReNewPassword   string `json:"re_new_password"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// TwoFactorStatus describes the user's two-factor configuration.
type TwoFactorStatus struct {
	Enabled             bool                  `json:"two_factor_enabled"`
	Method              users.TwoFactorMethod `json:"two_factor_method,omitempty"`
	MethodDisplay       string                `json:"two_factor_method_display,omitempty"`
	CanUseSMS           bool                  `json:"can_use_sms"`
	PhoneNumberRequired bool                  `json:"phone_number_required"`
}

// TwoFactorResult is the acknowledgement of a two-factor change or check.
type TwoFactorResult struct {
	Message   string     `json:"message,omitempty"`
	Verified  bool       `json:"verified,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

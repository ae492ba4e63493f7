package users

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// TwoFactorMethod is how a user receives verification codes.
type TwoFactorMethod string

const (
	TwoFactorEmail TwoFactorMethod = "email"
	TwoFactorSMS   TwoFactorMethod = "sms"
)

// RoleType is the account role. It decides which views and actions are available.
type RoleType string

const (
	RoleAdmin      RoleType = "admin"      // Manages tickets and assigns contractors
	RoleContractor RoleType = "contractor" // Works tickets assigned to them
)

func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleContractor
}

// ID is a user identifier. The API sends integer primary keys in some
// payloads and strings in others; both decode.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers and everything else,
// including "007" and "+5", as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Profile is the signed-in user's account as returned by /auth/users/me/.
type Profile struct {
	ID               ID              `json:"id"`
	Email            string          `json:"email"`
	Username         string          `json:"username,omitempty"`
	FirstName        string          `json:"first_name,omitempty"`
	LastName         string          `json:"last_name,omitempty"`
	Role             RoleType        `json:"role"`
	PhoneNumber      string          `json:"phone_number,omitempty"`
	TwoFactorEnabled bool            `json:"two_factor_enabled"`
	TwoFactorMethod  TwoFactorMethod `json:"two_factor_method,omitempty"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func (p *Profile) IsContractor() bool {
	return p != nil && p.Role == RoleContractor
}

func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// Merge overlays the fields present in raw (a server representation of the
// profile) onto a copy of p. Fields absent from raw keep their current value.
func (p Profile) Merge(raw json.RawMessage) (Profile, error) {
	merged := p
	if len(bytes.TrimSpace(raw)) == 0 {
		return merged, nil
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return p, err
	}
	return merged, nil
}

// RegisterRequest is the sign-up payload. ConfirmPassword is sent as re_password.
type RegisterRequest struct {
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"re_password"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	PhoneNumber     string   `json:"phone_number"`
	Role            RoleType `json:"role"`
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (u ProfileUpdate) Empty() bool {
	return u.Username == nil && u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil
}

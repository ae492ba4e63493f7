package sessions

import (
	"context"

	"github.com/jrsteele09/go-ticket-client/users"
)

func (m *Manager) Register(ctx context.Context, req users.RegisterRequest) (err error) {
	m.begin()
	defer func() { m.end(err, RegistrationFailedMsg) }()

	_, err = m.auth.Register(ctx, req)
	return err
}

// UpdateProfile applies a partial update and merges the server's answer
// over the cached profile, returning the merged profile.
func (m *Manager) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (profile *users.Profile, err error) {
	m.begin()
	defer func() { m.end(err, ProfileUpdateFailedMsg) }()

	raw, err := m.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}

	current := users.Profile{}
	if u := m.User(); u != nil {
		current = *u
	}
	merged, err := current.Merge(raw)
	if err != nil {
		return nil, err
	}
	if err := m.persistUser(ctx, &merged); err != nil {
		return nil, err
	}
	return m.User(), nil
}

func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) (err error) {
	m.begin()
	defer func() { m.end(err, PasswordChangeFailedMsg) }()

	return m.auth.ChangePassword(ctx, currentPassword, newPassword)
}

// EnableTwoFactor turns two-factor on and marks the cached profile.
func (m *Manager) EnableTwoFactor(ctx context.Context, code string) (err error) {
	m.begin()
	defer func() { m.end(err, TwoFactorEnableFailMsg) }()

	if _, err = m.auth.EnableTwoFactor(ctx, code); err != nil {
		return err
	}
	return m.setTwoFactor(ctx, true)
}

func (m *Manager) DisableTwoFactor(ctx context.Context) (err error) {
	m.begin()
	defer func() { m.end(err, TwoFactorDisableFailMsg) }()

	if _, err = m.auth.DisableTwoFactor(ctx); err != nil {
		return err
	}
	return m.setTwoFactor(ctx, false)
}

func (m *Manager) setTwoFactor(ctx context.Context, enabled bool) error {
	u := m.User()
	if u == nil {
		return nil
	}
	u.TwoFactorEnabled = enabled
	return m.persistUser(ctx, u)
}

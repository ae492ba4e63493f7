package sessions

import (
	"context"

	"github.com/jrsteele09/go-ticket-client/auth"
	"github.com/jrsteele09/go-ticket-client/users"
)

// Login is the first step of the two-step login. It checks the credentials
// and returns the challenge to verify; no tokens are issued yet.
func (m *Manager) Login(ctx context.Context, email, password string) (challenge *auth.LoginChallenge, err error) {
	m.begin()
	defer func() { m.end(err, LoginFailedMsg) }()

	return m.auth.SmartLogin(ctx, email, password)
}

// VerifyLogin completes a two-step login with the code sent to the user, or
// with skip set when the account has no two-factor. Tokens and the profile
// are persisted; the profile is fetched when the response lacks one.
func (m *Manager) VerifyLogin(ctx context.Context, tempSessionID, code string, skip bool) (profile *users.Profile, err error) {
	m.begin()
	defer func() { m.end(err, LoginFailedMsg) }()

	_, profile, err = m.auth.SmartLoginVerify(ctx, tempSessionID, code, skip)
	if err != nil {
		return nil, err
	}
	m.markTokens(ctx)

	if profile == nil {
		return m.fetchUser(ctx)
	}
	if err := m.persistUser(ctx, profile); err != nil {
		return nil, err
	}
	return m.User(), nil
}

// LegacyLogin issues tokens in one step for accounts without two-factor.
// The session is authenticated but not verified until VerifyUser.
func (m *Manager) LegacyLogin(ctx context.Context, email, password string) (err error) {
	m.begin()
	defer func() { m.end(err, LoginFailedMsg) }()

	if _, err = m.auth.Login(ctx, email, password); err != nil {
		return err
	}
	m.markTokens(ctx)
	return nil
}

// VerifyUser fetches and caches the profile of the authenticated user.
func (m *Manager) VerifyUser(ctx context.Context) (profile *users.Profile, err error) {
	m.begin()
	defer func() { m.end(err, VerificationFailedMsg) }()

	return m.fetchUser(ctx)
}

// FetchUser refreshes the cached profile. Failures are returned without
// touching the error field.
func (m *Manager) FetchUser(ctx context.Context) (*users.Profile, error) {
	return m.fetchUser(ctx)
}

func (m *Manager) fetchUser(ctx context.Context) (*users.Profile, error) {
	profile, err := m.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.persistUser(ctx, profile); err != nil {
		return nil, err
	}
	return m.User(), nil
}

package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-ticket-client/auth"
	"github.com/jrsteele09/go-ticket-client/gateway"
	"github.com/jrsteele09/go-ticket-client/token/jwt"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Fallback messages recorded when the API gives no reason of its own.
const (
	LoginFailedMsg          = "Login failed"
	VerificationFailedMsg   = "User verification failed"
	RegistrationFailedMsg   = "Registration failed"
	ProfileUpdateFailedMsg  = "Profile update failed"
	PasswordChangeFailedMsg = "Password change failed"
	TwoFactorEnableFailMsg  = "2FA enable failed"
	TwoFactorDisableFailMsg = "2FA disable failed"
)

// Manager owns the signed-in session: the cached profile, whether a token
// is held, and the last error to show. It is safe for concurrent use and
// never holds its lock across a network call.
//
// Token validity is judged locally from the exp claim. That only decides
// what to show; the server's 401 is what actually ends a session.
type Manager struct {
	auth      *auth.Service
	store     tokenstore.Repo
	inspector *jwt.Inspector
	log       zerolog.Logger

	mu          sync.RWMutex
	user        *users.Profile
	tokenExists bool
	initialized bool
	generation  uint64
	loading     int
	lastError   string

	initGroup singleflight.Group
}

type ManagerOption func(*Manager)

func WithInspector(i *jwt.Inspector) ManagerOption {
	return func(m *Manager) {
		m.inspector = i
	}
}

// WithNowFunc sets the clock used for token expiry (primarily for testing).
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.inspector = jwt.NewInspector(jwt.WithNowFunc(now))
	}
}

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

func NewManager(authService *auth.Service, store tokenstore.Repo, options ...ManagerOption) (*Manager, error) {
	if authService == nil {
		return nil, errors.New("[sessions.NewManager] auth service is required")
	}
	if store == nil {
		return nil, errors.New("[sessions.NewManager] token store is required")
	}

	m := &Manager{
		auth:      authService,
		store:     store,
		inspector: jwt.NewInspector(),
		log:       log.Logger,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// InitAuth restores the session from the token store. Concurrent callers
// share one run, and once it has completed further calls return at once
// until Logout or Reset. A stored token that is no longer valid clears the
// whole session. The manager counts as initialized even when this fails.
func (m *Manager) InitAuth(ctx context.Context) error {
	if m.Initialized() {
		return nil
	}
	_, err, _ := m.initGroup.Do("init", func() (any, error) {
		if m.Initialized() {
			return nil, nil
		}
		return nil, m.initAuth(ctx)
	})
	return err
}

func (m *Manager) initAuth(ctx context.Context) (returnError error) {
	m.startLoading()
	m.mu.RLock()
	generation := m.generation
	m.mu.RUnlock()

	defer func() {
		m.mu.Lock()
		m.loading--
		if m.generation == generation {
			m.initialized = true
		}
		m.mu.Unlock()
	}()

	defer func() {
		if returnError != nil {
			m.log.Warn().Err(returnError).Msg("restoring session failed, clearing")
			m.clearSession(ctx)
		}
	}()

	profile, err := m.loadPersistedUser(ctx)
	if err != nil {
		return err
	}

	access, err := m.store.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		return errors.Wrap(err, "[Manager.InitAuth] reading access token")
	}

	m.mu.Lock()
	if m.generation != generation {
		// logged out while restoring
		m.mu.Unlock()
		return nil
	}
	m.user = profile
	m.tokenExists = access != ""
	m.mu.Unlock()

	if access != "" && !m.inspector.IsValid(access) {
		m.log.Info().Msg("stored access token expired, clearing session")
		m.clearSession(ctx)
	}
	return nil
}

// loadPersistedUser reads the cached profile. A corrupt entry is dropped
// rather than failing the restore.
func (m *Manager) loadPersistedUser(ctx context.Context) (*users.Profile, error) {
	profile, err := auth.LoadProfile(ctx, m.store)
	if errors.Is(err, auth.CorruptProfileErr) {
		m.log.Warn().Err(err).Msg("discarding unreadable user data")
		if clearErr := m.store.Clear(ctx, tokenstore.SlotUserData); clearErr != nil {
			return nil, errors.Wrap(clearErr, "[Manager.InitAuth] dropping user data")
		}
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.InitAuth] reading user data")
	}
	return profile, nil
}

// clearSession forgets tokens, profile and error; errors from the store are logged.
func (m *Manager) clearSession(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.log.Err(err).Msg("clearing token store")
	}
	m.mu.Lock()
	m.user = nil
	m.lastError = ""
	m.tokenExists = false
	m.mu.Unlock()
}

// IsTokenValid reports whether the stored access token expires more than
// the expiry margin from now.
func (m *Manager) IsTokenValid(ctx context.Context) bool {
	access, err := m.store.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		m.log.Err(err).Msg("reading access token")
		return false
	}
	return m.inspector.IsValid(access)
}

func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	m.mu.RLock()
	exists := m.tokenExists
	m.mu.RUnlock()

	return exists && m.IsTokenValid(ctx) && m.auth.IsAuthenticated(ctx)
}

// IsVerified is IsAuthenticated plus a cached profile.
func (m *Manager) IsVerified(ctx context.Context) bool {
	return m.IsAuthenticated(ctx) && m.User() != nil
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.IsAdmin()
}

func (m *Manager) IsContractor() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.IsContractor()
}

// User returns a copy of the cached profile, or nil.
func (m *Manager) User() *users.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading > 0
}

// Error is the message of the last failed operation, or "".
func (m *Manager) Error() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = ""
}

// Logout clears the session locally and re-arms InitAuth. It makes no
// network call and cannot fail from the caller's point of view.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	m.mu.Unlock()

	m.clearSession(ctx)
	m.mu.Lock()
	m.initialized = false
	m.mu.Unlock()
}

// Reset drops in-memory state after the token store was cleared elsewhere,
// e.g. when the gateway gives up on a refresh.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.user = nil
	m.lastError = ""
	m.tokenExists = false
	m.initialized = false
}

// begin marks an operation as running and clears the previous error.
func (m *Manager) begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading++
	m.lastError = ""
}

func (m *Manager) startLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading++
}

// end finishes an operation, recording err's message (or fallback) when it failed.
func (m *Manager) end(err error, fallback string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--
	if err != nil {
		m.lastError = gateway.Message(err, fallback)
	}
}

func (m *Manager) persistUser(ctx context.Context, p *users.Profile) error {
	if err := auth.SaveProfile(ctx, m.store, p); err != nil {
		return err
	}
	u := *p
	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return nil
}

func (m *Manager) markTokens(ctx context.Context) {
	exists := m.auth.IsAuthenticated(ctx)
	m.mu.Lock()
	m.tokenExists = exists
	m.mu.Unlock()
}

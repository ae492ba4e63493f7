package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/go-ticket-client/gateway"
	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/token"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// API is the subset of the gateway the service calls through.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
}

// Refresher exchanges the stored refresh token for a new access token. stale
// is the access token being replaced.
type Refresher interface {
	Refresh(ctx context.Context, stale string) (string, error)
}

// Service wraps the authentication endpoints. It persists issued tokens and
// returns API failures unchanged for the caller to interpret.
type Service struct {
	api       API
	store     tokenstore.Repo
	refresher Refresher
	validator *Validator
	log       zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// WithRefresher sets the exchange RefreshToken goes through. Without it a
// gateway's own refresher is used.
func WithRefresher(r Refresher) ServiceOption {
	return func(s *Service) {
		s.refresher = r
	}
}

func NewService(api API, store tokenstore.Repo, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.New("[auth.NewService] api is required")
	}
	if store == nil {
		return nil, errors.New("[auth.NewService] token store is required")
	}

	s := &Service{
		api:       api,
		store:     store,
		validator: NewValidator(),
		log:       log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.refresher == nil {
		if gw, ok := api.(interface{ Refresher() gateway.Refresher }); ok {
			s.refresher = gw.Refresher()
		}
	}
	return s, nil
}

// SmartLogin checks the credentials and opens a short lived login session.
func (s *Service) SmartLogin(ctx context.Context, email, password string) (*LoginChallenge, error) {
	if err := s.validator.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	var challenge LoginChallenge
	if err := s.api.Post(ctx, pathSmartLogin, credentials{Email: email, Password: password}, &challenge); err != nil {
		return nil, errors.Wrap(err, "[Service.SmartLogin]")
	}
	return &challenge, nil
}

// SmartLoginVerify completes a smart login with the emailed code, or with
// skip set for accounts without two-factor. Issued tokens and the returned
// profile are persisted.
func (s *Service) SmartLoginVerify(ctx context.Context, tempSessionID, code string, skip bool) (*oauth2.Token, *users.Profile, error) {
	if err := s.validator.ValidateVerification(tempSessionID, code, skip); err != nil {
		return nil, nil, err
	}

	var resp TokenResponse
	req := verifyRequest{TempSessionID: tempSessionID, Code: code, Skip: skip}
	if err := s.api.Post(ctx, pathSmartLoginVerify, req, &resp); err != nil {
		return nil, nil, errors.Wrap(err, "[Service.SmartLoginVerify]")
	}

	pair, err := s.persistTokens(ctx, resp)
	if err != nil {
		return nil, nil, err
	}

	raw := bytes.TrimSpace(resp.User)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return pair, nil, nil
	}
	var profile users.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, nil, ierrors.Wrapf(ierrors.ErrInvalidResponse, "[Service.SmartLoginVerify] user: %v", err)
	}
	if err := SaveProfile(ctx, s.store, &profile); err != nil {
		return nil, nil, err
	}
	return pair, &profile, nil
}

// Login is the single step token login for accounts without two-factor.
func (s *Service) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	if err := s.validator.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	var resp TokenResponse
	if err := s.api.Post(ctx, pathTokenCreate, credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Service.Login]")
	}
	return s.persistTokens(ctx, resp)
}

func (s *Service) persistTokens(ctx context.Context, resp TokenResponse) (*oauth2.Token, error) {
	if resp.Access == "" {
		return nil, ierrors.Wrapf(ierrors.ErrInvalidResponse, "token response has no access token")
	}
	pair := token.NewPair(resp.Access, resp.Refresh)
	if err := token.Save(ctx, s.store, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Service) Register(ctx context.Context, req users.RegisterRequest) (*users.Profile, error) {
	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, err
	}
	var created users.Profile
	if err := s.api.Post(ctx, pathUsers, req, &created); err != nil {
		return nil, errors.Wrap(err, "[Service.Register]")
	}
	return &created, nil
}

func (s *Service) CurrentUser(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	if err := s.api.Get(ctx, pathMe, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "[Service.CurrentUser]")
	}
	return &profile, nil
}

// Logout forgets the session locally. The API keeps no session to end.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return errors.Wrap(err, "[Service.Logout]")
	}
	return nil
}

// IsAuthenticated reports whether an access token is stored, valid or not.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	access, err := s.store.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		s.log.Err(err).Msg("reading access token")
		return false
	}
	return access != ""
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Any failure other than cancellation logs the user out.
func (s *Service) RefreshToken(ctx context.Context) (string, error) {
	if s.refresher == nil {
		return "", errors.New("[Service.RefreshToken] no refresher configured")
	}
	current, err := s.store.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		return "", errors.Wrap(err, "[Service.RefreshToken] reading access token")
	}

	access, err := s.refresher.Refresh(ctx, current)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if logoutErr := s.Logout(ctx); logoutErr != nil {
			s.log.Err(logoutErr).Msg("logout after failed refresh")
		}
		return "", errors.Wrap(err, "[Service.RefreshToken]")
	}
	return access, nil
}

func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := s.validator.ValidatePasswordChange(currentPassword, newPassword); err != nil {
		return err
	}
	body := passwordChange{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
		ReNewPassword:   newPassword,
	}
	if err := s.api.Post(ctx, pathSetPassword, body, nil); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword]")
	}
	return nil
}

// UpdateProfile sends a partial update and returns the server's
// representation of the profile as sent, for merging.
func (s *Service) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (json.RawMessage, error) {
	if update.Empty() {
		return nil, EmptyProfileUpdateErr
	}
	var raw json.RawMessage
	if err := s.api.Patch(ctx, pathMe, update, &raw); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateProfile]")
	}
	return raw, nil
}

func (s *Service) TwoFactorSetup(ctx context.Context) (*TwoFactorStatus, error) {
	var status TwoFactorStatus
	if err := s.api.Get(ctx, pathTwoFactorSetup, nil, &status); err != nil {
		return nil, errors.Wrap(err, "[Service.TwoFactorSetup]")
	}
	return &status, nil
}

func (s *Service) EnableTwoFactor(ctx context.Context, code string) (*TwoFactorResult, error) {
	if err := s.validator.ValidateCode(code); err != nil {
		return nil, err
	}
	var result TwoFactorResult
	if err := s.api.Post(ctx, pathTwoFactorEnable, codeRequest{Code: code}, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.EnableTwoFactor]")
	}
	return &result, nil
}

func (s *Service) DisableTwoFactor(ctx context.Context) (*TwoFactorResult, error) {
	var result TwoFactorResult
	if err := s.api.Post(ctx, pathTwoFactorDisable, nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.DisableTwoFactor]")
	}
	return &result, nil
}

func (s *Service) VerifyTwoFactor(ctx context.Context, code string) (*TwoFactorResult, error) {
	if err := s.validator.ValidateCode(code); err != nil {
		return nil, err
	}
	var result TwoFactorResult
	if err := s.api.Post(ctx, pathTwoFactorVerify, codeRequest{Code: code}, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.VerifyTwoFactor]")
	}
	return &result, nil
}

func (s *Service) TwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error) {
	var status TwoFactorStatus
	if err := s.api.Get(ctx, pathTwoFactorStatus, nil, &status); err != nil {
		return nil, errors.Wrap(err, "[Service.TwoFactorStatus]")
	}
	return &status, nil
}

package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Path is the token refresh endpoint relative to the API root.
const Path = "/auth/jwt/refresh/"

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Manager exchanges the stored refresh token for a new access token.
// Concurrent callers share a single exchange.
type Manager struct {
	endpoint string
	client   Doer
	store    tokenstore.Repo
	group    singleflight.Group
	log      zerolog.Logger
}

type ManagerOption func(*Manager)

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a refresh manager posting to endpoint. The client must
// not be one that itself retries on 401.
func NewManager(endpoint string, client Doer, store tokenstore.Repo, options ...ManagerOption) *Manager {
	m := &Manager{
		endpoint: endpoint,
		client:   client,
		store:    store,
		log:      log.Logger,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Refresh returns a usable access token. stale is the token the caller was
// rejected with: when the store already holds a different one, another
// caller has refreshed in the meantime and that token is returned without a
// network exchange.
func (m *Manager) Refresh(ctx context.Context, stale string) (string, error) {
	ch := m.group.DoChan("refresh", func() (any, error) {
		// the exchange is shared, so one caller giving up must not fail the rest
		return m.exchange(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *Manager) exchange(ctx context.Context, stale string) (string, error) {
	current, err := m.store.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] reading access token")
	}
	if current != "" && current != stale {
		return current, nil
	}

	refreshToken, err := m.store.Get(ctx, tokenstore.SlotRefreshToken)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] reading refresh token")
	}
	if refreshToken == "" {
		return "", ierrors.ErrNoRefreshToken
	}

	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] encoding request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ierrors.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ierrors.ErrRefreshFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.log.Warn().Int("status", resp.StatusCode).Msg("token refresh rejected")
		return "", errors.Wrapf(ierrors.ErrRefreshFailed, "status %d", resp.StatusCode)
	}

	var out refreshResponse
	if err := json.Unmarshal(body, &out); err != nil || out.Access == "" {
		return "", errors.Wrap(ierrors.ErrRefreshFailed, "response has no access token")
	}

	if err := m.store.Set(ctx, tokenstore.SlotAccessToken, out.Access); err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] storing access token")
	}
	// rotated refresh tokens replace the old one
	if out.Refresh != "" {
		if err := m.store.Set(ctx, tokenstore.SlotRefreshToken, out.Refresh); err != nil {
			return "", errors.Wrap(err, "[Manager.Refresh] storing refresh token")
		}
	}

	m.log.Debug().Msg("access token refreshed")
	return out.Access, nil
}

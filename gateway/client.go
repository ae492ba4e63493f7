package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/token"
	"github.com/jrsteele09/go-ticket-client/token/refresh"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// APIPrefix is appended to the server root to form the API base URL.
const APIPrefix = "/api"

// Refresher obtains a new access token after a 401. stale is the token the
// server rejected.
type Refresher interface {
	Refresh(ctx context.Context, stale string) (string, error)
}

// SessionExpiredFunc runs after a failed refresh has cleared the token store.
type SessionExpiredFunc func(ctx context.Context)

// Client is the single HTTP entry point to the API. It attaches the stored
// access token to every call and, on a 401, refreshes once and retries.
type Client struct {
	baseURL   string
	http      *http.Client
	store     tokenstore.Repo
	refresher Refresher
	onExpired SessionExpiredFunc
	log       zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithRefresher(r Refresher) ClientOption {
	return func(cl *Client) {
		cl.refresher = r
	}
}

// WithSessionExpiredHandler sets what happens when the session cannot be
// refreshed, typically resetting state and sending the user to the login route.
func WithSessionExpiredHandler(f SessionExpiredFunc) ClientOption {
	return func(cl *Client) {
		cl.onExpired = f
	}
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(cl *Client) {
		cl.log = l
	}
}

// New creates a gateway for the server rooted at serverURL, e.g.
// http://localhost:8000. Unless WithRefresher is given, refreshes post to
// the API's refresh endpoint with the same underlying transport.
func New(serverURL string, store tokenstore.Repo, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(serverURL, "/") + APIPrefix,
		http:    &http.Client{},
		store:   store,
		log:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.refresher == nil {
		c.refresher = refresh.NewManager(c.baseURL+refresh.Path, c.http, store, refresh.WithLogger(c.log))
	}
	if c.onExpired == nil {
		c.onExpired = func(context.Context) {
			c.log.Warn().Msg("session expired, login required")
		}
	}
	return c
}

// Refresher is the exchange the client uses after a 401. Other callers that
// need a fresh token share it so concurrent refreshes still collapse into one.
func (c *Client) Refresher() Refresher {
	return c.refresher
}

// BaseURL is the API root all request paths are relative to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, NewRequest(http.MethodGet, path).WithQuery(query), out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, NewRequest(http.MethodPost, path).WithBody(body), out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, NewRequest(http.MethodPut, path).WithBody(body), out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, NewRequest(http.MethodPatch, path).WithBody(body), out)
}

// Do sends req and decodes a 2xx JSON response into out (which may be nil).
// A 401 on the first attempt triggers one token refresh and one retry. When
// the refresh cannot happen the token store is cleared, the session expired
// handler runs, and the returned error matches both ErrSessionExpired and
// the original *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	access, err := c.store.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		return errors.Wrap(err, "[Client.Do] reading access token")
	}

	err = c.send(ctx, req, access, out)
	if StatusCode(err) != http.StatusUnauthorized || req.Attempt() > 0 {
		return err
	}

	fresh, refreshErr := c.refresher.Refresh(ctx, access)
	if refreshErr != nil {
		// cancellation says nothing about the session
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.expire(ctx, refreshErr)
		return fmt.Errorf("%w: %w", ierrors.ErrSessionExpired, err)
	}

	return c.send(ctx, req.retry(), fresh, out)
}

func (c *Client) expire(ctx context.Context, cause error) {
	c.log.Info().AnErr("cause", cause).Msg("token refresh failed, clearing session")
	if err := c.store.Clear(ctx); err != nil {
		log.Err(err).Msg("clearing token store after failed refresh")
	}
	c.onExpired(ctx)
}

func (c *Client) send(ctx context.Context, req Request, accessToken string, out any) error {
	httpReq, err := c.build(ctx, req, accessToken)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %w", ierrors.ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %w", ierrors.ErrTransport, req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ierrors.ErrInvalidResponse, req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) build(ctx context.Context, req Request, accessToken string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "[Client.build] encoding %s %s", req.Method, req.Path)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.build] %s %s", req.Method, req.Path)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if accessToken != "" {
		token.NewPair(accessToken, "").SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

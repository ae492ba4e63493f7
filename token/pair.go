package token

import (
	"context"

	"github.com/jrsteele09/go-ticket-client/token/jwt"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const tokenTypeBearer = "Bearer"

// NewPair builds the session token pair. Expiry is taken from the access
// token's exp claim and left zero when it cannot be read.
func NewPair(access, refresh string) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
	}
	if exp, err := jwt.ExpiresAt(access); err == nil {
		t.Expiry = exp
	}
	return t
}

// Save writes both halves of the pair. An empty refresh token leaves the
// stored one in place.
func Save(ctx context.Context, repo tokenstore.Repo, t *oauth2.Token) error {
	if t == nil || t.AccessToken == "" {
		return errors.New("[token.Save] access token is required")
	}
	if err := repo.Set(ctx, tokenstore.SlotAccessToken, t.AccessToken); err != nil {
		return errors.Wrap(err, "[token.Save] access token")
	}
	if t.RefreshToken == "" {
		return nil
	}
	if err := repo.Set(ctx, tokenstore.SlotRefreshToken, t.RefreshToken); err != nil {
		return errors.Wrap(err, "[token.Save] refresh token")
	}
	return nil
}

// Load returns the stored pair, or nil when neither half is stored.
func Load(ctx context.Context, repo tokenstore.Repo) (*oauth2.Token, error) {
	access, err := repo.Get(ctx, tokenstore.SlotAccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[token.Load] access token")
	}
	refresh, err := repo.Get(ctx, tokenstore.SlotRefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[token.Load] refresh token")
	}
	if access == "" && refresh == "" {
		return nil, nil
	}
	return NewPair(access, refresh), nil
}

package jwt

import (
	"errors"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultExpiryMargin is how long before its exp claim an access token stops
// counting as valid, so it is not sent just as it expires in flight.
const DefaultExpiryMargin = 30 * time.Second

// TokenIntrospection is what the client can learn from an access token
// without the server's key. Active says whether the token is still usable
// locally; the server remains the authority.
type TokenIntrospection struct {
	Active    bool      `json:"active"`
	Exp       time.Time `json:"exp"`
	UserID    string    `json:"user_id,omitempty"`
	TokenType string    `json:"token_type,omitempty"`
	JTI       string    `json:"jti,omitempty"`
}

// Inspector decodes access tokens locally. Signatures are not verified.
type Inspector struct {
	margin  time.Duration
	nowFunc func() time.Time
}

type InspectorOption func(*Inspector)

func WithNowFunc(now func() time.Time) InspectorOption {
	return func(i *Inspector) {
		i.nowFunc = now
	}
}

func WithExpiryMargin(margin time.Duration) InspectorOption {
	return func(i *Inspector) {
		if margin >= 0 {
			i.margin = margin
		}
	}
}

func NewInspector(options ...InspectorOption) *Inspector {
	i := &Inspector{
		margin:  DefaultExpiryMargin,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Introspect reads the claims of rawToken. A blank token is inactive with no error.
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, nil
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return &TokenIntrospection{Active: false}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return &TokenIntrospection{Active: false}, err
	}
	if exp == nil {
		return &TokenIntrospection{Active: false}, errors.New("token has no exp claim")
	}

	ti := &TokenIntrospection{
		Exp:       exp.Time,
		UserID:    claimString(claims, "user_id"),
		TokenType: claimString(claims, "token_type"),
		JTI:       claimString(claims, "jti"),
	}
	// exp is whole seconds; compare at that resolution
	ti.Active = exp.Unix() > i.nowFunc().Add(i.margin).Unix()
	return ti, nil
}

// IsValid reports whether rawToken is decodable and expires more than the
// margin from now.
func (i *Inspector) IsValid(rawToken string) bool {
	ti, err := i.Introspect(rawToken)
	return err == nil && ti.Active
}

// ExpiresAt returns the exp claim of rawToken.
func ExpiresAt(rawToken string) (time.Time, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

func claimString(claims jwtlib.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

package config

import "time"

const tokenExpiryMarginVar = "TOKEN_EXPIRY_MARGIN"

type Session struct {
	values FileValues
}

var _ SessionConfig = Session{}

// GetTokenExpiryMargin is how close to its exp claim an access token is
// treated as already expired.
func (s Session) GetTokenExpiryMargin() time.Duration {
	return getDuration(s.values, tokenExpiryMarginVar, 30*time.Second)
}

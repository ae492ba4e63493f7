package auth

import (
	"fmt"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
)

var (
	MissingEmailErr         = fmt.Errorf("%w: email is required", ierrors.ErrInvalidRequest)
	MissingPasswordErr      = fmt.Errorf("%w: password is required", ierrors.ErrInvalidRequest)
	MissingSessionHandleErr = fmt.Errorf("%w: login session is required", ierrors.ErrInvalidRequest)
	MissingCodeErr          = fmt.Errorf("%w: verification code is required", ierrors.ErrInvalidRequest)
	MissingUsernameErr      = fmt.Errorf("%w: username is required", ierrors.ErrInvalidRequest)
	InvalidRoleErr          = fmt.Errorf("%w: role must be admin or contractor", ierrors.ErrInvalidRequest)
	EmptyProfileUpdateErr   = fmt.Errorf("%w: nothing to update", ierrors.ErrInvalidRequest)
	CorruptProfileErr       = fmt.Errorf("%w: stored profile is unreadable", ierrors.ErrInvalidResponse)
)

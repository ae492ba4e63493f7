package tickets

import (
	"fmt"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
)

var (
	MissingTicketIDErr     = fmt.Errorf("%w: ticket id is required", ierrors.ErrInvalidRequest)
	MissingContractorErr   = fmt.Errorf("%w: contractor is required", ierrors.ErrInvalidRequest)
	MissingOrganizationErr = fmt.Errorf("%w: organization is required", ierrors.ErrInvalidRequest)
	MissingLocationErr     = fmt.Errorf("%w: location is required", ierrors.ErrInvalidRequest)
	MissingExpirationErr   = fmt.Errorf("%w: expiration date is required", ierrors.ErrInvalidRequest)
	InvalidStatusErr       = fmt.Errorf("%w: status must be open, in_progress or closed", ierrors.ErrInvalidRequest)
	InvalidRenewDaysErr    = fmt.Errorf("%w: renewal must be between 1 and 365 days", ierrors.ErrInvalidRequest)
	EmptyUpdateErr         = fmt.Errorf("%w: nothing to update", ierrors.ErrInvalidRequest)
)

package tickets

import (
	"context"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/users"
	"golang.org/x/sync/errgroup"
)

const (
	LoadTicketsFailedMsg     = "Failed to load tickets"
	LoadDetailsFailedMsg     = "Failed to load ticket details"
	LoadContractorsFailedMsg = "Failed to load contractors"
	ContractorsForbiddenMsg  = "You do not have permission to view contractors"
	LoadAuditTrailFailedMsg  = "Failed to load audit trail"
)

// LoadTickets replaces the cached list with the tickets matching the
// current filter.
func (c *Collection) LoadTickets(ctx context.Context) error {
	c.mu.Lock()
	c.loading++
	filter := c.filter
	c.mu.Unlock()

	list, err := c.service.List(ctx, filter)

	c.mu.Lock()
	c.loading--
	if err == nil {
		c.tickets = list
	} else {
		c.lastError = LoadTicketsFailedMsg
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg("loading tickets")
		c.notifier.Error(LoadTicketsFailedMsg)
		return err
	}
	return nil
}

// LoadStats refreshes the dashboard counters. Failures are not shown.
func (c *Collection) LoadStats(ctx context.Context) error {
	stats, err := c.service.Stats(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("loading ticket stats")
		return err
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// LoadContractors fills the assignable contractor list. Only admins may see
// it, so any other known role gets an empty list without a request. An empty
// role means unknown and is left for the server to decide.
func (c *Collection) LoadContractors(ctx context.Context, role users.RoleType) error {
	if role != "" && role != users.RoleAdmin {
		c.setContractors([]Contractor{})
		return nil
	}

	list, err := c.service.Contractors(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("loading contractors")
		if ierrors.Is(err, ierrors.ErrForbidden) {
			c.notifier.Error(ContractorsForbiddenMsg)
		} else {
			c.notifier.Error(LoadContractorsFailedMsg)
		}
		c.setContractors([]Contractor{})
		return err
	}
	c.setContractors(list)
	return nil
}

func (c *Collection) setContractors(list []Contractor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contractors = list
}

// LoadExpiringTickets refreshes the tickets close to expiry, independent of
// the list filter. Failures are not shown.
func (c *Collection) LoadExpiringTickets(ctx context.Context) error {
	c.mu.Lock()
	c.expiringLoading = true
	c.mu.Unlock()

	list, err := c.service.List(ctx, Filter{ExpiringSoon: true})

	c.mu.Lock()
	c.expiringLoading = false
	if err == nil {
		c.expiring = list
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Debug().Err(err).Msg("loading expiring tickets")
		return err
	}
	return nil
}

// SelectTicket opens the detail dialog on t, fetched fresh from the server.
// If that fails the dialog shows t as given.
func (c *Collection) SelectTicket(ctx context.Context, t Ticket) (*Ticket, error) {
	detail, err := c.service.Get(ctx, t.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("ticket", t.ID.String()).Msg("loading ticket details")
		c.notifier.Error(LoadDetailsFailedMsg)
		detail = &t
	}

	c.mu.Lock()
	c.selected = detail
	c.modals.Detail = true
	c.mu.Unlock()
	return c.Selected(), err
}

// OpenAssignModal opens the assignment dialog. While the detail dialog is
// open its selection is kept; otherwise t becomes the selection. The
// contractor list is loaded first if it is empty.
func (c *Collection) OpenAssignModal(ctx context.Context, t Ticket, role users.RoleType) {
	c.mu.Lock()
	if !c.modals.Detail {
		c.selected = &t
	}
	c.assignmentError = ""
	needContractors := len(c.contractors) == 0
	c.mu.Unlock()

	if needContractors {
		_ = c.LoadContractors(ctx, role)
	}

	c.mu.Lock()
	c.modals.Assign = true
	c.mu.Unlock()
}

// LoadAuditTrail fetches the audit trail of the selected ticket.
func (c *Collection) LoadAuditTrail(ctx context.Context) ([]AuditEntry, error) {
	selected := c.Selected()
	if selected == nil {
		return nil, ierrors.ErrNoTicketSelected
	}

	entries, err := c.service.AuditTrail(ctx, selected.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("ticket", selected.ID.String()).Msg("loading audit trail")
		c.notifier.Error(LoadAuditTrailFailedMsg)
		return nil, err
	}

	c.mu.Lock()
	c.auditTrail = entries
	c.mu.Unlock()
	return entries, nil
}

// reload runs loaders concurrently and returns the first failure.
func (c *Collection) reload(ctx context.Context, loaders ...func(context.Context) error) error {
	var g errgroup.Group
	for _, load := range loaders {
		load := load
		g.Go(func() error {
			return load(ctx)
		})
	}
	return g.Wait()
}

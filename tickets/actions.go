package tickets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ticket-client/gateway"
	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/users"
)

const (
	TicketCreatedMsg  = "Ticket created successfully"
	TicketUpdatedMsg  = "Ticket updated successfully"
	TicketClosedMsg   = "Ticket closed successfully"
	TicketAssignedMsg = "Ticket assigned successfully"

	CheckInputMsg          = "Please check your input data and try again"
	NoPermissionMsg        = "You do not have permission to perform this action"
	TicketNotFoundMsg      = "Ticket not found"
	CreateFailedMsg        = "Failed to create ticket. Please try again."
	UpdateFailedMsg        = "Failed to update ticket. Please try again."
	RenewFailedMsg         = "Failed to renew ticket"
	CloseFailedMsg         = "Failed to close ticket"
	InvalidAssignmentMsg   = "Invalid assignment data"
	AssignForbiddenMsg     = "You do not have permission to assign tickets"
	AssignFailedMsg        = "Failed to assign ticket. Please try again."
	validationNoticeFormat = "Validation Error: %s"
	assignmentNoticeFormat = "Assignment Error: %s"
)

// serverError is the "error" field of a failed response, if it has one.
func serverError(err error) string {
	var apiErr *gateway.APIError
	if !ierrors.As(err, &apiErr) {
		return ""
	}
	msg, _ := apiErr.Field("error").(string)
	return msg
}

// formNotice picks the notice for a failed create or update. notFound is
// used for a 404 when set.
func formNotice(err error, fallback, notFound string) string {
	switch gateway.StatusCode(err) {
	case http.StatusBadRequest:
		if msg := serverError(err); msg != "" {
			return fmt.Sprintf(validationNoticeFormat, msg)
		}
		return CheckInputMsg
	case http.StatusForbidden:
		return NoPermissionMsg
	case http.StatusNotFound:
		if notFound != "" {
			return notFound
		}
	}
	return fallback
}

func (c *Collection) fail(err error, notice string) error {
	c.mu.Lock()
	c.lastError = notice
	c.mu.Unlock()
	c.notifier.Error(notice)
	return err
}

// afterMutation reloads the given views. A failed reload has already been
// reported by the loader and does not fail the mutation.
func (c *Collection) afterMutation(ctx context.Context, action string, loaders ...func(context.Context) error) {
	if err := c.reload(ctx, loaders...); err != nil {
		c.log.Debug().Err(err).Str("action", action).Msg("reload after mutation")
	}
}

// CreateTicket creates a ticket, closes the form and reloads the list and stats.
func (c *Collection) CreateTicket(ctx context.Context, in CreateInput) (*MutationResult, error) {
	res, err := c.service.Create(ctx, in)
	if err != nil {
		return nil, c.fail(err, formNotice(err, CreateFailedMsg, ""))
	}

	c.notifier.Success(TicketCreatedMsg)
	c.CloseModal()
	c.afterMutation(ctx, "create", c.LoadTickets, c.LoadStats)
	return res, nil
}

// UpdateTicket applies in to the selected ticket.
func (c *Collection) UpdateTicket(ctx context.Context, in UpdateInput) (*MutationResult, error) {
	selected := c.Selected()
	if selected == nil {
		return nil, c.fail(ierrors.ErrNoTicketSelected, UpdateFailedMsg)
	}

	res, err := c.service.Update(ctx, selected.ID, in)
	if err != nil {
		return nil, c.fail(err, formNotice(err, UpdateFailedMsg, TicketNotFoundMsg))
	}

	c.notifier.Success(TicketUpdatedMsg)
	c.CloseModal()
	c.afterMutation(ctx, "update", c.LoadTickets, c.LoadStats)
	return res, nil
}

// RenewTicket extends t by days, or by the configured default when days is
// not positive.
func (c *Collection) RenewTicket(ctx context.Context, t Ticket, days int) (*MutationResult, error) {
	if days <= 0 {
		days = c.renewDays
	}

	res, err := c.service.Renew(ctx, t.ID, days)
	if err != nil {
		return nil, c.fail(err, RenewFailedMsg)
	}

	c.notifier.Success(fmt.Sprintf("Ticket renewed for %d days", days))
	c.afterMutation(ctx, "renew", c.LoadTickets, c.LoadStats, c.LoadExpiringTickets)
	return res, nil
}

func (c *Collection) CloseTicket(ctx context.Context, t Ticket, reason string) (*MutationResult, error) {
	res, err := c.service.Close(ctx, t.ID, reason)
	if err != nil {
		return nil, c.fail(err, CloseFailedMsg)
	}

	c.notifier.Success(TicketClosedMsg)
	c.afterMutation(ctx, "close", c.LoadTickets, c.LoadStats)
	return res, nil
}

// AssignTicket hands a ticket to a contractor. Failures are kept in the
// assignment error rather than the collection error. On success the assign
// dialog closes, an open detail view of the same ticket is refreshed and the
// list is reloaded.
func (c *Collection) AssignTicket(ctx context.Context, ticketID uuid.UUID, contractorID users.ID) (*MutationResult, error) {
	c.mu.Lock()
	c.assignmentLoading = true
	c.assignmentError = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.assignmentLoading = false
		c.mu.Unlock()
	}()

	res, err := c.service.Assign(ctx, ticketID, contractorID)
	if err != nil {
		msg, notice := assignmentNotices(err)
		c.mu.Lock()
		c.assignmentError = msg
		c.mu.Unlock()
		c.notifier.Error(notice)
		return nil, err
	}

	c.notifier.Success(TicketAssignedMsg)

	c.mu.Lock()
	c.closeAssignModal()
	refreshDetail := c.modals.Detail && c.selected != nil && c.selected.ID == ticketID
	c.mu.Unlock()

	if refreshDetail {
		if detail, err := c.service.Get(ctx, ticketID); err == nil {
			c.mu.Lock()
			if c.modals.Detail && c.selected != nil && c.selected.ID == ticketID {
				c.selected = detail
			}
			c.mu.Unlock()
		}
	}

	c.afterMutation(ctx, "assign", c.LoadTickets)
	return res, nil
}

// assignmentNotices returns the assignment error to keep and the notice to show.
func assignmentNotices(err error) (string, string) {
	switch gateway.StatusCode(err) {
	case http.StatusBadRequest:
		msg := serverError(err)
		if msg == "" {
			msg = InvalidAssignmentMsg
		}
		return msg, fmt.Sprintf(assignmentNoticeFormat, msg)
	case http.StatusForbidden:
		return AssignForbiddenMsg, AssignForbiddenMsg
	case http.StatusNotFound:
		return TicketNotFoundMsg, TicketNotFoundMsg
	}
	return AssignFailedMsg, AssignFailedMsg
}

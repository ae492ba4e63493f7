package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ticket-client/router"
	"github.com/jrsteele09/go-ticket-client/tickets"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/spf13/pflag"
)

// errReported marks failures the ticket notifier has already shown.
var errReported = errors.New("reported")

func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

func (cl *cli) role() users.RoleType {
	if u := cl.app.Session.User(); u != nil {
		return u.Role
	}
	return ""
}

func ticketArg(args []string) (tickets.Ticket, error) {
	if len(args) != 1 {
		return tickets.Ticket{}, fmt.Errorf("expected one ticket id")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return tickets.Ticket{}, fmt.Errorf("invalid ticket id %q: %w", args[0], err)
	}
	return tickets.Ticket{ID: id}, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates use YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func (cl *cli) ticketsCommand() *command {
	var status, search string
	var expiringSoon, expired bool
	return &command{
		Name:    "tickets",
		Summary: "List tickets",
		Route:   router.RouteTickets,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("tickets", pflag.ContinueOnError)
			fs.StringVar(&status, "status", "", "open, in_progress or closed")
			fs.StringVar(&search, "search", "", "match ticket number, organization or location")
			fs.BoolVar(&expiringSoon, "expiring-soon", false, "only tickets expiring soon")
			fs.BoolVar(&expired, "expired", false, "only expired tickets")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			s := tickets.Status(status)
			if s != "" && !s.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			cl.app.Collection.UpdateFilters(tickets.FilterUpdate{
				Status:       &s,
				Search:       &search,
				ExpiringSoon: &expiringSoon,
				Expired:      &expired,
			})
			if err := cl.app.Collection.LoadTickets(ctx); err != nil {
				return reported(err)
			}
			return cl.printTickets(cl.app.Collection.Tickets())
		},
	}
}

func (cl *cli) ticketCommand() *command {
	return &command{
		Name:    "ticket",
		Summary: "Work with a single ticket",
		Subcommands: []*command{
			cl.ticketShowCommand(),
			cl.ticketCreateCommand(),
			cl.ticketUpdateCommand(),
			cl.ticketRenewCommand(),
			cl.ticketCloseCommand(),
			cl.ticketAssignCommand(),
			cl.ticketAuditCommand(),
		},
	}
}

func (cl *cli) ticketShowCommand() *command {
	return &command{
		Name:    "show",
		Summary: "Show a ticket with its history",
		Usage:   "ticketctl ticket show <id>",
		Route:   router.RouteTickets,
		Run: func(ctx context.Context, args []string) error {
			t, err := ticketArg(args)
			if err != nil {
				return err
			}
			detail, err := cl.app.Collection.SelectTicket(ctx, t)
			if err != nil {
				return reported(err)
			}
			return cl.printTicket(detail)
		},
	}
}

func (cl *cli) ticketCreateCommand() *command {
	var in tickets.CreateInput
	var expires, contractor string
	return &command{
		Name:    "create",
		Summary: "Create a ticket",
		Route:   router.RouteTickets,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&in.Organization, "organization", "", "organization the work is for")
			fs.StringVar(&in.Location, "location", "", "site location")
			fs.StringVar(&expires, "expires", "", "expiration date, YYYY-MM-DD")
			fs.StringVar(&in.Notes, "notes", "", "free text notes")
			fs.StringVar(&contractor, "contractor", "", "id of the contractor to assign")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if expires != "" {
				date, err := parseDate(expires)
				if err != nil {
					return err
				}
				in.ExpirationDate = date
			}
			in.AssignedContractorID = users.ID(contractor)

			cl.app.Collection.OpenCreateModal()
			res, err := cl.app.Collection.CreateTicket(ctx, in)
			if err != nil {
				cl.app.Collection.CloseModal()
				return reported(err)
			}
			cl.printMutation(res)
			return nil
		},
	}
}

func (cl *cli) ticketUpdateCommand() *command {
	var organization, location, expires, notes, status string
	return &command{
		Name:    "update",
		Summary: "Change ticket fields",
		Usage:   "ticketctl ticket update <id> [flags]",
		Route:   router.RouteTickets,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
			fs.StringVar(&organization, "organization", "", "new organization")
			fs.StringVar(&location, "location", "", "new location")
			fs.StringVar(&expires, "expires", "", "new expiration date, YYYY-MM-DD")
			fs.StringVar(&notes, "notes", "", "new notes")
			fs.StringVar(&status, "status", "", "open, in_progress or closed")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			t, err := ticketArg(args)
			if err != nil {
				return err
			}
			in := tickets.UpdateInput{
				Organization: optional(organization),
				Location:     optional(location),
				Notes:        optional(notes),
			}
			if status != "" {
				s := tickets.Status(status)
				in.Status = &s
			}
			if expires != "" {
				date, err := parseDate(expires)
				if err != nil {
					return err
				}
				in.ExpirationDate = &date
			}

			cl.app.Collection.OpenEditModal(t)
			res, err := cl.app.Collection.UpdateTicket(ctx, in)
			if err != nil {
				cl.app.Collection.CloseModal()
				return reported(err)
			}
			cl.printMutation(res)
			return nil
		},
	}
}

func (cl *cli) ticketRenewCommand() *command {
	var days int
	return &command{
		Name:    "renew",
		Summary: "Extend a ticket's expiration date",
		Usage:   "ticketctl ticket renew <id> [--days N]",
		Route:   router.RouteTickets,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("renew", pflag.ContinueOnError)
			fs.IntVar(&days, "days", 0, "days to extend by (configured default when 0)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			t, err := ticketArg(args)
			if err != nil {
				return err
			}
			res, err := cl.app.Collection.RenewTicket(ctx, t, days)
			if err != nil {
				return reported(err)
			}
			cl.printMutation(res)
			return nil
		},
	}
}

func (cl *cli) ticketCloseCommand() *command {
	var reason string
	return &command{
		Name:    "close",
		Summary: "Close a ticket",
		Usage:   "ticketctl ticket close <id> [--reason text]",
		Route:   router.RouteTickets,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("close", pflag.ContinueOnError)
			fs.StringVar(&reason, "reason", "", "why the ticket is closed")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			t, err := ticketArg(args)
			if err != nil {
				return err
			}
			res, err := cl.app.Collection.CloseTicket(ctx, t, reason)
			if err != nil {
				return reported(err)
			}
			cl.printMutation(res)
			return nil
		},
	}
}

func (cl *cli) ticketAssignCommand() *command {
	var contractor string
	return &command{
		Name:    "assign",
		Summary: "Assign a ticket to a contractor",
		Usage:   "ticketctl ticket assign <id> --contractor <user id>",
		Route:   router.RouteTickets,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("assign", pflag.ContinueOnError)
			fs.StringVar(&contractor, "contractor", "", "id of the contractor; lists contractors when empty")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			t, err := ticketArg(args)
			if err != nil {
				return err
			}
			collection := cl.app.Collection
			collection.OpenAssignModal(ctx, t, cl.role())
			defer collection.CloseAssignModal()

			if contractor == "" {
				if err := cl.printContractors(collection.Contractors()); err != nil {
					return err
				}
				return fmt.Errorf("--contractor is required")
			}
			res, err := collection.AssignTicket(ctx, t.ID, users.ID(contractor))
			if err != nil {
				return reported(err)
			}
			cl.printMutation(res)
			return nil
		},
	}
}

func (cl *cli) ticketAuditCommand() *command {
	return &command{
		Name:    "audit",
		Summary: "Show a ticket's audit trail",
		Usage:   "ticketctl ticket audit <id>",
		Route:   router.RouteLogs,
		Run: func(ctx context.Context, args []string) error {
			t, err := ticketArg(args)
			if err != nil {
				return err
			}
			collection := cl.app.Collection
			collection.OpenAuditTrailModal(t)
			defer collection.CloseAuditTrailModal()

			entries, err := collection.LoadAuditTrail(ctx)
			if err != nil {
				return reported(err)
			}
			return cl.printAuditTrail(entries)
		},
	}
}

func (cl *cli) statsCommand() *command {
	return &command{
		Name:    "stats",
		Summary: "Show ticket counts",
		Route:   router.RouteDashboard,
		Run: func(ctx context.Context, _ []string) error {
			if err := cl.app.Collection.LoadStats(ctx); err != nil {
				return err
			}
			return cl.printStats(cl.app.Collection.Stats())
		},
	}
}

func (cl *cli) contractorsCommand() *command {
	return &command{
		Name:    "contractors",
		Summary: "List contractors tickets can be assigned to",
		Route:   router.RouteTickets,
		Run: func(ctx context.Context, _ []string) error {
			if err := cl.app.Collection.LoadContractors(ctx, cl.role()); err != nil {
				return reported(err)
			}
			return cl.printContractors(cl.app.Collection.Contractors())
		},
	}
}

func (cl *cli) expiringCommand() *command {
	return &command{
		Name:    "expiring",
		Summary: "List tickets that expire soon",
		Route:   router.RouteExpiringTickets,
		Run: func(ctx context.Context, _ []string) error {
			if err := cl.app.Collection.LoadExpiringTickets(ctx); err != nil {
				return err
			}
			return cl.printTickets(cl.app.Collection.ExpiringTickets())
		},
	}
}

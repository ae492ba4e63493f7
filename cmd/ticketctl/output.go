package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-ticket-client/internal/ui"
	"github.com/jrsteele09/go-ticket-client/tickets"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
}

func (cl *cli) status(s tickets.Status) string {
	return ui.Colourize(cl.colour, ui.StatusColors[string(s)], string(s))
}

// expiry marks expired tickets red and those expiring soon yellow.
func (cl *cli) expiry(t tickets.Ticket) string {
	date := t.ExpirationDate.Format(dateLayout)
	switch {
	case t.IsExpired:
		return ui.Colourize(cl.colour, ui.Red, date)
	case t.IsExpiringSoon:
		return ui.Colourize(cl.colour, ui.Yellow, date)
	}
	return date
}

func (cl *cli) printTickets(list []tickets.Ticket) error {
	if len(list) == 0 {
		fmt.Fprintln(cl.stdout, "No tickets found.")
		return nil
	}
	tw := newTable(cl.stdout)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tORGANIZATION\tLOCATION\tEXPIRES\tASSIGNEE")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.TicketNumber, cl.status(t.Status), t.Organization, t.Location,
			cl.expiry(t), dash(t.AssignedContractor.Name()))
	}
	return tw.Flush()
}

func (cl *cli) printTicket(t *tickets.Ticket) error {
	tw := newTable(cl.stdout)
	fmt.Fprintf(tw, "Ticket:\t%s\n", t.TicketNumber)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Status:\t%s\n", cl.status(t.Status))
	fmt.Fprintf(tw, "Organization:\t%s\n", t.Organization)
	fmt.Fprintf(tw, "Location:\t%s\n", t.Location)
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedDate.Format(dateLayout))
	fmt.Fprintf(tw, "Expires:\t%s\n", cl.expiry(*t))
	fmt.Fprintf(tw, "Assignee:\t%s\n", dash(t.AssignedContractor.Name()))
	fmt.Fprintf(tw, "Created by:\t%s\n", dash(t.CreatedBy.Name()))
	if t.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", t.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(t.TicketLogs) == 0 {
		return nil
	}
	fmt.Fprintln(cl.stdout, "\nHistory:")
	tw = newTable(cl.stdout)
	for _, l := range t.TicketLogs {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", l.Timestamp.Format(time.DateTime), firstNonEmpty(l.ActionDisplay, l.Action), dash(l.ActionBy.Name()))
	}
	return tw.Flush()
}

func (cl *cli) printMutation(res *tickets.MutationResult) {
	if res == nil {
		return
	}
	if res.Message != "" {
		fmt.Fprintln(cl.stdout, res.Message)
	}
	if res.NewExpirationDate != nil {
		fmt.Fprintf(cl.stdout, "New expiration date: %s\n", res.NewExpirationDate.Format(dateLayout))
	}
	if res.NewAssignee != nil {
		fmt.Fprintf(cl.stdout, "Assigned to %s (was %s)\n", res.NewAssignee.Name(), dash(res.PreviousAssignee.Name()))
	}
	if res.Ticket != nil && res.Message == "" {
		fmt.Fprintf(cl.stdout, "Ticket %s saved\n", res.Ticket.TicketNumber)
	}
}

func (cl *cli) printStats(s *tickets.Stats) error {
	tw := newTable(cl.stdout)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Open:\t%s\n", ui.Colourize(cl.colour, ui.StatusColors["open"], fmt.Sprint(s.Open)))
	fmt.Fprintf(tw, "In progress:\t%s\n", ui.Colourize(cl.colour, ui.StatusColors["in_progress"], fmt.Sprint(s.InProgress)))
	fmt.Fprintf(tw, "Closed:\t%s\n", ui.Colourize(cl.colour, ui.StatusColors["closed"], fmt.Sprint(s.Closed)))
	fmt.Fprintf(tw, "Expiring soon:\t%s\n", ui.Colourize(cl.colour, ui.Yellow, fmt.Sprint(s.ExpiringSoon)))
	fmt.Fprintf(tw, "Expired:\t%s\n", ui.Colourize(cl.colour, ui.Red, fmt.Sprint(s.Expired)))
	return tw.Flush()
}

func (cl *cli) printContractors(list []tickets.Contractor) error {
	if len(list) == 0 {
		fmt.Fprintln(cl.stdout, "No contractors available.")
		return nil
	}
	tw := newTable(cl.stdout)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	for _, c := range list {
		name := c.FullName
		if name == "" {
			name = (&tickets.UserSummary{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email}).Name()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, name, c.Email)
	}
	return tw.Flush()
}

func (cl *cli) printAuditTrail(entries []tickets.AuditEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(cl.stdout, "No audit entries.")
		return nil
	}
	tw := newTable(cl.stdout)
	fmt.Fprintln(tw, "TIME\tTYPE\tACTION\tUSER\tIP")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.DateTime), e.Type, e.Action, dash(e.User.Name()), dash(e.IPAddress))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

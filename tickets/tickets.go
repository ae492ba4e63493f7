package tickets

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ticket-client/users"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// DefaultRenewDays is how far a renewal extends a ticket when no period is given.
const DefaultRenewDays = 15

// UserSummary is the trimmed user record the API embeds in tickets and logs.
type UserSummary struct {
	ID        users.ID       `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Role      users.RoleType `json:"role"`
}

func (u *UserSummary) Name() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

type TicketLog struct {
	ID             string          `json:"id"`
	Action         string          `json:"action"`
	ActionDisplay  string          `json:"action_display"`
	Timestamp      time.Time       `json:"timestamp"`
	Details        json.RawMessage `json:"details,omitempty"`
	PreviousValues json.RawMessage `json:"previous_values,omitempty"`
	ActionBy       *UserSummary    `json:"action_by"`
}

// Ticket is the server's view of a ticket. List responses omit the logs,
// notes and updated fields; the detail endpoint fills them in.
type Ticket struct {
	ID                 uuid.UUID    `json:"id"`
	TicketNumber       string       `json:"ticket_number"`
	Organization       string       `json:"organization"`
	Location           string       `json:"location"`
	Status             Status       `json:"status"`
	StatusDisplay      string       `json:"status_display,omitempty"`
	Notes              string       `json:"notes,omitempty"`
	CreatedDate        time.Time    `json:"created_date"`
	ExpirationDate     time.Time    `json:"expiration_date"`
	UpdatedAt          *time.Time   `json:"updated_at,omitempty"`
	IsExpired          bool         `json:"is_expired"`
	IsExpiringSoon     bool         `json:"is_expiring_soon"`
	AssignedContractor *UserSummary `json:"assigned_contractor"`
	CreatedBy          *UserSummary `json:"created_by"`
	UpdatedBy          *UserSummary `json:"updated_by,omitempty"`
	TicketLogs         []TicketLog  `json:"ticket_logs,omitempty"`
}

type Stats struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	InProgress   int `json:"in_progress"`
	Closed       int `json:"closed"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

type Contractor struct {
	ID        users.ID `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	FullName  string   `json:"full_name"`
}

// AuditEntry is one line of a ticket's audit trail, merging ticket and user logs.
type AuditEntry struct {
	Type           string          `json:"type"`
	Timestamp      time.Time       `json:"timestamp"`
	User           *UserSummary    `json:"user"`
	Action         string          `json:"action"`
	Details        json.RawMessage `json:"details,omitempty"`
	PreviousValues json.RawMessage `json:"previous_values,omitempty"`
	IPAddress      string          `json:"ip_address,omitempty"`
}

type CreateInput struct {
	Organization         string    `json:"organization"`
	Location             string    `json:"location"`
	ExpirationDate       time.Time `json:"expiration_date"`
	Notes                string    `json:"notes,omitempty"`
	AssignedContractorID users.ID  `json:"assigned_contractor_id"`
}

// UpdateInput is a partial ticket change; nil fields are left untouched.
type UpdateInput struct {
	Organization   *string    `json:"organization,omitempty"`
	Location       *string    `json:"location,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

func (u UpdateInput) Empty() bool {
	return u.Organization == nil && u.Location == nil && u.Status == nil && u.ExpirationDate == nil && u.Notes == nil
}

// MutationResult is the envelope returned by create, update, renew and assign.
type MutationResult struct {
	Message           string       `json:"message"`
	Ticket            *Ticket      `json:"ticket"`
	DaysExtended      int          `json:"days_extended,omitempty"`
	NewExpirationDate *time.Time   `json:"new_expiration_date,omitempty"`
	PreviousAssignee  *UserSummary `json:"previous_assignee,omitempty"`
	NewAssignee       *UserSummary `json:"new_assignee,omitempty"`
}

// Filter narrows the ticket list. The zero value matches every ticket.
type Filter struct {
	Status       Status `json:"status"`
	Search       string `json:"search"`
	ExpiringSoon bool   `json:"expiring_soon"`
	Expired      bool   `json:"expired"`
}

func (f Filter) Active() bool {
	return f.Status != "" || f.Search != "" || f.ExpiringSoon || f.Expired
}

// Values renders the filter as list query parameters, omitting unset fields.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.ExpiringSoon {
		q.Set("expiring_soon", "true")
	}
	if f.Expired {
		q.Set("expired", "true")
	}
	return q
}

// FilterUpdate changes only the fields that are set.
type FilterUpdate struct {
	Status       *Status
	Search       *string
	ExpiringSoon *bool
	Expired      *bool
}

func (f Filter) Apply(u FilterUpdate) Filter {
	if u.Status != nil {
		f.Status = *u.Status
	}
	if u.Search != nil {
		f.Search = *u.Search
	}
	if u.ExpiringSoon != nil {
		f.ExpiringSoon = *u.ExpiringSoon
	}
	if u.Expired != nil {
		f.Expired = *u.Expired
	}
	return f
}

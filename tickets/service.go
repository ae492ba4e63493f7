package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ticket-client/gateway"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	pathTickets     = "/tickets/"
	pathStats       = "/tickets/stats/"
	pathContractors = "/tickets/contractors/"

	maxRenewDays = 365
)

func ticketPath(id uuid.UUID, action string) string {
	if action == "" {
		return fmt.Sprintf("/tickets/%s/", id)
	}
	return fmt.Sprintf("/tickets/%s/%s/", id, action)
}

// API is the subset of the gateway the service calls through.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Service wraps the ticket endpoints. Failures are returned as they come
// from the gateway so callers can tell validation, permission and missing
// tickets apart.
type Service struct {
	api API
	log zerolog.Logger
}

type ServiceOption func(*Service)

func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(api API, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.New("[tickets.NewService] api is required")
	}
	s := &Service{
		api: api,
		log: log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// List returns the tickets matching filter. Only the first page of a
// paginated response is read.
func (s *Service) List(ctx context.Context, filter Filter) ([]Ticket, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, pathTickets, filter.Values(), &raw); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}
	list, err := gateway.DecodeList[Ticket](raw)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}
	return list, nil
}

// Get returns the detailed ticket, including its logs.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	if id == uuid.Nil {
		return nil, MissingTicketIDErr
	}
	var t Ticket
	if err := s.api.Get(ctx, ticketPath(id, ""), nil, &t); err != nil {
		return nil, errors.Wrapf(err, "[Service.Get] ticket %s", id)
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*MutationResult, error) {
	switch {
	case strings.TrimSpace(in.Organization) == "":
		return nil, MissingOrganizationErr
	case strings.TrimSpace(in.Location) == "":
		return nil, MissingLocationErr
	case in.ExpirationDate.IsZero():
		return nil, MissingExpirationErr
	case in.AssignedContractorID == "":
		return nil, MissingContractorErr
	}

	var res MutationResult
	if err := s.api.Post(ctx, pathTickets, in, &res); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	s.log.Debug().Str("ticket", ticketNumber(res.Ticket)).Msg("ticket created")
	return &res, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*MutationResult, error) {
	if id == uuid.Nil {
		return nil, MissingTicketIDErr
	}
	if in.Empty() {
		return nil, EmptyUpdateErr
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, InvalidStatusErr
	}

	var res MutationResult
	if err := s.api.Put(ctx, ticketPath(id, ""), in, &res); err != nil {
		return nil, errors.Wrapf(err, "[Service.Update] ticket %s", id)
	}
	return &res, nil
}

// Renew pushes the expiration date out by days.
func (s *Service) Renew(ctx context.Context, id uuid.UUID, days int) (*MutationResult, error) {
	if id == uuid.Nil {
		return nil, MissingTicketIDErr
	}
	if days < 1 || days > maxRenewDays {
		return nil, InvalidRenewDaysErr
	}

	var res MutationResult
	body := struct {
		Days int `json:"days"`
	}{Days: days}
	if err := s.api.Post(ctx, ticketPath(id, "renew"), body, &res); err != nil {
		return nil, errors.Wrapf(err, "[Service.Renew] ticket %s", id)
	}
	return &res, nil
}

func (s *Service) Close(ctx context.Context, id uuid.UUID, reason string) (*MutationResult, error) {
	if id == uuid.Nil {
		return nil, MissingTicketIDErr
	}

	var res MutationResult
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	if err := s.api.Post(ctx, ticketPath(id, "close"), body, &res); err != nil {
		return nil, errors.Wrapf(err, "[Service.Close] ticket %s", id)
	}
	return &res, nil
}

func (s *Service) Assign(ctx context.Context, id uuid.UUID, contractorID users.ID) (*MutationResult, error) {
	if id == uuid.Nil {
		return nil, MissingTicketIDErr
	}
	if contractorID == "" {
		return nil, MissingContractorErr
	}

	var res MutationResult
	body := struct {
		AssignedContractorID users.ID `json:"assigned_contractor_id"`
	}{AssignedContractorID: contractorID}
	if err := s.api.Post(ctx, ticketPath(id, "assign"), body, &res); err != nil {
		return nil, errors.Wrapf(err, "[Service.Assign] ticket %s", id)
	}
	return &res, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.api.Get(ctx, pathStats, nil, &stats); err != nil {
		return nil, errors.Wrap(err, "[Service.Stats]")
	}
	return &stats, nil
}

// Contractors lists the users tickets can be assigned to. Only admins may call it.
func (s *Service) Contractors(ctx context.Context) ([]Contractor, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, pathContractors, nil, &raw); err != nil {
		return nil, errors.Wrap(err, "[Service.Contractors]")
	}
	list, err := gateway.DecodeList[Contractor](raw)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Contractors]")
	}
	return list, nil
}

func (s *Service) AuditTrail(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	if id == uuid.Nil {
		return nil, MissingTicketIDErr
	}
	var raw json.RawMessage
	if err := s.api.Get(ctx, ticketPath(id, "audit"), nil, &raw); err != nil {
		return nil, errors.Wrapf(err, "[Service.AuditTrail] ticket %s", id)
	}
	list, err := gateway.DecodeList[AuditEntry](raw)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.AuditTrail]")
	}
	return list, nil
}

func ticketNumber(t *Ticket) string {
	if t == nil {
		return ""
	}
	return t.TicketNumber
}

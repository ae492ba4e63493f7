package tickets

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Modals reports which ticket dialogs are open.
type Modals struct {
	Detail     bool
	Create     bool
	Edit       bool
	Assign     bool
	AuditTrail bool
}

// Collection is the client-side cache of tickets and the dialog state built
// around it. The server is the source of truth: every successful mutation is
// followed by a reload rather than a local patch. It is safe for concurrent
// use and never holds its lock across a network call.
type Collection struct {
	service   *Service
	notifier  Notifier
	renewDays int
	log       zerolog.Logger

	mu                sync.RWMutex
	tickets           []Ticket
	selected          *Ticket
	stats             *Stats
	contractors       []Contractor
	expiring          []Ticket
	auditTrail        []AuditEntry
	loading           int
	expiringLoading   bool
	assignmentLoading bool
	lastError         string
	assignmentError   string
	filter            Filter
	modals            Modals
}

type CollectionOption func(*Collection)

func WithNotifier(n Notifier) CollectionOption {
	return func(c *Collection) {
		c.notifier = n
	}
}

// WithRenewDays sets the period used when a renewal does not name one.
func WithRenewDays(days int) CollectionOption {
	return func(c *Collection) {
		if days > 0 {
			c.renewDays = days
		}
	}
}

func WithCollectionLogger(l zerolog.Logger) CollectionOption {
	return func(c *Collection) {
		c.log = l
	}
}

func NewCollection(service *Service, options ...CollectionOption) *Collection {
	c := &Collection{
		service:   service,
		renewDays: DefaultRenewDays,
		log:       log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = NewLogNotifier(c.log)
	}
	return c
}

func (c *Collection) Tickets() []Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Ticket(nil), c.tickets...)
}

// Selected returns a copy of the selected ticket, or nil.
func (c *Collection) Selected() *Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return nil
	}
	t := *c.selected
	return &t
}

func (c *Collection) Stats() *Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil {
		return nil
	}
	s := *c.stats
	return &s
}

func (c *Collection) Contractors() []Contractor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Contractor(nil), c.contractors...)
}

func (c *Collection) ExpiringTickets() []Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Ticket(nil), c.expiring...)
}

func (c *Collection) AuditTrail() []AuditEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]AuditEntry(nil), c.auditTrail...)
}

func (c *Collection) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

func (c *Collection) ExpiringLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiringLoading
}

func (c *Collection) AssignmentLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assignmentLoading
}

func (c *Collection) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Collection) AssignmentError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assignmentError
}

func (c *Collection) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = ""
}

func (c *Collection) Modals() Modals {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modals
}

func (c *Collection) Filter() Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Collection) HasFilters() bool {
	return c.Filter().Active()
}

// UpdateFilters merges the set fields of u into the current filter.
func (c *Collection) UpdateFilters(u FilterUpdate) Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = c.filter.Apply(u)
	return c.filter
}

func (c *Collection) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = Filter{}
}

func (c *Collection) CloseDetailModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modals.Detail = false
	c.selected = nil
}

func (c *Collection) OpenCreateModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.modals.Create = true
}

func (c *Collection) OpenEditModal(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &t
	c.modals.Edit = true
}

// CloseModal closes the create and edit dialogs.
func (c *Collection) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeFormModals()
}

func (c *Collection) closeFormModals() {
	c.modals.Create = false
	c.modals.Edit = false
	c.selected = nil
}

// CloseAssignModal keeps the selection while the detail dialog is still
// showing it.
func (c *Collection) CloseAssignModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeAssignModal()
}

func (c *Collection) closeAssignModal() {
	c.modals.Assign = false
	if !c.modals.Detail {
		c.selected = nil
	}
	c.assignmentError = ""
}

func (c *Collection) OpenAuditTrailModal(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &t
	c.auditTrail = nil
	c.modals.AuditTrail = true
}

func (c *Collection) CloseAuditTrailModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modals.AuditTrail = false
	c.selected = nil
	c.auditTrail = nil
}

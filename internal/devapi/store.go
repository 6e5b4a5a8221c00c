// Package devapi is an in-memory stand-in for the products and leads API.
// The web server mounts it under /api when no upstream is configured, so the
// landing page and the admin view work on a bare checkout.
package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"finitefield.org/heara-web/internal/api"
)

var (
	// ErrInvalidID reports a lead id that is not a ULID.
	ErrInvalidID = errors.New("devapi: invalid id format")
	// ErrLeadNotFound reports an unknown lead id.
	ErrLeadNotFound = errors.New("devapi: lead not found")
	// ErrProductNotFound reports an unknown product id.
	ErrProductNotFound = errors.New("devapi: product not found")
)

const (
	minNameLength  = 2
	minPhoneLength = 9
)

// ValidationError lists field failures as "field: message".
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "devapi: validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, field+": "+msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// LeadInput is a creation request. Nil pointers are fields the caller omitted.
type LeadInput struct {
	Name            *string
	Email           *string
	Phone           *string
	Message         string
	Source          string
	ProductInterest string
	Status          api.LeadStatus
}

// Store keeps products and leads in memory.
type Store struct {
	mu       sync.RWMutex
	products []api.Product
	leads    map[string]api.Lead
	clock    func() time.Time
	idGen    func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides lead id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.idGen = gen
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		leads: make(map[string]api.Lead),
		clock: time.Now,
		idGen: func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

// Products returns the catalogue in insertion order.
func (s *Store) Products() []api.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ListProducts adapts Products to the api client's method set.
func (s *Store) ListProducts(context.Context) ([]api.Product, error) {
	return s.Products(), nil
}

// Product returns the product with the given id.
func (s *Store) Product(id string) (api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return api.Product{}, ErrProductNotFound
}

// PutProduct inserts or replaces a product.
func (s *Store) PutProduct(p api.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}

// Leads returns the leads matching filter, oldest first. Date bounds are inclusive.
func (s *Store) Leads(filter api.LeadFilter) []api.Lead {
	s.mu.RLock()
	out := make([]api.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if !filter.Since.IsZero() && lead.CreatedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && lead.CreatedAt.After(filter.Until) {
			continue
		}
		out = append(out, lead)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
	})
	return out
}

// Lead returns a single lead.
func (s *Store) Lead(id string) (api.Lead, error) {
	if err := checkID(id); err != nil {
		return api.Lead{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[id]
	if !ok {
		return api.Lead{}, ErrLeadNotFound
	}
	return lead, nil
}

// CreateLead validates in and stores it as a new lead.
func (s *Store) CreateLead(in LeadInput) (api.Lead, error) {
	verr := &ValidationError{}
	name := required(verr, "name", in.Name)
	email := required(verr, "email", in.Email)
	phone := required(verr, "phone", in.Phone)
	if in.Name != nil {
		checkMinLength(verr, "name", name, minNameLength)
	}
	if in.Email != nil {
		checkEmail(verr, email)
	}
	if in.Phone != nil {
		checkMinLength(verr, "phone", phone, minPhoneLength)
	}
	status := in.Status
	if status == "" {
		status = api.StatusNew
	}
	checkStatus(verr, status)
	if err := verr.orNil(); err != nil {
		return api.Lead{}, err
	}

	source := in.Source
	if source == "" {
		source = api.DefaultSource
	}
	now := s.now()
	lead := api.Lead{
		ID:              s.idGen(),
		Name:            name,
		Email:           email,
		Phone:           phone,
		Message:         in.Message,
		Source:          source,
		ProductInterest: in.ProductInterest,
		Status:          status,
		CreatedAt:       api.Timestamp{Time: now},
		UpdatedAt:       api.Timestamp{Time: now},
	}

	s.mu.Lock()
	s.leads[lead.ID] = lead
	s.mu.Unlock()
	return lead, nil
}

// UpdateLead applies the non-nil fields of update. An empty update returns
// the lead unchanged.
func (s *Store) UpdateLead(id string, update api.LeadUpdate) (api.Lead, error) {
	if err := checkID(id); err != nil {
		return api.Lead{}, err
	}
	verr := &ValidationError{}
	if update.Email != nil {
		checkEmail(verr, *update.Email)
	}
	if update.Status != nil {
		checkStatus(verr, *update.Status)
	}
	if err := verr.orNil(); err != nil {
		return api.Lead{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return api.Lead{}, ErrLeadNotFound
	}
	if update.Empty() {
		return lead, nil
	}
	assign(&lead.Name, update.Name)
	assign(&lead.Email, update.Email)
	assign(&lead.Phone, update.Phone)
	assign(&lead.Message, update.Message)
	assign(&lead.Source, update.Source)
	assign(&lead.ProductInterest, update.ProductInterest)
	if update.Status != nil {
		lead.Status = *update.Status
	}
	lead.UpdatedAt = api.Timestamp{Time: s.now()}
	s.leads[id] = lead
	return lead, nil
}

// Len reports the number of stored leads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

func (s *Store) putLead(lead api.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = lead
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func checkID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func required(verr *ValidationError, field string, value *string) string {
	if value == nil {
		verr.add(field, "field required")
		return ""
	}
	return *value
}

func checkMinLength(verr *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) < limit {
		verr.add(field, fmt.Sprintf("ensure this value has at least %d characters", limit))
	}
}

func checkEmail(verr *ValidationError, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		verr.add("email", "value is not a valid email address")
		return
	}
	at := strings.LastIndex(value, "@")
	if !strings.Contains(value[at+1:], ".") {
		verr.add("email", "value is not a valid email address")
	}
}

func checkStatus(verr *ValidationError, status api.LeadStatus) {
	if status.Valid() {
		return
	}
	names := make([]string, 0, 4)
	for _, s := range api.Statuses() {
		names = append(names, "'"+string(s)+"'")
	}
	verr.add("status", "value is not a valid enumeration member; permitted: "+strings.Join(names, ", "))
}

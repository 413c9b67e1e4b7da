package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
)

const (
	// RecentAppointmentsLimit is how many appointments a customer detail carries.
	RecentAppointmentsLimit = 10

	maxSearchLength = 100
	maxNotesLength  = 2000
	maxPhoneLength  = 32
	maxTags         = 20
)

const (
	msgCustomerNotFound = "Customer not found"
	msgCustomerEmail    = "Email already exists"
)

// CustomerService handles CRM customers. Every operation takes the
// organization id stamped by the tenant boundary.
type CustomerService struct {
	store   CustomerStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(store CustomerStore, recorder metrics.Recorder) *CustomerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CustomerService{
		store:   store,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateCustomerInput defines input for creating a customer.
type CreateCustomerInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Tags      []string
	Notes     string
}

// UpdateCustomerInput defines a partial customer update. Nil fields are unchanged.
type UpdateCustomerInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Tags      []string // nil means unchanged; empty clears
	Notes     *string
}

// ListCustomers returns the organization's customers, newest first.
func (s *CustomerService) ListCustomers(ctx context.Context, organizationID, search string) ([]*model.Customer, error) {
	search = strings.TrimSpace(search)
	if len(search) > maxSearchLength {
		return nil, apperror.Invalid("search is too long")
	}

	customers, err := s.store.ListCustomers(ctx, repository.CustomerFilter{
		OrganizationID: organizationID,
		Search:         search,
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// GetCustomer returns a customer with their most recent appointments.
func (s *CustomerService) GetCustomer(ctx context.Context, organizationID, id string) (*model.CustomerDetail, error) {
	c, err := s.store.GetCustomer(ctx, organizationID, id)
	if err != nil {
		return nil, mapCustomerError(err)
	}

	appointments, err := s.store.ListRecentAppointments(ctx, organizationID, id, RecentAppointmentsLimit)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return &model.CustomerDetail{Customer: *c, Appointments: appointments}, nil
}

// CreateCustomer adds a customer to the organization.
func (s *CustomerService) CreateCustomer(ctx context.Context, organizationID string, input CreateCustomerInput) (*model.Customer, error) {
	now := s.now().UTC()
	c := &model.Customer{
		ID:             ulid.Make().String(),
		OrganizationID: organizationID,
		Email:          NormalizeEmail(input.Email),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          strings.TrimSpace(input.Phone),
		Tags:           model.NormalizeTags(input.Tags),
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, mapCustomerError(err)
	}

	s.metrics.IncCustomerCreated()
	return c, nil
}

// UpdateCustomer applies a partial update to a customer of the organization.
func (s *CustomerService) UpdateCustomer(ctx context.Context, organizationID, id string, input UpdateCustomerInput) (*model.Customer, error) {
	c, err := s.store.GetCustomer(ctx, organizationID, id)
	if err != nil {
		return nil, mapCustomerError(err)
	}

	if input.Email != nil {
		c.Email = NormalizeEmail(*input.Email)
	}
	if input.FirstName != nil {
		c.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		c.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		c.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Tags != nil {
		c.Tags = model.NormalizeTags(input.Tags)
	}
	if input.Notes != nil {
		c.Notes = *input.Notes
	}

	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	c.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, mapCustomerError(err)
	}

	s.metrics.IncCustomerUpdated()
	return c, nil
}

// DeleteCustomer removes a customer of the organization.
func (s *CustomerService) DeleteCustomer(ctx context.Context, organizationID, id string) error {
	if err := s.store.DeleteCustomer(ctx, organizationID, id); err != nil {
		return mapCustomerError(err)
	}
	s.metrics.IncCustomerDeleted()
	return nil
}

func validateCustomer(c *model.Customer) error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if err := validateName("firstName", c.FirstName, true); err != nil {
		return err
	}
	if err := validateName("lastName", c.LastName, true); err != nil {
		return err
	}
	if len(c.Phone) > maxPhoneLength {
		return apperror.Invalid("phone is too long")
	}
	if len(c.Notes) > maxNotesLength {
		return apperror.Invalid("notes are too long")
	}
	if len(c.Tags) > maxTags {
		return apperror.Invalid("too many tags")
	}
	return nil
}

func mapCustomerError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound):
		return apperror.NotFound(msgCustomerNotFound)
	case errors.Is(err, repository.ErrCustomerEmailExists):
		return apperror.Conflict(msgCustomerEmail)
	default:
		return err
	}
}

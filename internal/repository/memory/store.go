// Package memory provides an in-memory store for development and testing.
// It honors the same uniqueness and tenant-scoping rules as the Postgres
// repository and returns the same sentinel errors.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
)

// Store is an in-memory implementation of the identity and customer stores.
type Store struct {
	mu            sync.RWMutex
	organizations map[string]*model.Organization // by id
	slugs         map[string]string              // slug -> organization id
	users         map[string]*model.User         // by id
	emails        map[string]string              // email -> user id
	customers     map[string]*model.Customer     // by id
	appointments  []model.Appointment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		organizations: make(map[string]*model.Organization),
		slugs:         make(map[string]string),
		users:         make(map[string]*model.User),
		emails:        make(map[string]string),
		customers:     make(map[string]*model.Customer),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// OrganizationSlugExists reports whether an organization already uses slug.
func (s *Store) OrganizationSlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.slugs[slug]
	return exists, nil
}

// ProvisionTenant stores an organization and its founding user atomically.
func (s *Store) ProvisionTenant(ctx context.Context, org *model.Organization, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.slugs[org.Slug]; exists {
		return repository.ErrSlugExists
	}
	if _, exists := s.emails[user.Email]; exists {
		return repository.ErrEmailExists
	}

	orgCopy := *org
	userCopy := *user
	s.organizations[org.ID] = &orgCopy
	s.slugs[org.Slug] = org.ID
	s.users[user.ID] = &userCopy
	s.emails[user.Email] = user.ID
	return nil
}

// CreateUser adds a user to an existing organization.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[user.OrganizationID]; !exists {
		return repository.ErrOrganizationNotFound
	}
	if _, exists := s.emails[user.Email]; exists {
		return repository.ErrEmailExists
	}

	userCopy := *user
	s.users[user.ID] = &userCopy
	s.emails[user.Email] = user.ID
	return nil
}

// GetOrganizationByID retrieves an organization by its ID.
func (s *Store) GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[id]
	if !exists {
		return nil, repository.ErrOrganizationNotFound
	}
	orgCopy := *org
	return &orgCopy, nil
}

// GetOrganizationBySlug retrieves an organization by its slug.
func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.slugs[slug]
	if !exists {
		return nil, repository.ErrOrganizationNotFound
	}
	orgCopy := *s.organizations[id]
	return &orgCopy, nil
}

// GetUserByEmail retrieves a user by email across all organizations.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.emails[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	userCopy := *s.users[id]
	return &userCopy, nil
}

// ListUsersByOrganization returns the members of an organization, oldest first.
func (s *Store) ListUsersByOrganization(ctx context.Context, organizationID string) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0)
	for _, u := range s.users {
		if u.OrganizationID == organizationID {
			userCopy := *u
			users = append(users, &userCopy)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// OrganizationCount returns the number of stored organizations.
func (s *Store) OrganizationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.organizations)
}

// ListCustomers returns an organization's customers, newest first.
func (s *Store) ListCustomers(ctx context.Context, filter repository.CustomerFilter) ([]*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]*model.Customer, 0)
	for _, c := range s.customers {
		if c.OrganizationID != filter.OrganizationID || !c.Matches(filter.Search) {
			continue
		}
		customers = append(customers, s.cloneCustomer(c))
	}

	sort.Slice(customers, func(i, j int) bool {
		if customers[i].CreatedAt.Equal(customers[j].CreatedAt) {
			return customers[i].ID > customers[j].ID
		}
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})

	if filter.Limit > 0 && len(customers) > filter.Limit {
		customers = customers[:filter.Limit]
	}
	return customers, nil
}

// GetCustomer retrieves a customer owned by organizationID.
func (s *Store) GetCustomer(ctx context.Context, organizationID, id string) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.customers[id]
	if !exists || c.OrganizationID != organizationID {
		return nil, repository.ErrCustomerNotFound
	}
	return s.cloneCustomer(c), nil
}

// CreateCustomer stores a customer. Email must be unique within the organization.
func (s *Store) CreateCustomer(ctx context.Context, c *model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customerEmailTaken(c.OrganizationID, c.Email, "") {
		return repository.ErrCustomerEmailExists
	}
	s.customers[c.ID] = s.cloneCustomer(c)
	return nil
}

// UpdateCustomer overwrites a customer owned by c.OrganizationID.
func (s *Store) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.customers[c.ID]
	if !exists || existing.OrganizationID != c.OrganizationID {
		return repository.ErrCustomerNotFound
	}
	if s.customerEmailTaken(c.OrganizationID, c.Email, c.ID) {
		return repository.ErrCustomerEmailExists
	}

	updated := s.cloneCustomer(c)
	updated.CreatedAt = existing.CreatedAt
	s.customers[c.ID] = updated
	return nil
}

// DeleteCustomer removes a customer owned by organizationID.
func (s *Store) DeleteCustomer(ctx context.Context, organizationID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.customers[id]
	if !exists || c.OrganizationID != organizationID {
		return repository.ErrCustomerNotFound
	}
	delete(s.customers, id)
	s.appointments = slices.DeleteFunc(s.appointments, func(a model.Appointment) bool {
		return a.CustomerID == id
	})
	return nil
}

// CreateAppointment stores an appointment.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.customers[a.CustomerID]
	if !exists || c.OrganizationID != a.OrganizationID {
		return repository.ErrCustomerNotFound
	}
	s.appointments = append(s.appointments, *a)
	return nil
}

// ListRecentAppointments returns a customer's most recent appointments by start time.
func (s *Store) ListRecentAppointments(ctx context.Context, organizationID, customerID string, limit int) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointments := make([]model.Appointment, 0)
	for _, a := range s.appointments {
		if a.OrganizationID == organizationID && a.CustomerID == customerID {
			appointments = append(appointments, a)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartTime.After(appointments[j].StartTime)
	})
	if limit > 0 && len(appointments) > limit {
		appointments = appointments[:limit]
	}
	return appointments, nil
}

func (s *Store) customerEmailTaken(organizationID, email, exceptID string) bool {
	for id, c := range s.customers {
		if id != exceptID && c.OrganizationID == organizationID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

// cloneCustomer copies c and fills in the appointment count. Caller holds the lock.
func (s *Store) cloneCustomer(c *model.Customer) *model.Customer {
	out := *c
	out.Tags = slices.Clone(c.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	var count int64
	for _, a := range s.appointments {
		if a.CustomerID == c.ID {
			count++
		}
	}
	out.AppointmentCount = count
	return &out
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
)

// Public failure messages. They never vary with the cause.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidToken       = "Invalid token"
)

// RegisterInput defines input for registering a new organization.
type RegisterInput struct {
	OrganizationName string
	Slug             string
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Timezone         string
	IP               string
}

// RegisterResult is the outcome of a successful registration.
type RegisterResult struct {
	Organization *model.Organization
	User         *model.User
	Tokens       *model.TokenPair
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User   *model.User
	Tokens *model.TokenPair
}

// RefreshInput defines input for refreshing a token pair.
type RefreshInput struct {
	RefreshToken string
	IP           string
}

// IdentityService orchestrates registration, login and token refresh.
type IdentityService struct {
	store       IdentityStore
	provisioner *TenantProvisioner
	vault       *auth.Vault
	tokens      *auth.TokenIssuer
	events      EventSink
	metrics     metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(store IdentityStore, vault *auth.Vault, tokens *auth.TokenIssuer, events EventSink, recorder metrics.Recorder, logger *slog.Logger) *IdentityService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if events == nil {
		events = NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		store:       store,
		provisioner: NewTenantProvisioner(store, vault),
		vault:       vault,
		tokens:      tokens,
		events:      events,
		metrics:     recorder,
		logger:      logger.With("component", "identity"),
		now:         time.Now,
	}
}

// Register validates the input, provisions the tenant with its ADMIN user
// and returns a fresh token pair.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	orgIn, adminIn, err := s.normalizeRegistration(input)
	if err != nil {
		s.metrics.IncRegistration(metrics.StatusInvalid)
		return nil, err
	}

	org, user, err := s.provisioner.Provision(ctx, orgIn, adminIn)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindConflict:
			s.metrics.IncRegistration(metrics.StatusConflict)
		case apperror.KindInvalid:
			s.metrics.IncRegistration(metrics.StatusInvalid)
		default:
			s.metrics.IncRegistration(metrics.StatusFailed)
		}
		return nil, err
	}

	tokens, err := s.tokens.Issue(user.ID, org.ID)
	if err != nil {
		// The tenant exists; the caller can still log in.
		s.logger.Error("token issue after provisioning failed",
			slog.String("organization_id", org.ID),
			slog.String("error", err.Error()),
		)
		s.metrics.IncRegistration(metrics.StatusFailed)
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.metrics.IncRegistration(metrics.StatusSuccess)
	s.record(model.EventOrganizationRegistered, org.ID, user.ID, "", input.IP)
	s.logger.Info("organization registered",
		slog.String("organization_id", org.ID),
		slog.String("slug", org.Slug),
	)

	return &RegisterResult{Organization: org, User: user, Tokens: tokens}, nil
}

func (s *IdentityService) normalizeRegistration(input RegisterInput) (OrganizationInput, AdminInput, error) {
	name := strings.TrimSpace(input.OrganizationName)
	slug := strings.TrimSpace(input.Slug)
	email := NormalizeEmail(input.Email)

	if err := validateName("organization name", name, true); err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}
	if err := ValidateSlug(slug); err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}
	if err := ValidateEmail(email); err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}
	if err := validateName("firstName", input.FirstName, false); err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}
	if err := validateName("lastName", input.LastName, false); err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}
	tz, err := NormalizeTimezone(input.Timezone)
	if err != nil {
		return OrganizationInput{}, AdminInput{}, err
	}

	return OrganizationInput{
			Name:     name,
			Slug:     slug,
			Email:    email,
			Timezone: tz,
		}, AdminInput{
			Email:     email,
			Password:  input.Password,
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
		}, nil
}

// Login verifies credentials and returns a fresh token pair.
// An unknown email and a wrong password produce the same error, and both
// paths perform a bcrypt comparison.
func (s *IdentityService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := NormalizeEmail(input.Email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		s.vault.BurnCompare(input.Password)
		s.loginFailed("", email, input.IP)
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	if !s.vault.VerifyPassword(input.Password, user.PasswordHash) {
		s.loginFailed(user.OrganizationID, email, input.IP)
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	tokens, err := s.tokens.Issue(user.ID, user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.metrics.IncLogin(metrics.StatusSuccess)
	s.record(model.EventLoginSucceeded, user.OrganizationID, user.ID, "", input.IP)

	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (s *IdentityService) loginFailed(organizationID, email, ip string) {
	s.metrics.IncLogin(metrics.StatusFailed)
	s.record(model.EventLoginFailed, organizationID, "", auth.QuickHash(email), ip)
}

// Refresh validates a refresh token and issues a brand-new pair for the same
// user and organization. Every failure is the same Unauthorized error.
func (s *IdentityService) Refresh(ctx context.Context, input RefreshInput) (*model.TokenPair, error) {
	claims, err := s.tokens.ValidateRefresh(input.RefreshToken)
	if err != nil {
		s.metrics.IncRefresh(metrics.StatusFailed)
		s.record(model.EventRefreshRejected, "", "", "", input.IP)
		return nil, apperror.Unauthorized(MsgInvalidToken)
	}

	tokens, err := s.tokens.Issue(claims.Subject, claims.OrganizationID)
	if err != nil {
		s.metrics.IncRefresh(metrics.StatusFailed)
		s.logger.Error("token reissue failed", slog.String("error", err.Error()))
		return nil, apperror.Unauthorized(MsgInvalidToken)
	}

	s.metrics.IncRefresh(metrics.StatusSuccess)
	s.record(model.EventTokenRefreshed, claims.OrganizationID, claims.Subject, "", input.IP)
	return tokens, nil
}

func (s *IdentityService) record(eventType model.IdentityEventType, organizationID, userID, subjectHash, ip string) {
	s.events.Record(&model.IdentityEvent{
		Type:           eventType,
		OrganizationID: organizationID,
		UserID:         userID,
		SubjectHash:    subjectHash,
		IP:             ip,
		OccurredAt:     s.now().UTC(),
	})
}

package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository/memory"
)

const (
	testAccessSecret  = "access-secret-for-tests-0123456789abcdef"
	testRefreshSecret = "refresh-secret-for-tests-0123456789abcdef"
)

type recordingSink struct {
	mu     sync.Mutex
	events []*model.IdentityEvent
}

func (s *recordingSink) Record(event *model.IdentityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) ofType(t model.IdentityEventType) []*model.IdentityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.IdentityEvent
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type identityFixture struct {
	store    *memory.Store
	tokens   *auth.TokenIssuer
	sink     *recordingSink
	recorder *metrics.InMemoryRecorder
	svc      *IdentityService
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()

	tokens, err := auth.NewTokenIssuer(testAccessSecret, testRefreshSecret, auth.DefaultAccessTTL)
	require.NoError(t, err)

	f := &identityFixture{
		store:    memory.NewStore(),
		tokens:   tokens,
		sink:     &recordingSink{},
		recorder: metrics.NewInMemory(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewIdentityService(f.store, auth.NewVault(bcrypt.MinCost), tokens, f.sink, f.recorder, logger)
	return f
}

func acmeRegistration() RegisterInput {
	return RegisterInput{
		OrganizationName: "Acme Salon",
		Slug:             "acme",
		Email:            "owner@acme.test",
		Password:         "Sup3rSecret!",
		FirstName:        "Ada",
		LastName:         "Owner",
		Timezone:         "America/New_York",
		IP:               "203.0.113.7",
	}
}

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/middleware"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository/memory"
	"github.com/swiftslot/swiftslot/internal/service"
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

func (s *recordingSink) count(t model.IdentityEventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type testAPI struct {
	server   *httptest.Server
	store    *memory.Store
	sink     *recordingSink
	recorder *metrics.InMemoryRecorder
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := discardLogger()
	tokens, err := auth.NewTokenIssuer(testAccessSecret, testRefreshSecret, auth.DefaultAccessTTL)
	require.NoError(t, err)

	api := &testAPI{
		store:    memory.NewStore(),
		sink:     &recordingSink{},
		recorder: metrics.NewInMemory(),
	}

	router := NewRouter(RouterConfig{
		Logger:        logger,
		Tokens:        tokens,
		Identity:      service.NewIdentityService(api.store, auth.NewVault(bcrypt.MinCost), tokens, api.sink, api.recorder, logger),
		Organizations: service.NewOrganizationService(api.store, nil, 0, api.recorder, logger),
		Customers:     service.NewCustomerService(api.store, api.recorder),
		Events:        api.sink,
		Metrics:       api.recorder,
		Snapshotter:   api.recorder,
		DB:            api.store,
		Security:      middleware.SecurityConfig{IsDevelopment: true, MaxRequestBodySize: 1 << 20},
		CORS:          middleware.DefaultCORSConfig(),
	})

	api.server = httptest.NewServer(router)
	t.Cleanup(api.server.Close)
	return api
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func (a *testAPI) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type tokensBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type registerBody struct {
	Organization struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"organization"`
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Tokens tokensBody `json:"tokens"`
}

type loginBody struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Tokens tokensBody `json:"tokens"`
}

func registerTenant(t *testing.T, api *testAPI, slug, email string) registerBody {
	t.Helper()

	var out envelope[registerBody]
	resp := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"organizationName": "Tenant " + slug,
		"organizationSlug": slug,
		"email":            email,
		"password":         "Sup3rSecret!",
		"firstName":        "Ada",
		"lastName":         "Owner",
	}, &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return out.Data
}

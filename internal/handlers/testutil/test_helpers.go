package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/memberhub/internal/api"
	"github.com/charlesng35/memberhub/internal/app"
	iauth "github.com/charlesng35/memberhub/internal/auth"
	sharedtestutil "github.com/charlesng35/memberhub/internal/database/testutil"
	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/middleware"
	"github.com/charlesng35/memberhub/internal/models"
	"github.com/charlesng35/memberhub/internal/realtime"
	"github.com/charlesng35/memberhub/pkg/crypto"
	"github.com/charlesng35/memberhub/pkg/mail"
	"github.com/charlesng35/memberhub/pkg/response"
)

// DefaultPassword satisfies the password policy and is used for seeded users.
const DefaultPassword = "StrongPassw0rd!"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Config *app.Config
	Mail   *mail.Recorder
	Events *events.Recorder
	Hub    *realtime.Hub
}

// EnvOption adjusts the configuration before the router is built.
type EnvOption func(*app.Config)

// WithAuthRateLimit overrides the authentication rate limit.
func WithAuthRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config) {
		cfg.Server.RateLimit.AuthRequests = requests
		cfg.Server.RateLimit.Window = window
	}
}

// WithRegistrationGrantsAdmin toggles whether self-registration creates administrators.
func WithRegistrationGrantsAdmin(grant bool) EnvOption {
	return func(cfg *app.Config) {
		cfg.Auth.Registration.GrantAdmin = grant
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := &app.Config{
		Server: app.ServerConfig{
			RateLimit: app.RateLimitConfig{AuthRequests: 1000, Window: time.Minute},
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
			Registration: app.RegistrationSettings{GrantAdmin: true},
		},
		Intentions: app.IntentionsConfig{
			PublicBaseURL: "https://members.example.com",
			PhoneRegion:   "GB",
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	rateStore := middleware.NewMemoryRateStore(time.Minute)
	t.Cleanup(func() { _ = rateStore.Close() })

	recorder := &mail.Recorder{}
	publisher := &events.Recorder{}
	hub := realtime.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	router, err := api.NewRouter(db, jwtSvc, cfg,
		api.WithRealtimeHub(hub),
		api.WithRateStore(rateStore),
		api.WithMailer(recorder),
		api.WithPublisher(publisher),
	)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
		Config: cfg,
		Mail:   recorder,
		Events: publisher,
		Hub:    hub,
	}
}

// CreateUser inserts a user with DefaultPassword and a random email.
func (e *Env) CreateUser(isAdmin bool) *models.User {
	e.T.Helper()

	hashed, err := crypto.HashPassword(DefaultPassword)
	require.NoError(e.T, err)

	user := &models.User{
		FullName:     "Test User",
		Email:        "user-" + uuid.NewString() + "@example.com",
		PasswordHash: hashed,
		IsAdmin:      isAdmin,
	}
	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// TokenFor issues an access token for user without going through login.
func (e *Env) TokenFor(user *models.User) string {
	e.T.Helper()

	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	require.NoError(e.T, err)
	return token
}

// LoginResult mirrors the JSON response from POST /api/auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login authenticates through the API and returns the issued token.
func (e *Env) Login(email, password string) LoginResult {
	e.T.Helper()

	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	w := e.Request(http.MethodPost, "/api/auth/login", payload, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.AccessToken)
	require.Equal(e.T, "Bearer", result.TokenType)
	require.Greater(e.T, result.ExpiresIn, 0)
	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)
	req.RemoteAddr = "192.0.2.10:40000"

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

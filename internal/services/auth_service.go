package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/charlesng35/memberhub/internal/auth"
	"github.com/charlesng35/memberhub/internal/models"
	"github.com/charlesng35/memberhub/pkg/crypto"
	apperrors "github.com/charlesng35/memberhub/pkg/errors"
	"github.com/charlesng35/memberhub/pkg/logger"
	"github.com/charlesng35/memberhub/pkg/metrics"
)

// TokenResponse is returned after a successful login or registration.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RegisterInput captures the self-service registration payload.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// AuthOption customises AuthService behaviour.
type AuthOption func(*AuthService)

// WithRegistrationGrantsAdmin controls whether self-registered accounts are administrators.
func WithRegistrationGrantsAdmin(grant bool) AuthOption {
	return func(s *AuthService) {
		s.grantAdmin = grant
	}
}

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	users        *UserService
	jwt          *auth.JWTService
	auditService *AuditService
	grantAdmin   bool
}

// NewAuthService constructs an AuthService. Registration grants administrator
// rights unless disabled through WithRegistrationGrantsAdmin.
func NewAuthService(users *UserService, jwt *auth.JWTService, auditService *AuditService, opts ...AuthOption) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("auth service: user service is required")
	}
	if jwt == nil {
		return nil, errors.New("auth service: jwt service is required")
	}

	svc := &AuthService{
		users:        users,
		jwt:          jwt,
		auditService: auditService,
		grantAdmin:   true,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies the credentials and issues a session token. Unknown emails and
// wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	ctx = ensureContext(ctx)

	user, found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		crypto.BurnPasswordCheck(password)
		s.recordLogin(ctx, nil, email, false)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !crypto.VerifyPassword(user.PasswordHash, password) {
		s.recordLogin(ctx, &user.ID, user.Email, false)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.recordLogin(ctx, &user.ID, user.Email, true)
	return token, nil
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*TokenResponse, *models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.users.Create(ctx, CreateUserInput{
		FullName: input.FullName,
		Email:    input.Email,
		Password: input.Password,
		IsAdmin:  s.grantAdmin,
		IsMember: false,
	})
	if err != nil {
		return nil, nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &user.ID,
		Email:    user.Email,
		Action:   "auth.register",
		Resource: userResource(user.ID),
		Result:   auditResultSuccess,
		Metadata: map[string]any{"is_admin": user.IsAdmin},
	})
	return token, user, nil
}

func (s *AuthService) issue(user *models.User) (*TokenResponse, error) {
	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}

func (s *AuthService) recordLogin(ctx context.Context, userID *uint, email string, success bool) {
	result := auditResultSuccess
	if !success {
		result = auditResultFailure
	}
	metrics.AuthAttempts.WithLabelValues(result).Inc()

	if !success {
		logger.WithModule("auth").Info("login failed", zap.String("email", models.NormaliseEmail(email)))
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID: userID,
		Email:  models.NormaliseEmail(email),
		Action: "auth.login",
		Result: result,
	})
}

package app

import (
	"strings"

	"github.com/charlesng35/memberhub/internal/auth"
	"github.com/charlesng35/memberhub/internal/services"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// AuthServiceOptions converts registration policy into AuthService options.
func (c AuthConfig) AuthServiceOptions() []services.AuthOption {
	return []services.AuthOption{
		services.WithRegistrationGrantsAdmin(c.Registration.GrantAdmin),
	}
}

// BootstrapAdminInput returns the administrator to ensure on startup, or false
// when none is configured.
func (c AuthConfig) BootstrapAdminInput() (services.CreateUserInput, bool) {
	email := strings.TrimSpace(c.BootstrapAdmin.Email)
	if email == "" || c.BootstrapAdmin.Password == "" {
		return services.CreateUserInput{}, false
	}

	name := strings.TrimSpace(c.BootstrapAdmin.FullName)
	if name == "" {
		name = "Administrator"
	}

	return services.CreateUserInput{
		FullName: name,
		Email:    email,
		Password: c.BootstrapAdmin.Password,
		IsAdmin:  true,
		IsMember: true,
	}, true
}

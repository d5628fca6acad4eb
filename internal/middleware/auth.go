package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/auditctx"
	iauth "github.com/charlesng35/memberhub/internal/auth"
	"github.com/charlesng35/memberhub/internal/models"
	"github.com/charlesng35/memberhub/pkg/errors"
	"github.com/charlesng35/memberhub/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxPrincipalKey = "principal"
)

// UserLookup resolves the account named by a session token.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Auth enforces JWT authentication and confirms the account still exists.
// The principal attached to the context reflects the stored user, not the
// claims, so revoked admin rights take effect immediately.
func Auth(jwt *iauth.JWTService, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := requestToken(c)
		if !ok {
			unauthorized(c)
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			unauthorized(c)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			// Lookup failures other than a missing user are server errors.
			var appErr *errors.AppError
			if stderrors.As(err, &appErr) && appErr.StatusCode == http.StatusNotFound {
				unauthorized(c)
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		principal := iauth.PrincipalFromUser(user)

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, principal.UserID)
		c.Set(CtxPrincipalKey, principal)

		actor, _ := auditctx.FromContext(c.Request.Context())
		actor.UserID = &principal.UserID
		actor.Email = principal.Email
		c.Request = c.Request.WithContext(auditctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (*iauth.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*iauth.Principal)
	return principal, ok && principal != nil
}

// requestToken reads the bearer token. Browsers cannot set headers on
// WebSocket handshakes, so upgrade requests may pass it as ?token= instead.
func requestToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		return bearerToken(header)
	}
	if c.IsWebsocket() {
		token := strings.TrimSpace(c.Query("token"))
		return token, token != ""
	}
	return "", false
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, errors.ErrUnauthorized)
	c.Abort()
}

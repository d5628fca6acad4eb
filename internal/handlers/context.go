package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/memberhub/internal/auth"
	"github.com/charlesng35/memberhub/internal/middleware"
	"github.com/charlesng35/memberhub/pkg/errors"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentPrincipal returns the authenticated caller or an Unauthorized error.
func currentPrincipal(c *gin.Context) (*iauth.Principal, error) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return nil, errors.ErrUnauthorized
	}
	return principal, nil
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewBadRequest(name + " must be a positive integer")
	}
	return uint(id), nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/services"
	"github.com/charlesng35/memberhub/pkg/errors"
	"github.com/charlesng35/memberhub/pkg/response"
)

type UserHandler struct {
	service *services.UserService
}

type createUserRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72,password"`
	IsAdmin  bool   `json:"is_admin"`
	IsMember bool   `json:"is_member"`
}

type updateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	IsAdmin  *bool   `json:"is_admin"`
	IsMember *bool   `json:"is_member"`
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	principal, err := currentPrincipal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.service.GetByID(requestContext(c), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.authorisedTarget(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.Create(requestContext(c), services.CreateUserInput{
		FullName: body.FullName,
		Email:    body.Email,
		Password: body.Password,
		IsAdmin:  body.IsAdmin,
		IsMember: body.IsMember,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.authorisedTarget(c)
	if !ok {
		return
	}

	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	principal, _ := currentPrincipal(c)
	if (body.IsAdmin != nil || body.IsMember != nil) && !principal.IsAdmin {
		response.Error(c, errors.ErrForbidden.WithMessage("only administrators may change role flags"))
		return
	}

	user, err := h.service.Update(requestContext(c), id, services.UpdateUserInput{
		FullName: body.FullName,
		Email:    body.Email,
		IsAdmin:  body.IsAdmin,
		IsMember: body.IsMember,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	principal, err := currentPrincipal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if id == principal.UserID {
		response.Error(c, errors.NewBadRequest("administrators cannot delete their own account"))
		return
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// authorisedTarget parses :id and enforces the self-or-admin rule. On failure
// the error response has been written.
func (h *UserHandler) authorisedTarget(c *gin.Context) (uint, bool) {
	principal, err := currentPrincipal(c)
	if err != nil {
		response.Error(c, err)
		return 0, false
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return 0, false
	}

	if !principal.CanAccessUser(id) {
		response.Error(c, errors.ErrForbidden)
		return 0, false
	}
	return id, true
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/services"
	"github.com/charlesng35/memberhub/pkg/errors"
	"github.com/charlesng35/memberhub/pkg/response"
)

// IntentionHandler exposes the membership application workflow.
type IntentionHandler struct {
	svc *services.IntentionService
}

func NewIntentionHandler(svc *services.IntentionService) *IntentionHandler {
	return &IntentionHandler{svc: svc}
}

type createIntentionRequest struct {
	FullName string  `json:"full_name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=320"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Company  *string `json:"company" validate:"omitempty,max=255"`
	Position *string `json:"position" validate:"omitempty,max=255"`
	GroupID  uint    `json:"group_id" validate:"required,gt=0"`
}

type updateIntentionRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=320"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Company  *string `json:"company" validate:"omitempty,max=255"`
	Position *string `json:"position" validate:"omitempty,max=255"`
	GroupID  *uint   `json:"group_id" validate:"omitempty,gt=0"`
}

// POST /api/intentios
func (h *IntentionHandler) Create(c *gin.Context) {
	var req createIntentionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	intention, err := h.svc.Create(requestContext(c), services.CreateIntentionInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Position: req.Position,
		GroupID:  req.GroupID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intention)
}

// GET /api/intentios?groupId=
func (h *IntentionHandler) List(c *gin.Context) {
	principal, err := currentPrincipal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var groupID *uint
	if raw := strings.TrimSpace(c.Query("groupId")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			response.Error(c, errors.NewBadRequest("groupId must be a positive integer"))
			return
		}
		id := uint(parsed)
		groupID = &id
	}

	intentions, err := h.svc.List(requestContext(c), groupID, principal.IsAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, intentions)
}

// GET /api/intentios/by-token/:token
func (h *IntentionHandler) GetByToken(c *gin.Context) {
	intention, err := h.svc.GetByToken(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, intention)
}

// GET /api/intentios/:id
func (h *IntentionHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	intention, err := h.svc.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, intention)
}

// POST /api/intentios/:id/approve
func (h *IntentionHandler) Approve(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	intention, err := h.svc.Approve(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, intention)
}

// POST /api/intentios/:id/reject
func (h *IntentionHandler) Reject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	intention, err := h.svc.Reject(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, intention)
}

// PATCH /api/intentios/:id
func (h *IntentionHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req updateIntentionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	intention, err := h.svc.Update(requestContext(c), id, services.UpdateIntentionInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Position: req.Position,
		GroupID:  req.GroupID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, intention)
}

// DELETE /api/intentios/:id
func (h *IntentionHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

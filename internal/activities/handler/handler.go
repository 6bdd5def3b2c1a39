package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmlink_backend/internal/activities/service"
	"farmlink_backend/internal/activities/transport"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/validator"
)

// Handler handles HTTP requests for farm activities.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidActivityID = "invalid activity ID"
	msgHouseholdRequired = "user has no household"
)

// New creates a new activities handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func actingHousehold(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, false
	}
	householdID := identity.HouseholdID()
	if householdID == nil {
		httpkit.Error(c, http.StatusForbidden, msgHouseholdRequired, nil)
		return uuid.Nil, false
	}
	return *householdID, true
}

// Create logs a planned farm activity.
// POST /api/v1/activities
func (h *Handler) Create(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List lists the acting household's activities.
// GET /api/v1/activities
func (h *Handler) List(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.ListActivitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get retrieves one activity.
// GET /api/v1/activities/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidActivityID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update edits an activity.
// PUT /api/v1/activities/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidActivityID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus moves an activity to a new status.
// PATCH /api/v1/activities/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidActivityID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes an activity.
// DELETE /api/v1/activities/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidActivityID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), householdID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

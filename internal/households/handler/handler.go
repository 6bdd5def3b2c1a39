package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmlink_backend/internal/households/service"
	"farmlink_backend/internal/households/transport"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/validator"
)

// Handler handles HTTP requests for households and workers.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest     = "invalid request"
	msgValidationFailed   = "validation failed"
	msgInvalidHouseholdID = "invalid household ID"
	msgInvalidWorkerID    = "invalid worker ID"
	msgHouseholdRequired  = "user has no household"
)

// New creates a new households handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func actingHousehold(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, uuid.Nil, false
	}
	householdID := identity.HouseholdID()
	if householdID == nil {
		httpkit.Error(c, http.StatusForbidden, msgHouseholdRequired, nil)
		return uuid.Nil, uuid.Nil, false
	}
	return identity.UserID(), *householdID, true
}

// Create registers a household with the acting user as owner.
// POST /api/v1/households
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateHousehold(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetOwn retrieves the acting user's household.
// GET /api/v1/households/me
func (h *Handler) GetOwn(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.GetOwnHousehold(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get retrieves a household by ID.
// GET /api/v1/households/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidHouseholdID, nil)
		return
	}
	if identity := httpkit.MustGetIdentity(c); identity == nil {
		return
	}

	result, err := h.svc.GetHousehold(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update updates the acting user's household profile.
// PUT /api/v1/households/me
func (h *Handler) Update(c *gin.Context) {
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateHousehold(c.Request.Context(), userID, householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddWorker adds a worker profile to the acting household.
// POST /api/v1/households/me/workers
func (h *Handler) AddWorker(c *gin.Context) {
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AddWorker(c.Request.Context(), userID, householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListWorkers lists the acting household's workers.
// GET /api/v1/households/me/workers
func (h *Handler) ListWorkers(c *gin.Context) {
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ListWorkers(c.Request.Context(), userID, householdID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetAvailability updates a worker's availability hint.
// PATCH /api/v1/households/me/workers/:workerId/availability
func (h *Handler) SetAvailability(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("workerId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidWorkerID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.SetAvailability(c.Request.Context(), userID, householdID, workerID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveWorker deletes a worker profile.
// DELETE /api/v1/households/me/workers/:workerId
func (h *Handler) RemoveWorker(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("workerId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidWorkerID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveWorker(c.Request.Context(), userID, householdID, workerID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

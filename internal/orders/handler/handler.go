package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmlink_backend/internal/orders/service"
	"farmlink_backend/internal/orders/transport"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/validator"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidOrderID    = "invalid order ID"
	msgHouseholdRequired = "user has no household"
)

// New creates a new orders handler.
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

// Place creates a pending order against a listing.
// POST /api/v1/orders
func (h *Handler) Place(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Place(c.Request.Context(), householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get retrieves an order visible to the acting household.
// GET /api/v1/orders/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidOrderID, nil)
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

// ListPlaced lists orders the acting household placed as buyer.
// GET /api/v1/orders/placed
func (h *Handler) ListPlaced(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ListPlaced(c.Request.Context(), householdID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListReceived lists orders the acting household received as seller.
// GET /api/v1/orders/received
func (h *Handler) ListReceived(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ListReceived(c.Request.Context(), householdID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus transitions an order's status.
// PATCH /api/v1/orders/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidOrderID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.UpdateOrderStatusRequest
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

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmlink_backend/internal/exchange/service"
	"farmlink_backend/internal/exchange/transport"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/validator"
)

// Handler handles HTTP requests for the labor exchange ledger.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest     = "invalid request"
	msgValidationFailed   = "validation failed"
	msgInvalidExchangeID  = "invalid exchange ID"
	msgInvalidHouseholdID = "invalid household ID"
	msgHouseholdRequired  = "user has no household"
)

// New creates a new exchange handler.
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

// List lists the acting household's pairwise ledgers.
// GET /api/v1/exchanges
func (h *Handler) List(c *gin.Context) {
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ListForHousehold(c.Request.Context(), householdID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one ledger row with its recent transactions.
// GET /api/v1/exchanges/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidExchangeID, nil)
		return
	}
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.GetDetail(c.Request.Context(), householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Balance reports the balance with another household.
// GET /api/v1/exchanges/balance/:householdId
func (h *Handler) Balance(c *gin.Context) {
	otherID, err := uuid.Parse(c.Param("householdId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidHouseholdID, nil)
		return
	}
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.BalanceFor(c.Request.Context(), householdID, otherID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Reset settles an exchange balance to zero.
// POST /api/v1/exchanges/:id/reset
func (h *Handler) Reset(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidExchangeID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ResetBalance(c.Request.Context(), userID, householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Adjust posts a manual correction to an exchange.
// POST /api/v1/exchanges/:id/adjust
func (h *Handler) Adjust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidExchangeID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AdjustBalance(c.Request.Context(), userID, householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Recalculate replays the transaction log against the stored balance.
// POST /api/v1/exchanges/:id/recalculate
func (h *Handler) Recalculate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidExchangeID, nil)
		return
	}
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Recalculate(c.Request.Context(), householdID, id, req.Apply)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RecalculateAll replays every ledger the acting household participates in.
// POST /api/v1/exchanges/recalculate-all
func (h *Handler) RecalculateAll(c *gin.Context) {
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.RecalculateAllForHousehold(c.Request.Context(), householdID, req.Apply)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

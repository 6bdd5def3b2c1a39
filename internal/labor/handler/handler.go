package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmlink_backend/internal/labor/service"
	"farmlink_backend/internal/labor/transport"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/validator"
)

// Handler handles HTTP requests for labor requests and assignments.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest      = "invalid request"
	msgValidationFailed    = "validation failed"
	msgInvalidRequestID    = "invalid labor request ID"
	msgInvalidAssignmentID = "invalid assignment ID"
	msgHouseholdRequired   = "user has no household"
)

// New creates a new labor handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// actingHousehold extracts the authenticated user's household, aborting with
// 403 when the account is not linked to one.
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

// CreateRequest creates a labor request.
// POST /api/v1/labor/requests
func (h *Handler) CreateRequest(c *gin.Context) {
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateRequest(c.Request.Context(), userID, householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetRequest retrieves a labor request.
// GET /api/v1/labor/requests/:id
func (h *Handler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.GetRequest(c.Request.Context(), householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListRequests lists the acting household's labor requests.
// GET /api/v1/labor/requests
func (h *Handler) ListRequests(c *gin.Context) {
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.ListRequestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListRequests(c.Request.Context(), householdID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListPublicRequests lists public requests open for joining.
// GET /api/v1/labor/requests/public
func (h *Handler) ListPublicRequests(c *gin.Context) {
	result, err := h.svc.ListPublicRequests(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AcceptRequest accepts a pending labor request.
// POST /api/v1/labor/requests/:id/accept
func (h *Handler) AcceptRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.AcceptRequest(c.Request.Context(), userID, householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeclineRequest declines a pending labor request.
// POST /api/v1/labor/requests/:id/decline
func (h *Handler) DeclineRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.DeclineRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.DeclineRequest(c.Request.Context(), userID, householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CancelRequest cancels a labor request with cascading cleanup.
// POST /api/v1/labor/requests/:id/cancel
func (h *Handler) CancelRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.CancelRequest(c.Request.Context(), userID, householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CompleteRequest marks an accepted labor request completed.
// POST /api/v1/labor/requests/:id/complete
func (h *Handler) CompleteRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.CompleteRequest(c.Request.Context(), userID, householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// JoinRequest joins a public fan-out request as provider.
// POST /api/v1/labor/requests/:id/join
func (h *Handler) JoinRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.JoinRequest(c.Request.Context(), userID, householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GroupStatus aggregates child requests of a fan-out group by status.
// GET /api/v1/labor/requests/:id/group-status
func (h *Handler) GroupStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.GroupStatus(c.Request.Context(), householdID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CheckConflict probes a worker's calendar for overlapping bookings.
// GET /api/v1/labor/assignments/check-conflict
func (h *Handler) CheckConflict(c *gin.Context) {
	if identity := httpkit.MustGetIdentity(c); identity == nil {
		return
	}

	var req transport.ConflictCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CheckConflict(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateAssignment books one worker on one date.
// POST /api/v1/labor/requests/:id/assignments
func (h *Handler) CreateAssignment(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateAssignment(c.Request.Context(), userID, householdID, requestID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// BatchAssign books the cross product of workers and dates.
// POST /api/v1/labor/requests/:id/assignments/batch
func (h *Handler) BatchAssign(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.BatchAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.BatchAssign(c.Request.Context(), userID, householdID, requestID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListAssignments lists assignments under a request.
// GET /api/v1/labor/requests/:id/assignments
func (h *Handler) ListAssignments(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequestID, nil)
		return
	}
	_, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ListAssignments(c.Request.Context(), householdID, requestID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// WorkerReport lets a worker report their assignment done.
// POST /api/v1/labor/assignments/:id/report
func (h *Handler) WorkerReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAssignmentID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.WorkerReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.WorkerReport(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CompleteAssignment confirms an assignment as done.
// POST /api/v1/labor/assignments/:id/complete
func (h *Handler) CompleteAssignment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAssignmentID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.CompleteAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CompleteAssignment(c.Request.Context(), userID, householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkMissed marks an assignment as a worker no-show.
// POST /api/v1/labor/assignments/:id/missed
func (h *Handler) MarkMissed(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAssignmentID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.MissedAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.MarkMissed(c.Request.Context(), userID, householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RejectAssignment lets a worker turn an assignment down.
// POST /api/v1/labor/assignments/:id/reject
func (h *Handler) RejectAssignment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAssignmentID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.RejectAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.RejectAssignment(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RateWorker records the farmer's rating of the worker.
// POST /api/v1/labor/assignments/:id/rate-worker
func (h *Handler) RateWorker(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAssignmentID, nil)
		return
	}
	userID, householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.RateWorker(c.Request.Context(), userID, householdID, id, req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"rated": true})
}

// RateFarmer records the worker's rating of the requesting household.
// POST /api/v1/labor/assignments/:id/rate-farmer
func (h *Handler) RateFarmer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAssignmentID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.RateFarmer(c.Request.Context(), identity.UserID(), id, req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"rated": true})
}

// AvailabilityForecast summarizes a worker's bookings per day.
// GET /api/v1/labor/workers/forecast
func (h *Handler) AvailabilityForecast(c *gin.Context) {
	if identity := httpkit.MustGetIdentity(c); identity == nil {
		return
	}

	var req transport.AvailabilityForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AvailabilityForecast(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

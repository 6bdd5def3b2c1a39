package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmlink_backend/internal/products/service"
	"farmlink_backend/internal/products/transport"
	"farmlink_backend/platform/httpkit"
	"farmlink_backend/platform/validator"
)

// Handler handles HTTP requests for product listings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidProductID  = "invalid product ID"
	msgHouseholdRequired = "user has no household"
)

// New creates a new products handler.
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

// Create adds a product listing for the acting household.
// POST /api/v1/products
func (h *Handler) Create(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.CreateProductRequest
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

// Get retrieves a single product listing.
// GET /api/v1/products/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProductID, nil)
		return
	}
	if identity := httpkit.MustGetIdentity(c); identity == nil {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListOwn lists the acting household's listings, active or not.
// GET /api/v1/products/mine
func (h *Handler) ListOwn(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	result, err := h.svc.ListOwn(c.Request.Context(), householdID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListMarket lists other households' active listings.
// GET /api/v1/products
func (h *Handler) ListMarket(c *gin.Context) {
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	category := c.Query("category")

	result, err := h.svc.ListMarket(c.Request.Context(), householdID, category, page, pageSize)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update modifies a listing owned by the acting household.
// PUT /api/v1/products/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProductID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.UpdateProductRequest
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

// Delete removes a listing owned by the acting household.
// DELETE /api/v1/products/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProductID, nil)
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

// PresignPhoto returns a presigned upload URL for a listing photo.
// POST /api/v1/products/:id/photo/presign
func (h *Handler) PresignPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProductID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.PresignPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.PresignPhotoUpload(c.Request.Context(), householdID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AttachPhoto records an uploaded photo key on the listing.
// POST /api/v1/products/:id/photo
func (h *Handler) AttachPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProductID, nil)
		return
	}
	householdID, ok := actingHousehold(c)
	if !ok {
		return
	}

	var req transport.AttachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.AttachPhoto(c.Request.Context(), householdID, id, req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"attached": true})
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// VariantHandler serves the storefront variant picker.
type VariantHandler struct {
	variantService *service.VariantService
}

// NewVariantHandler constructs a VariantHandler.
func NewVariantHandler(variantService *service.VariantService) *VariantHandler {
	return &VariantHandler{variantService: variantService}
}

type selectionRequest struct {
	Selection variant.Selection `json:"selection"`
	Quantity  *int              `json:"quantity"`
}

// GetVariants handles GET /v1/products/:id/variants
func (h *VariantHandler) GetVariants(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	snap, err := h.variantService.Snapshot(c.Request.Context(), productID)
	if err != nil {
		handleCatalogError(c, err)
		return
	}
	utils.Success(c, 200, "Variants retrieved", snap)
}

// Resolve handles POST /v1/products/:id/variants/resolve
func (h *VariantHandler) Resolve(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		utils.Error(c, 400, "INVALID_QUANTITY", "Quantity must not be negative")
		return
	}

	res, err := h.variantService.Resolve(c.Request.Context(), productID, req.Selection, quantity)
	if err != nil {
		handleCatalogError(c, err)
		return
	}
	utils.Success(c, 200, "Selection resolved", res)
}

// Estimate handles POST /v1/products/:id/variants/estimate
func (h *VariantHandler) Estimate(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	res, err := h.variantService.Estimate(c.Request.Context(), productID, req.Selection)
	if err != nil {
		handleCatalogError(c, err)
		return
	}
	utils.Success(c, 200, "Price estimated", res)
}

// Options handles POST /v1/products/:id/variants/options
func (h *VariantHandler) Options(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	req, ok := bindSelection(c)
	if !ok {
		return
	}

	res, err := h.variantService.Options(c.Request.Context(), productID, req.Selection)
	if err != nil {
		handleCatalogError(c, err)
		return
	}
	utils.Success(c, 200, "Options retrieved", res)
}

func productIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_ID", "Invalid product ID")
		return 0, false
	}
	return id, true
}

func bindSelection(c *gin.Context) (*selectionRequest, bool) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return nil, false
	}
	return &req, true
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CatalogManagementHandler handles admin edits of variant catalogs.
type CatalogManagementHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogManagementHandler constructs a CatalogManagementHandler.
func NewCatalogManagementHandler(catalogService *service.CatalogService) *CatalogManagementHandler {
	return &CatalogManagementHandler{catalogService: catalogService}
}

// CreateAttribute handles POST /v1/admin/products/:id/attributes
func (h *CatalogManagementHandler) CreateAttribute(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req service.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	attr, err := h.catalogService.CreateAttribute(c.Request.Context(), productID, &req)
	if err != nil {
		h.fail(c, "create attribute", err)
		return
	}
	utils.Success(c, 201, "Attribute created", attr)
}

// AddAttributeValue handles POST /v1/admin/attributes/:id/values
func (h *CatalogManagementHandler) AddAttributeValue(c *gin.Context) {
	attributeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || attributeID <= 0 {
		utils.Error(c, 400, "INVALID_ID", "Invalid attribute ID")
		return
	}

	var req service.AddAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	v, err := h.catalogService.AddAttributeValue(c.Request.Context(), attributeID, &req)
	if err != nil {
		h.fail(c, "add attribute value", err)
		return
	}
	utils.Success(c, 201, "Attribute value created", v)
}

// CreateCombination handles POST /v1/admin/products/:id/combinations
func (h *CatalogManagementHandler) CreateCombination(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req service.CreateCombinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	combo, err := h.catalogService.CreateCombination(c.Request.Context(), productID, &req)
	if err != nil {
		h.fail(c, "create combination", err)
		return
	}
	utils.Success(c, 201, "Combination created", combo)
}

// SetDefaultCombination handles PUT /v1/admin/products/:id/combinations/:combinationId/default
func (h *CatalogManagementHandler) SetDefaultCombination(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	combinationID, err := strconv.Atoi(c.Param("combinationId"))
	if err != nil || combinationID <= 0 {
		utils.Error(c, 400, "INVALID_ID", "Invalid combination ID")
		return
	}

	if err := h.catalogService.SetDefaultCombination(c.Request.Context(), productID, combinationID); err != nil {
		h.fail(c, "set default combination", err)
		return
	}
	utils.Success(c, 200, "Default combination updated", gin.H{
		"productId":     productID,
		"combinationId": combinationID,
	})
}

// Audit handles GET /v1/admin/products/:id/audit
func (h *CatalogManagementHandler) Audit(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	report, err := h.catalogService.AuditProduct(c.Request.Context(), productID)
	if err != nil {
		h.fail(c, "audit product", err)
		return
	}
	utils.Success(c, 200, "Catalog audited", report)
}

func (h *CatalogManagementHandler) fail(c *gin.Context, op string, err error) {
	log.Warn().Err(err).Str("op", op).Int("admin_id", c.GetInt("user_id")).Msg("Catalog admin request failed")
	handleCatalogError(c, err)
}

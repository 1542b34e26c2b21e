package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// handleCatalogError maps service errors onto API error codes. Validation
// errors keep their wrapped detail so admins can see which pick was wrong.
func handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrProductNotFound):
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, utils.ErrAttributeNotFound):
		utils.Error(c, 404, "ATTRIBUTE_NOT_FOUND", "Attribute not found")
	case errors.Is(err, utils.ErrCombinationNotFound):
		utils.Error(c, 404, "COMBINATION_NOT_FOUND", "Combination not found")
	case errors.Is(err, utils.ErrCatalogInconsistent):
		var details []string
		for _, ce := range variant.CatalogErrors(err) {
			details = append(details, ce.Error())
		}
		utils.ErrorWithDetails(c, 409, "CATALOG_INCONSISTENT", "Product catalog is inconsistent", details)
	case errors.Is(err, utils.ErrAttributeLocked):
		utils.Error(c, 409, "ATTRIBUTE_LOCKED", "Attributes cannot be added once combinations exist")
	case errors.Is(err, utils.ErrDuplicateCombination):
		utils.Error(c, 409, "DUPLICATE_COMBINATION", err.Error())
	case errors.Is(err, utils.ErrDuplicateSKU):
		utils.Error(c, 409, "DUPLICATE_SKU", "SKU already exists")
	case errors.Is(err, utils.ErrInvalidSelection):
		utils.Error(c, 400, "INVALID_SELECTION", err.Error())
	case errors.Is(err, utils.ErrInvalidCombination):
		utils.Error(c, 400, "INVALID_COMBINATION", err.Error())
	case errors.Is(err, utils.ErrInvalidAttribute):
		utils.Error(c, 400, "INVALID_ATTRIBUTE", err.Error())
	case errors.Is(err, utils.ErrInvalidStockStatus):
		utils.Error(c, 400, "INVALID_STOCK_STATUS", "stockStatus must be one of in_stock, low_stock, out_of_stock, preorder")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}

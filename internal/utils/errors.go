package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken         = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials   = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive      = errors.New("ACCOUNT_INACTIVE")
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrAttributeNotFound    = errors.New("ATTRIBUTE_NOT_FOUND")
	ErrInvalidAttribute     = errors.New("INVALID_ATTRIBUTE")
	ErrAttributeLocked      = errors.New("ATTRIBUTE_LOCKED")
	ErrCombinationNotFound  = errors.New("COMBINATION_NOT_FOUND")
	ErrCatalogInconsistent  = errors.New("CATALOG_INCONSISTENT")
	ErrInvalidCombination   = errors.New("INVALID_COMBINATION")
	ErrDuplicateCombination = errors.New("DUPLICATE_COMBINATION")
	ErrDuplicateSKU         = errors.New("DUPLICATE_SKU")
	ErrInvalidSelection     = errors.New("INVALID_SELECTION")
	ErrInvalidQuantity      = errors.New("INVALID_QUANTITY")
	ErrInvalidStockStatus   = errors.New("INVALID_STOCK_STATUS")
)

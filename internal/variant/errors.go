package variant

import (
	"errors"
	"fmt"
)

// Resolution defects. Both indicate catalog authoring errors, not user errors.
var (
	ErrNoMatch            = errors.New("NO_MATCH")
	ErrNoPurchasableState = errors.New("NO_PURCHASABLE_STATE")
)

// Catalog shape errors reported by ValidateProduct.
var (
	ErrDuplicateAttribute      = errors.New("DUPLICATE_ATTRIBUTE")
	ErrDuplicateAttributeValue = errors.New("DUPLICATE_ATTRIBUTE_VALUE")
	ErrCombinationShape        = errors.New("COMBINATION_SHAPE")
	ErrDuplicateCombination    = errors.New("DUPLICATE_COMBINATION")
	ErrMultipleDefaults        = errors.New("MULTIPLE_DEFAULTS")
)

// Selection errors reported by ValidateSelection.
var (
	ErrUnknownAttribute      = errors.New("UNKNOWN_ATTRIBUTE")
	ErrUnknownAttributeValue = errors.New("UNKNOWN_ATTRIBUTE_VALUE")
)

// CatalogError locates one catalog defect inside a product.
// CombinationID and AttributeID are zero when not applicable.
type CatalogError struct {
	ProductID     int
	CombinationID int
	AttributeID   int
	Detail        string
	Err           error
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("product %d", e.ProductID)
	if e.CombinationID != 0 {
		msg += fmt.Sprintf(" combination %d", e.CombinationID)
	}
	if e.AttributeID != 0 {
		msg += fmt.Sprintf(" attribute %d", e.AttributeID)
	}
	return fmt.Sprintf("%s: %s: %s", msg, e.Err, e.Detail)
}

func (e *CatalogError) Unwrap() error { return e.Err }

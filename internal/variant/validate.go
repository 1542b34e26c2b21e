package variant

import (
	"errors"
	"fmt"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// ValidateProduct checks the catalog shape of p once, when the snapshot is
// loaded. It returns nil for a consistent product, otherwise every defect
// found as *CatalogError values joined with errors.Join.
func ValidateProduct(p *models.Product) error {
	var errs []error
	add := func(combinationID, attributeID int, sentinel error, format string, args ...any) {
		errs = append(errs, &CatalogError{
			ProductID:     p.ID,
			CombinationID: combinationID,
			AttributeID:   attributeID,
			Detail:        fmt.Sprintf(format, args...),
			Err:           sentinel,
		})
	}

	// attribute id -> set of its value ids
	values := make(map[int]map[int]struct{}, len(p.VariantAttributes))
	owner := make(map[int]int)
	for _, a := range p.VariantAttributes {
		if _, dup := values[a.ID]; dup {
			add(0, a.ID, ErrDuplicateAttribute, "attribute %q declared twice", a.Name)
			continue
		}
		set := make(map[int]struct{}, len(a.Values))
		for _, v := range a.Values {
			if prev, dup := owner[v.ID]; dup {
				add(0, a.ID, ErrDuplicateAttributeValue, "value %d already belongs to attribute %d", v.ID, prev)
				continue
			}
			owner[v.ID] = a.ID
			set[v.ID] = struct{}{}
		}
		values[a.ID] = set
	}

	defaults := 0
	assignments := make(map[string]int, len(p.VariantCombinations))
	for _, c := range p.VariantCombinations {
		if c.IsDefault {
			defaults++
			if defaults > 1 {
				add(c.ID, 0, ErrMultipleDefaults, "more than one default combination")
			}
		}

		if shapeErr := combinationShape(&c, values); shapeErr != "" {
			add(c.ID, 0, ErrCombinationShape, "%s", shapeErr)
			continue
		}

		key := SelectionFrom(&c).Key()
		if prev, dup := assignments[key]; dup {
			add(c.ID, 0, ErrDuplicateCombination, "same assignment as combination %d", prev)
			continue
		}
		assignments[key] = c.ID
	}

	return errors.Join(errs...)
}

// combinationShape describes why c does not hold exactly one valid value per
// declared attribute, or returns "" when it does.
func combinationShape(c *models.VariantCombination, values map[int]map[int]struct{}) string {
	seen := make(map[int]struct{}, len(c.Attributes))
	for _, a := range c.Attributes {
		set, ok := values[a.AttributeID]
		if !ok {
			return fmt.Sprintf("attribute %d is not declared on the product", a.AttributeID)
		}
		if _, dup := seen[a.AttributeID]; dup {
			return fmt.Sprintf("attribute %d assigned more than once", a.AttributeID)
		}
		seen[a.AttributeID] = struct{}{}
		if _, ok := set[a.AttributeValueID]; !ok {
			return fmt.Sprintf("value %d does not belong to attribute %d", a.AttributeValueID, a.AttributeID)
		}
	}
	if len(seen) != len(values) {
		return fmt.Sprintf("assigns %d of %d attributes", len(seen), len(values))
	}
	return ""
}

// ValidateSelection rejects picks that reference attributes or values the
// product does not declare.
func ValidateSelection(p *models.Product, sel Selection) error {
	for attrID, valueID := range sel.pairs {
		a := p.AttributeByID(attrID)
		if a == nil {
			return fmt.Errorf("attribute %d: %w", attrID, ErrUnknownAttribute)
		}
		if a.ValueByID(valueID) == nil {
			return fmt.Errorf("attribute %d value %d: %w", attrID, valueID, ErrUnknownAttributeValue)
		}
	}
	return nil
}

// CatalogErrors flattens the error returned by ValidateProduct.
func CatalogErrors(err error) []*CatalogError {
	if err == nil {
		return nil
	}
	var out []*CatalogError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, CatalogErrors(e)...)
		}
		return out
	}
	var ce *CatalogError
	if errors.As(err, &ce) {
		out = append(out, ce)
	}
	return out
}

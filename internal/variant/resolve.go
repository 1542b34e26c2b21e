// Package variant resolves a shopper's attribute picks into one purchasable
// combination of a product. Everything here is pure: no I/O, no locking, and
// inputs are never mutated.
package variant

import (
	"github.com/GTDGit/gtd_catalog/internal/models"
)

// Status is the kind of outcome Resolve produced.
type Status string

const (
	StatusResolved   Status = "resolved"
	StatusIncomplete Status = "incomplete"
	StatusNoMatch    Status = "no_match"
)

// Resolution is the outcome of matching a selection against a product.
//
// Resolved carries Combination, a pointer into product.VariantCombinations.
// Incomplete carries Missing in declared attribute order.
// NoMatch carries Defect (ErrNoMatch or ErrNoPurchasableState).
type Resolution struct {
	Status      Status
	Combination *models.VariantCombination
	Missing     []int
	Defect      error
}

// Resolved reports whether a single combination was found.
func (r Resolution) Resolved() bool { return r.Status == StatusResolved }

// Reportable reports whether the outcome points at a catalog authoring error
// that should be logged upstream. Incomplete selections never are.
func (r Resolution) Reportable() bool { return r.Defect != nil }

// RequiredAttributeIDs returns the id of every attribute of p in declared order.
func RequiredAttributeIDs(p *models.Product) []int {
	ids := make([]int, 0, len(p.VariantAttributes))
	for _, a := range p.VariantAttributes {
		ids = append(ids, a.ID)
	}
	return ids
}

// IsSelectionComplete reports whether every required attribute has a pick.
func IsSelectionComplete(p *models.Product, sel Selection) bool {
	for _, a := range p.VariantAttributes {
		if !sel.Has(a.ID) {
			return false
		}
	}
	return true
}

// Resolve matches sel against the combinations of p.
func Resolve(p *models.Product, sel Selection) Resolution {
	required := RequiredAttributeIDs(p)

	if len(required) == 0 {
		if len(p.VariantCombinations) == 0 {
			return Resolution{Status: StatusNoMatch, Defect: ErrNoPurchasableState}
		}
		for i := range p.VariantCombinations {
			if p.VariantCombinations[i].IsDefault {
				return Resolution{Status: StatusResolved, Combination: &p.VariantCombinations[i]}
			}
		}
		return Resolution{Status: StatusResolved, Combination: &p.VariantCombinations[0]}
	}

	var missing []int
	for _, id := range required {
		if !sel.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return Resolution{Status: StatusIncomplete, Missing: missing}
	}

	if len(p.VariantCombinations) == 0 {
		return Resolution{Status: StatusNoMatch, Defect: ErrNoPurchasableState}
	}

	want := make(map[int]int, len(required))
	for _, id := range required {
		want[id], _ = sel.Get(id)
	}
	for i := range p.VariantCombinations {
		if matches(&p.VariantCombinations[i], want) {
			return Resolution{Status: StatusResolved, Combination: &p.VariantCombinations[i]}
		}
	}
	return Resolution{Status: StatusNoMatch, Defect: ErrNoMatch}
}

// matches reports whether the combination's assignment equals want exactly:
// same attribute ids, same value ids, no repeats.
func matches(c *models.VariantCombination, want map[int]int) bool {
	if len(c.Attributes) != len(want) {
		return false
	}
	seen := make(map[int]struct{}, len(want))
	for _, a := range c.Attributes {
		v, ok := want[a.AttributeID]
		if !ok || v != a.AttributeValueID {
			return false
		}
		if _, dup := seen[a.AttributeID]; dup {
			return false
		}
		seen[a.AttributeID] = struct{}{}
	}
	return true
}

// IsSelectionValid is the purchase gate: quantity must be positive and the
// selection must resolve to a combination.
func IsSelectionValid(p *models.Product, sel Selection, quantity int) bool {
	if quantity <= 0 {
		return false
	}
	if len(p.VariantAttributes) == 0 {
		return len(p.VariantCombinations) > 0
	}
	return Resolve(p, sel).Resolved()
}

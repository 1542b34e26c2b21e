package variant

import (
	"strings"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// DefaultSelection returns the picks of the default combination, used to
// preselect pickers. Empty when the product has no default.
func DefaultSelection(p *models.Product) Selection {
	for i := range p.VariantCombinations {
		if p.VariantCombinations[i].IsDefault {
			return SelectionFrom(&p.VariantCombinations[i])
		}
	}
	return Selection{}
}

// AvailableValueIDs returns, in declared order, the values of attributeID that
// occur in at least one combination agreeing with every other pick in sel.
// The current pick for attributeID itself is ignored.
func AvailableValueIDs(p *models.Product, sel Selection, attributeID int) []int {
	attr := p.AttributeByID(attributeID)
	if attr == nil {
		return nil
	}
	others := sel.Without(attributeID)

	reachable := make(map[int]struct{})
	for i := range p.VariantCombinations {
		c := &p.VariantCombinations[i]
		valueID, ok := agrees(c, others, attributeID)
		if ok {
			reachable[valueID] = struct{}{}
		}
	}

	ids := make([]int, 0, len(reachable))
	for _, v := range attr.Values {
		if _, ok := reachable[v.ID]; ok {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// agrees reports whether c is consistent with sel and returns the value c
// assigns to attributeID.
func agrees(c *models.VariantCombination, sel Selection, attributeID int) (int, bool) {
	valueID, found := 0, false
	for _, a := range c.Attributes {
		if a.AttributeID == attributeID {
			valueID, found = a.AttributeValueID, true
			continue
		}
		if picked, ok := sel.Get(a.AttributeID); ok && picked != a.AttributeValueID {
			return 0, false
		}
	}
	return valueID, found
}

// DescribeCombination renders "Color: Red / Size: M" in declared attribute order.
func DescribeCombination(p *models.Product, c *models.VariantCombination) string {
	sel := SelectionFrom(c)
	parts := make([]string, 0, len(p.VariantAttributes))
	for i := range p.VariantAttributes {
		a := &p.VariantAttributes[i]
		valueID, ok := sel.Get(a.ID)
		if !ok {
			continue
		}
		label := ""
		if v := a.ValueByID(valueID); v != nil {
			label = v.DisplayName
			if label == "" {
				label = v.Value
			}
		}
		parts = append(parts, a.Name+": "+label)
	}
	return strings.Join(parts, " / ")
}

package variant

import (
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// EstimatedPriceDelta sums the price modifiers of every value referenced by
// sel. Picks that do not exist on p and values without a modifier count as 0.
// The estimate is advisory: once Resolve succeeds, the combination price wins.
func EstimatedPriceDelta(p *models.Product, sel Selection) decimal.Decimal {
	total := decimal.Zero
	for attrID, valueID := range sel.pairs {
		a := p.AttributeByID(attrID)
		if a == nil {
			continue
		}
		v := a.ValueByID(valueID)
		if v == nil || v.PriceModifier == nil {
			continue
		}
		total = total.Add(*v.PriceModifier)
	}
	return total
}

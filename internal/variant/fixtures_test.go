package variant

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

const (
	colorID = 1
	sizeID  = 2

	red  = 11
	blue = 12

	small  = 21
	medium = 22
)

func combo(id int, isDefault bool, pairs ...[2]int) models.VariantCombination {
	c := models.VariantCombination{
		ID:          id,
		ProductID:   100,
		SKU:         "SKU-" + strconv.Itoa(id),
		Price:       decimal.NewFromInt(int64(100 + id)),
		StockStatus: models.StockInStock,
		IsDefault:   isDefault,
	}
	for _, p := range pairs {
		c.Attributes = append(c.Attributes, models.CombinationAttribute{
			CombinationID:    id,
			AttributeID:      p[0],
			AttributeValueID: p[1],
		})
	}
	return c
}

func modifier(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// scenarioA: Color={Red, Blue}, Size={S, M}; K1{Red,S}, K2{Red,M}, K3{Blue,S}.
func scenarioA() *models.Product {
	return &models.Product{
		ID:        100,
		Name:      "Tee",
		BasePrice: decimal.NewFromInt(100),
		VariantAttributes: []models.VariantAttribute{
			{
				ID:   colorID,
				Name: "Color",
				Values: []models.VariantAttributeValue{
					{ID: red, AttributeID: colorID, Value: "red", DisplayName: "Red"},
					{ID: blue, AttributeID: colorID, Value: "blue", DisplayName: "Blue", PriceModifier: modifier("2.50")},
				},
			},
			{
				ID:   sizeID,
				Name: "Size",
				Values: []models.VariantAttributeValue{
					{ID: small, AttributeID: sizeID, Value: "s", DisplayName: "S"},
					{ID: medium, AttributeID: sizeID, Value: "m", DisplayName: "M", PriceModifier: modifier("1.25")},
				},
			},
		},
		VariantCombinations: []models.VariantCombination{
			combo(1, false, [2]int{colorID, red}, [2]int{sizeID, small}),
			combo(2, true, [2]int{colorID, red}, [2]int{sizeID, medium}),
			combo(3, false, [2]int{sizeID, small}, [2]int{colorID, blue}),
		},
	}
}

// scenarioB: no attributes, one default combination.
func scenarioB() *models.Product {
	return &models.Product{
		ID:                  200,
		Name:                "Gift card",
		VariantCombinations: []models.VariantCombination{combo(9, true)},
	}
}

package variant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

func TestValidateProduct_Consistent(t *testing.T) {
	assert.NoError(t, ValidateProduct(scenarioA()))
	assert.NoError(t, ValidateProduct(scenarioB()))
	assert.NoError(t, ValidateProduct(&models.Product{ID: 1}))
}

func TestValidateProduct_Defects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *models.Product)
		want   error
	}{
		{
			name: "missing attribute",
			mutate: func(p *models.Product) {
				p.VariantCombinations[0] = combo(1, false, [2]int{colorID, red})
			},
			want: ErrCombinationShape,
		},
		{
			name: "extra attribute",
			mutate: func(p *models.Product) {
				p.VariantCombinations[0] = combo(1, false, [2]int{colorID, red}, [2]int{sizeID, small}, [2]int{77, 1})
			},
			want: ErrCombinationShape,
		},
		{
			name: "repeated attribute",
			mutate: func(p *models.Product) {
				p.VariantCombinations[0] = combo(1, false, [2]int{colorID, red}, [2]int{colorID, blue})
			},
			want: ErrCombinationShape,
		},
		{
			name: "value of another attribute",
			mutate: func(p *models.Product) {
				p.VariantCombinations[0] = combo(1, false, [2]int{colorID, small}, [2]int{sizeID, small})
			},
			want: ErrCombinationShape,
		},
		{
			name: "duplicate assignment",
			mutate: func(p *models.Product) {
				p.VariantCombinations = append(p.VariantCombinations, combo(4, false, [2]int{sizeID, medium}, [2]int{colorID, red}))
			},
			want: ErrDuplicateCombination,
		},
		{
			name: "two defaults",
			mutate: func(p *models.Product) {
				p.VariantCombinations[0].IsDefault = true
			},
			want: ErrMultipleDefaults,
		},
		{
			name: "duplicate attribute",
			mutate: func(p *models.Product) {
				p.VariantAttributes = append(p.VariantAttributes, models.VariantAttribute{ID: colorID, Name: "Colour"})
			},
			want: ErrDuplicateAttribute,
		},
		{
			name: "value shared by two attributes",
			mutate: func(p *models.Product) {
				p.VariantAttributes[1].Values = append(p.VariantAttributes[1].Values, models.VariantAttributeValue{ID: red})
			},
			want: ErrDuplicateAttributeValue,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := scenarioA()
			tc.mutate(p)
			err := ValidateProduct(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var ce *CatalogError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, p.ID, ce.ProductID)
		})
	}
}

func TestValidateProduct_CollectsEveryDefect(t *testing.T) {
	p := scenarioA()
	p.VariantCombinations[0].IsDefault = true
	p.VariantCombinations = append(p.VariantCombinations,
		combo(4, false, [2]int{colorID, red}),
		combo(5, false, [2]int{colorID, red}, [2]int{sizeID, small}),
	)

	errs := CatalogErrors(ValidateProduct(p))
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], ErrMultipleDefaults)
	assert.Equal(t, 2, errs[0].CombinationID)
	assert.ErrorIs(t, errs[1], ErrCombinationShape)
	assert.Equal(t, 4, errs[1].CombinationID)
	assert.ErrorIs(t, errs[2], ErrDuplicateCombination)
	assert.Equal(t, 5, errs[2].CombinationID)
	assert.Contains(t, errs[2].Error(), "product 100 combination 5")
}

func TestCatalogErrors_Nil(t *testing.T) {
	assert.Nil(t, CatalogErrors(nil))
}

func TestValidateSelection(t *testing.T) {
	p := scenarioA()
	assert.NoError(t, ValidateSelection(p, Selection{}))
	assert.NoError(t, ValidateSelection(p, NewSelection(map[int]int{colorID: blue, sizeID: medium})))
	assert.ErrorIs(t, ValidateSelection(p, NewSelection(map[int]int{99: 1})), ErrUnknownAttribute)
	assert.ErrorIs(t, ValidateSelection(p, NewSelection(map[int]int{colorID: small})), ErrUnknownAttributeValue)
}

package models

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StockStatus is an opaque availability flag carried by a combination.
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
	StockPreorder   StockStatus = "preorder"
)

// Valid reports whether s is one of the known stock statuses.
func (s StockStatus) Valid() bool {
	switch s {
	case StockInStock, StockLowStock, StockOutOfStock, StockPreorder:
		return true
	}
	return false
}

// VariantAttribute is one independent customization axis of a product (e.g. Color).
type VariantAttribute struct {
	ID        int    `db:"id" json:"id"`
	ProductID int    `db:"product_id" json:"-"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"-"`

	Values []VariantAttributeValue `db:"-" json:"values"`
}

// ValueByID returns the value with the given id, or nil.
func (a *VariantAttribute) ValueByID(id int) *VariantAttributeValue {
	for i := range a.Values {
		if a.Values[i].ID == id {
			return &a.Values[i]
		}
	}
	return nil
}

// VariantAttributeValue is one selectable option within an attribute.
// PriceModifier is advisory only and never replaces a resolved combination's price.
type VariantAttributeValue struct {
	ID            int              `db:"id" json:"id"`
	AttributeID   int              `db:"attribute_id" json:"-"`
	Value         string           `db:"value" json:"value"`
	DisplayName   string           `db:"display_name" json:"displayName"`
	ColorHex      *string          `db:"color_hex" json:"colorHex,omitempty"`
	PriceModifier *decimal.Decimal `db:"price_modifier" json:"priceModifier,omitempty"`
	SortOrder     int              `db:"sort_order" json:"-"`
}

// CombinationAttribute assigns one attribute value inside a combination.
type CombinationAttribute struct {
	CombinationID    int `db:"combination_id" json:"-"`
	AttributeID      int `db:"attribute_id" json:"attributeId"`
	AttributeValueID int `db:"attribute_value_id" json:"attributeValueId"`
}

// VariantCombination is a concrete purchasable SKU: exactly one value per
// attribute of the owning product.
type VariantCombination struct {
	ID          int             `db:"id" json:"id"`
	ProductID   int             `db:"product_id" json:"-"`
	SKU         string          `db:"sku" json:"sku"`
	Price       decimal.Decimal `db:"price" json:"price"`
	StockStatus StockStatus     `db:"stock_status" json:"stockStatus"`
	IsDefault   bool            `db:"is_default" json:"isDefault"`

	Attributes []CombinationAttribute `db:"-" json:"attributes"`
}

// AssignmentKey is the canonical form of the combination's attribute
// assignment, sorted by attribute id. Two combinations of a product with the
// same key describe the same variant.
func (c *VariantCombination) AssignmentKey() string {
	attrs := make([]CombinationAttribute, len(c.Attributes))
	copy(attrs, c.Attributes)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].AttributeID < attrs[j].AttributeID })

	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = strconv.Itoa(a.AttributeID) + "=" + strconv.Itoa(a.AttributeValueID)
	}
	return strings.Join(parts, ",")
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog aggregate the variant engine works on. Attributes and
// combinations are loaded separately and attached before the snapshot is
// handed to callers; the engine never mutates it.
type Product struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Slug      string          `db:"slug" json:"slug"`
	BasePrice decimal.Decimal `db:"base_price" json:"basePrice"`
	IsActive  bool            `db:"is_active" json:"isActive"`
	CreatedAt time.Time       `db:"created_at" json:"-"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`

	VariantAttributes   []VariantAttribute   `db:"-" json:"variantAttributes"`
	VariantCombinations []VariantCombination `db:"-" json:"variantCombinations"`
}

// Version identifies one state of the product snapshot. Writes bump updated_at,
// so the value changes whenever attributes or combinations change.
func (p *Product) Version() int64 {
	return p.UpdatedAt.UnixNano()
}

// AttributeByID returns the attribute with the given id, or nil.
func (p *Product) AttributeByID(id int) *VariantAttribute {
	for i := range p.VariantAttributes {
		if p.VariantAttributes[i].ID == id {
			return &p.VariantAttributes[i]
		}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CatalogRepository handles data access for products and their variant
// attributes, values and combinations.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetProduct returns a single product by id without its variants.
func (r *CatalogRepository) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT id, name, slug, base_price, is_active, created_at, updated_at FROM products WHERE id = $1 LIMIT 1`
	stmt, err := r.db.PreparexContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var p models.Product
	if err := stmt.GetContext(ctx, &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProductIDs returns the ids of all active products.
func (r *CatalogRepository) ListProductIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM products WHERE is_active = true ORDER BY id`); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListAttributes returns the attributes of a product in declared order, each
// with its values attached.
func (r *CatalogRepository) ListAttributes(ctx context.Context, productID int) ([]models.VariantAttribute, error) {
	const attrQ = `
        SELECT id, product_id, name, sort_order
        FROM variant_attributes
        WHERE product_id = $1
        ORDER BY sort_order, id`
	var attrs []models.VariantAttribute
	if err := r.db.SelectContext(ctx, &attrs, attrQ, productID); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return attrs, nil
	}

	const valueQ = `
        SELECT v.id, v.attribute_id, v.value, v.display_name, v.color_hex, v.price_modifier, v.sort_order
        FROM variant_attribute_values v
        JOIN variant_attributes a ON a.id = v.attribute_id
        WHERE a.product_id = $1
        ORDER BY v.attribute_id, v.sort_order, v.id`
	var values []models.VariantAttributeValue
	if err := r.db.SelectContext(ctx, &values, valueQ, productID); err != nil {
		return nil, err
	}

	idx := make(map[int]int, len(attrs))
	for i := range attrs {
		idx[attrs[i].ID] = i
	}
	for _, v := range values {
		if i, ok := idx[v.AttributeID]; ok {
			attrs[i].Values = append(attrs[i].Values, v)
		}
	}
	return attrs, nil
}

// GetAttribute returns a single attribute (without values) by id.
func (r *CatalogRepository) GetAttribute(ctx context.Context, id int) (*models.VariantAttribute, error) {
	var a models.VariantAttribute
	const q = `SELECT id, product_id, name, sort_order FROM variant_attributes WHERE id = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListCombinations returns the combinations of a product ordered by id, each
// with its attribute assignments attached.
func (r *CatalogRepository) ListCombinations(ctx context.Context, productID int) ([]models.VariantCombination, error) {
	const comboQ = `
        SELECT id, product_id, sku, price, stock_status, is_default
        FROM variant_combinations
        WHERE product_id = $1
        ORDER BY id`
	var combos []models.VariantCombination
	if err := r.db.SelectContext(ctx, &combos, comboQ, productID); err != nil {
		return nil, err
	}
	if len(combos) == 0 {
		return combos, nil
	}

	const assignQ = `
        SELECT ca.combination_id, ca.attribute_id, ca.attribute_value_id
        FROM variant_combination_attributes ca
        JOIN variant_combinations c ON c.id = ca.combination_id
        WHERE c.product_id = $1
        ORDER BY ca.combination_id, ca.attribute_id`
	var assigns []models.CombinationAttribute
	if err := r.db.SelectContext(ctx, &assigns, assignQ, productID); err != nil {
		return nil, err
	}

	idx := make(map[int]int, len(combos))
	for i := range combos {
		idx[combos[i].ID] = i
	}
	for _, a := range assigns {
		if i, ok := idx[a.CombinationID]; ok {
			combos[i].Attributes = append(combos[i].Attributes, a)
		}
	}
	return combos, nil
}

// SKUExists reports whether any combination already uses sku.
func (r *CatalogRepository) SKUExists(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM variant_combinations WHERE sku = $1)`, sku)
	return exists, err
}

// CreateAttribute inserts an attribute and bumps the product version.
func (r *CatalogRepository) CreateAttribute(ctx context.Context, a *models.VariantAttribute) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		const q = `INSERT INTO variant_attributes (product_id, name, sort_order)
              VALUES ($1, $2, $3)
              RETURNING id`
		if err := tx.QueryRowxContext(ctx, q, a.ProductID, a.Name, a.SortOrder).Scan(&a.ID); err != nil {
			return err
		}
		return touchProduct(ctx, tx, a.ProductID)
	})
}

// CreateAttributeValue inserts a value for an existing attribute and bumps the
// owning product's version.
func (r *CatalogRepository) CreateAttributeValue(ctx context.Context, productID int, v *models.VariantAttributeValue) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		const q = `INSERT INTO variant_attribute_values (attribute_id, value, display_name, color_hex, price_modifier, sort_order)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id`
		if err := tx.QueryRowxContext(ctx, q,
			v.AttributeID, v.Value, v.DisplayName, v.ColorHex, v.PriceModifier, v.SortOrder,
		).Scan(&v.ID); err != nil {
			return err
		}
		return touchProduct(ctx, tx, productID)
	})
}

// CreateCombination inserts a combination with its assignments. The product
// row is locked for the duration of the transaction so concurrent inserts for
// the same product serialize, and the assignment is re-checked under that
// lock. A new default clears the previous one in the same transaction.
func (r *CatalogRepository) CreateCombination(ctx context.Context, c *models.VariantCombination) error {
	key := c.AssignmentKey()
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var locked int
		if err := tx.QueryRowxContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, c.ProductID).Scan(&locked); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.ErrProductNotFound
			}
			return err
		}

		var existing int
		err := tx.QueryRowxContext(ctx,
			`SELECT id FROM variant_combinations WHERE product_id = $1 AND assignment_key = $2 LIMIT 1`,
			c.ProductID, key,
		).Scan(&existing)
		switch {
		case err == nil:
			return fmt.Errorf("%w: same assignment as combination %d", utils.ErrDuplicateCombination, existing)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		if c.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE variant_combinations SET is_default = false, updated_at = NOW() WHERE product_id = $1 AND is_default`,
				c.ProductID,
			); err != nil {
				return err
			}
		}

		const q = `INSERT INTO variant_combinations (product_id, sku, price, stock_status, is_default, assignment_key)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id`
		if err := tx.QueryRowxContext(ctx, q,
			c.ProductID, c.SKU, c.Price, c.StockStatus, c.IsDefault, key,
		).Scan(&c.ID); err != nil {
			return uniqueViolation(err)
		}

		for i := range c.Attributes {
			c.Attributes[i].CombinationID = c.ID
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO variant_combination_attributes (combination_id, attribute_id, attribute_value_id) VALUES ($1, $2, $3)`,
				c.ID, c.Attributes[i].AttributeID, c.Attributes[i].AttributeValueID,
			); err != nil {
				return err
			}
		}
		return touchProduct(ctx, tx, c.ProductID)
	})
}

// uniqueViolation maps the combination table's unique constraints onto
// catalog errors. Other errors are returned unchanged.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return err
	}
	switch pqErr.Constraint {
	case "uq_variant_combinations_assignment":
		return fmt.Errorf("%w: %s", utils.ErrDuplicateCombination, pqErr.Detail)
	case "variant_combinations_sku_key":
		return utils.ErrDuplicateSKU
	}
	return err
}

// SetDefaultCombination makes combinationID the only default of the product.
// It returns sql.ErrNoRows when the combination does not belong to the product.
func (r *CatalogRepository) SetDefaultCombination(ctx context.Context, productID, combinationID int) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE variant_combinations SET is_default = false, updated_at = NOW() WHERE product_id = $1 AND is_default AND id <> $2`,
			productID, combinationID,
		); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE variant_combinations SET is_default = true, updated_at = NOW() WHERE id = $1 AND product_id = $2`,
			combinationID, productID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return touchProduct(ctx, tx, productID)
	})
}

// touchProduct bumps updated_at, which versions the product snapshot.
func touchProduct(ctx context.Context, tx *sqlx.Tx, productID int) error {
	_, err := tx.ExecContext(ctx, `UPDATE products SET updated_at = NOW() WHERE id = $1`, productID)
	return err
}

func (r *CatalogRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

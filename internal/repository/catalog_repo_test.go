package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

func newMockRepo(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCatalogRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCatalogRepository_GetProduct(t *testing.T) {
	repo, mock := newMockRepo(t)
	updated := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(regexp.QuoteMeta("FROM products WHERE id = $1")).
		ExpectQuery().
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "base_price", "is_active", "created_at", "updated_at"}).
			AddRow(7, "Tee", "tee", "19.90", true, updated, updated))

	p, err := repo.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Tee", p.Name)
	assert.True(t, p.BasePrice.Equal(decimal.RequireFromString("19.9")))
	assert.Equal(t, updated.UnixNano(), p.Version())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_GetProductNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectPrepare(regexp.QuoteMeta("FROM products WHERE id = $1")).
		ExpectQuery().
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetProduct(context.Background(), 8)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCatalogRepository_ListAttributesGroupsValues(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM variant_attributes")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "name", "sort_order"}).
			AddRow(1, 7, "Color", 0).
			AddRow(2, 7, "Size", 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM variant_attribute_values v")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attribute_id", "value", "display_name", "color_hex", "price_modifier", "sort_order"}).
			AddRow(11, 1, "red", "Red", "#ff0000", nil, 0).
			AddRow(21, 2, "s", "S", nil, nil, 0).
			AddRow(22, 2, "m", "M", nil, "1.25", 1))

	attrs, err := repo.ListAttributes(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	require.Len(t, attrs[0].Values, 1)
	require.NotNil(t, attrs[0].Values[0].ColorHex)
	assert.Equal(t, "#ff0000", *attrs[0].Values[0].ColorHex)
	require.Len(t, attrs[1].Values, 2)
	assert.Nil(t, attrs[1].Values[0].PriceModifier)
	require.NotNil(t, attrs[1].Values[1].PriceModifier)
	assert.Equal(t, "1.25", attrs[1].Values[1].PriceModifier.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListCombinationsGroupsAssignments(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM variant_combinations")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "sku", "price", "stock_status", "is_default"}).
			AddRow(100, 7, "TEE-R-S", "19.90", "in_stock", true).
			AddRow(101, 7, "TEE-R-M", "21.15", "low_stock", false))
	mock.ExpectQuery(regexp.QuoteMeta("FROM variant_combination_attributes ca")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"combination_id", "attribute_id", "attribute_value_id"}).
			AddRow(100, 1, 11).
			AddRow(100, 2, 21).
			AddRow(101, 1, 11).
			AddRow(101, 2, 22))

	combos, err := repo.ListCombinations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, combos, 2)
	assert.Equal(t, models.StockLowStock, combos[1].StockStatus)
	assert.True(t, combos[0].IsDefault)
	assert.Equal(t, []models.CombinationAttribute{
		{CombinationID: 101, AttributeID: 1, AttributeValueID: 11},
		{CombinationID: 101, AttributeID: 2, AttributeValueID: 22},
	}, combos[1].Attributes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_CreateCombination(t *testing.T) {
	repo, mock := newMockRepo(t)
	c := &models.VariantCombination{
		ProductID:   7,
		SKU:         "TEE-B-S",
		Price:       decimal.RequireFromString("22.00"),
		StockStatus: models.StockInStock,
		IsDefault:   true,
		Attributes: []models.CombinationAttribute{
			{AttributeID: 1, AttributeValueID: 12},
			{AttributeID: 2, AttributeValueID: 21},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE product_id = $1 AND assignment_key = $2")).
		WithArgs(7, "1=12,2=21").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE variant_combinations SET is_default = false")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO variant_combinations")).
		WithArgs(7, "TEE-B-S", c.Price, models.StockInStock, true, "1=12,2=21").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO variant_combination_attributes")).
		WithArgs(102, 1, 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO variant_combination_attributes")).
		WithArgs(102, 2, 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET updated_at")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateCombination(context.Background(), c))
	assert.Equal(t, 102, c.ID)
	assert.Equal(t, 102, c.Attributes[1].CombinationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_CreateCombinationDuplicateUnderLock(t *testing.T) {
	repo, mock := newMockRepo(t)
	c := &models.VariantCombination{
		ProductID:   7,
		SKU:         "TEE-R-S-2",
		Price:       decimal.RequireFromString("20.00"),
		StockStatus: models.StockInStock,
		Attributes: []models.CombinationAttribute{
			{AttributeID: 2, AttributeValueID: 21},
			{AttributeID: 1, AttributeValueID: 11},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("AND assignment_key = $2")).
		WithArgs(7, "1=11,2=21").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectRollback()

	err := repo.CreateCombination(context.Background(), c)
	assert.ErrorIs(t, err, utils.ErrDuplicateCombination)
	assert.Contains(t, err.Error(), "combination 100")
	assert.Zero(t, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_CreateCombinationUniqueViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"assignment", "uq_variant_combinations_assignment", utils.ErrDuplicateCombination},
		{"sku", "variant_combinations_sku_key", utils.ErrDuplicateSKU},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			c := &models.VariantCombination{ProductID: 8, SKU: "GIFT-50", Price: decimal.RequireFromString("50")}

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
				WithArgs(8).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
			mock.ExpectQuery(regexp.QuoteMeta("AND assignment_key = $2")).
				WithArgs(8, "").
				WillReturnRows(sqlmock.NewRows([]string{"id"}))
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO variant_combinations")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tc.constraint})
			mock.ExpectRollback()

			err := repo.CreateCombination(context.Background(), c)
			assert.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCatalogRepository_CreateCombinationUnknownProduct(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.CreateCombination(context.Background(), &models.VariantCombination{ProductID: 404, SKU: "X"})
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_SetDefaultCombinationUnknown(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET is_default = false")).
		WithArgs(7, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SET is_default = true")).
		WithArgs(999, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetDefaultCombination(context.Background(), 7, 999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

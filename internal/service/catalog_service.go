package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// CatalogStore is the persistence the catalog service needs.
// *repository.CatalogRepository implements it.
type CatalogStore interface {
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	ListProductIDs(ctx context.Context) ([]int, error)
	ListAttributes(ctx context.Context, productID int) ([]models.VariantAttribute, error)
	ListCombinations(ctx context.Context, productID int) ([]models.VariantCombination, error)
	GetAttribute(ctx context.Context, id int) (*models.VariantAttribute, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	CreateAttribute(ctx context.Context, a *models.VariantAttribute) error
	CreateAttributeValue(ctx context.Context, productID int, v *models.VariantAttributeValue) error
	CreateCombination(ctx context.Context, c *models.VariantCombination) error
	SetDefaultCombination(ctx context.Context, productID, combinationID int) error
}

// SnapshotStore caches validated product snapshots. *cache.SnapshotCache implements it.
type SnapshotStore interface {
	Get(ctx context.Context, productID int) (*models.Product, error)
	Set(ctx context.Context, p *models.Product) error
	Invalidate(ctx context.Context, productID int) error
}

// CatalogService loads product snapshots for the variant engine and applies
// admin edits without breaking the catalog invariants.
type CatalogService struct {
	store    CatalogStore
	cache    SnapshotStore
	notifier sse.IntegrityNotifier
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(store CatalogStore, cache SnapshotStore, notifier sse.IntegrityNotifier) *CatalogService {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &CatalogService{store: store, cache: cache, notifier: notifier}
}

// GetSnapshot returns the validated snapshot of a product. Inconsistent
// catalogs are reported and returned as ErrCatalogInconsistent; they are never
// cached.
func (s *CatalogService) GetSnapshot(ctx context.Context, productID int) (*models.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, productID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Int("product_id", productID).Msg("Snapshot cache read failed")
		}
	}

	p, err := s.loadSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}

	if verr := variant.ValidateProduct(p); verr != nil {
		log.Warn().
			Int("product_id", productID).
			Int("defects", len(variant.CatalogErrors(verr))).
			Err(verr).
			Msg("Product catalog is inconsistent")
		s.notifier.NotifyCatalogInvalid(productID, verr)
		return nil, fmt.Errorf("%w: %w", utils.ErrCatalogInconsistent, verr)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Int("product_id", productID).Msg("Snapshot cache write failed")
		}
	}
	return p, nil
}

// loadSnapshot reads a product with attributes and combinations straight from
// the store. Attributes and combinations load concurrently.
func (s *CatalogService) loadSnapshot(ctx context.Context, productID int) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		attrs, err := s.store.ListAttributes(gctx, productID)
		if err != nil {
			return fmt.Errorf("list attributes: %w", err)
		}
		p.VariantAttributes = attrs
		return nil
	})
	g.Go(func() error {
		combos, err := s.store.ListCombinations(gctx, productID)
		if err != nil {
			return fmt.Errorf("list combinations: %w", err)
		}
		p.VariantCombinations = combos
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot %d: %w", productID, err)
	}
	return p, nil
}

// AuditReport summarises the catalog health of one product.
type AuditReport struct {
	ProductID      int      `json:"productId"`
	Valid          bool     `json:"valid"`
	Purchasable    bool     `json:"purchasable"`
	Attributes     int      `json:"attributes"`
	Combinations   int      `json:"combinations"`
	AttributeSpace int      `json:"attributeSpace"`
	Defects        []string `json:"defects,omitempty"`

	// Err holds the validation failure behind Defects, nil when healthy.
	Err error `json:"-"`
}

// Healthy reports whether the product can be sold as authored.
func (r *AuditReport) Healthy() bool { return r.Valid && r.Purchasable }

// AuditProduct validates a product straight from the store, bypassing the cache.
func (s *CatalogService) AuditProduct(ctx context.Context, productID int) (*AuditReport, error) {
	p, err := s.loadSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	return BuildAuditReport(p), nil
}

// BuildAuditReport validates p and measures it against its attribute space.
func BuildAuditReport(p *models.Product) *AuditReport {
	report := &AuditReport{
		ProductID:      p.ID,
		Valid:          true,
		Purchasable:    len(p.VariantCombinations) > 0,
		Attributes:     len(p.VariantAttributes),
		Combinations:   len(p.VariantCombinations),
		AttributeSpace: 1,
	}
	for _, a := range p.VariantAttributes {
		report.AttributeSpace *= len(a.Values)
	}
	if err := variant.ValidateProduct(p); err != nil {
		report.Valid = false
		report.Err = err
		for _, ce := range variant.CatalogErrors(err) {
			report.Defects = append(report.Defects, ce.Error())
		}
	}
	if !report.Purchasable {
		report.Defects = append(report.Defects, variant.ErrNoPurchasableState.Error())
		report.Err = errors.Join(report.Err, variant.ErrNoPurchasableState)
	}
	return report
}

// ListProductIDs returns every active product id.
func (s *CatalogService) ListProductIDs(ctx context.Context) ([]int, error) {
	return s.store.ListProductIDs(ctx)
}

// CreateAttributeRequest represents the request to add an attribute to a product.
type CreateAttributeRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// CreateAttribute adds a customization axis to a product. It is refused once
// combinations exist, since every existing combination would lose its
// one-value-per-attribute shape.
func (s *CatalogService) CreateAttribute(ctx context.Context, productID int, req *CreateAttributeRequest) (*models.VariantAttribute, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrInvalidAttribute)
	}
	p, err := s.loadSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(p.VariantCombinations) > 0 {
		return nil, utils.ErrAttributeLocked
	}
	for _, a := range p.VariantAttributes {
		if strings.EqualFold(a.Name, name) {
			return nil, fmt.Errorf("%w: attribute %q already exists", utils.ErrInvalidAttribute, name)
		}
	}

	attr := &models.VariantAttribute{ProductID: productID, Name: name, SortOrder: req.SortOrder}
	if err := s.store.CreateAttribute(ctx, attr); err != nil {
		return nil, fmt.Errorf("create attribute: %w", err)
	}
	s.invalidate(ctx, productID)
	log.Info().Int("product_id", productID).Int("attribute_id", attr.ID).Str("name", name).Msg("Variant attribute created")
	return attr, nil
}

// AddAttributeValueRequest represents the request to add an option to an attribute.
type AddAttributeValueRequest struct {
	Value         string           `json:"value" binding:"required"`
	DisplayName   string           `json:"displayName"`
	ColorHex      *string          `json:"colorHex" binding:"omitempty,hexcolor,len=7"`
	PriceModifier *decimal.Decimal `json:"priceModifier"`
	SortOrder     int              `json:"sortOrder"`
}

// AddAttributeValue adds a selectable option to an attribute.
func (s *CatalogService) AddAttributeValue(ctx context.Context, attributeID int, req *AddAttributeValueRequest) (*models.VariantAttributeValue, error) {
	value := strings.TrimSpace(req.Value)
	if value == "" {
		return nil, fmt.Errorf("%w: value is required", utils.ErrInvalidAttribute)
	}

	attr, err := s.store.GetAttribute(ctx, attributeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("get attribute %d: %w", attributeID, err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = value
	}
	v := &models.VariantAttributeValue{
		AttributeID:   attributeID,
		Value:         value,
		DisplayName:   displayName,
		ColorHex:      req.ColorHex,
		PriceModifier: req.PriceModifier,
		SortOrder:     req.SortOrder,
	}
	if err := s.store.CreateAttributeValue(ctx, attr.ProductID, v); err != nil {
		return nil, fmt.Errorf("create attribute value: %w", err)
	}
	s.invalidate(ctx, attr.ProductID)
	log.Info().Int("product_id", attr.ProductID).Int("attribute_id", attributeID).Int("value_id", v.ID).Msg("Variant attribute value created")
	return v, nil
}

// CreateCombinationRequest represents the request to add a purchasable SKU.
type CreateCombinationRequest struct {
	SKU         string             `json:"sku" binding:"required"`
	Price       decimal.Decimal    `json:"price"`
	StockStatus models.StockStatus `json:"stockStatus"`
	IsDefault   bool               `json:"isDefault"`
	Selection   variant.Selection  `json:"selection"`
}

// CreateCombination adds a combination after checking it against the current
// catalog: exactly one declared value per attribute, no duplicate assignment,
// unique SKU.
func (s *CatalogService) CreateCombination(ctx context.Context, productID int, req *CreateCombinationRequest) (*models.VariantCombination, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", utils.ErrInvalidCombination)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", utils.ErrInvalidCombination)
	}
	status := req.StockStatus
	if status == "" {
		status = models.StockInStock
	}
	if !status.Valid() {
		return nil, utils.ErrInvalidStockStatus
	}

	p, err := s.loadSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := variant.ValidateSelection(p, req.Selection); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidCombination, err)
	}
	if !variant.IsSelectionComplete(p, req.Selection) {
		return nil, fmt.Errorf("%w: exactly one value per attribute is required", utils.ErrInvalidCombination)
	}
	if r := variant.Resolve(p, req.Selection); r.Resolved() {
		return nil, fmt.Errorf("%w: same assignment as combination %d", utils.ErrDuplicateCombination, r.Combination.ID)
	}

	exists, err := s.store.SKUExists(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("check sku: %w", err)
	}
	if exists {
		return nil, utils.ErrDuplicateSKU
	}

	c := &models.VariantCombination{
		ProductID:   productID,
		SKU:         sku,
		Price:       req.Price,
		StockStatus: status,
		IsDefault:   req.IsDefault,
	}
	for _, attrID := range variant.RequiredAttributeIDs(p) {
		valueID, _ := req.Selection.Get(attrID)
		c.Attributes = append(c.Attributes, models.CombinationAttribute{AttributeID: attrID, AttributeValueID: valueID})
	}
	if err := s.store.CreateCombination(ctx, c); err != nil {
		// The store re-checks under a product lock; a concurrent insert of the
		// same assignment or SKU surfaces here.
		if errors.Is(err, utils.ErrDuplicateCombination) || errors.Is(err, utils.ErrDuplicateSKU) || errors.Is(err, utils.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create combination: %w", err)
	}
	s.invalidate(ctx, productID)
	log.Info().Int("product_id", productID).Int("combination_id", c.ID).Str("sku", sku).Msg("Variant combination created")
	return c, nil
}

// SetDefaultCombination makes one combination the product default.
func (s *CatalogService) SetDefaultCombination(ctx context.Context, productID, combinationID int) error {
	if err := s.store.SetDefaultCombination(ctx, productID, combinationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrCombinationNotFound
		}
		return fmt.Errorf("set default combination: %w", err)
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, productID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("Snapshot cache invalidation failed")
	}
}

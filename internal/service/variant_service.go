package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// SnapshotProvider supplies validated product snapshots. *CatalogService implements it.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, productID int) (*models.Product, error)
}

// VariantService answers storefront and admin variant pickers: resolution,
// purchase gating, price estimates and option availability.
type VariantService struct {
	catalog  SnapshotProvider
	memo     *expirable.LRU[string, variant.Resolution]
	notifier sse.IntegrityNotifier
}

// NewVariantService constructs a VariantService. Resolutions are memoised per
// (product, snapshot version, selection) for memoTTL.
func NewVariantService(catalog SnapshotProvider, memoSize int, memoTTL time.Duration, notifier sse.IntegrityNotifier) *VariantService {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &VariantService{
		catalog:  catalog,
		memo:     expirable.NewLRU[string, variant.Resolution](memoSize, nil, memoTTL),
		notifier: notifier,
	}
}

// ResolveResult is the outward-facing payload of a resolution.
type ResolveResult struct {
	ProductID           int                        `json:"productId"`
	Status              variant.Status             `json:"status"`
	MissingAttributeIDs []int                      `json:"missingAttributeIds,omitempty"`
	Combination         *models.VariantCombination `json:"combination,omitempty"`
	Label               string                     `json:"label,omitempty"`
	Defect              string                     `json:"defect,omitempty"`
	CanPurchase         bool                       `json:"canPurchase"`
}

// EstimateResult is the outward-facing payload of a price estimate.
// Authoritative is true when the price comes from a resolved combination.
type EstimateResult struct {
	ProductID      int             `json:"productId"`
	PriceDelta     decimal.Decimal `json:"priceDelta"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
	Authoritative  bool            `json:"authoritative"`
	CombinationID  *int            `json:"combinationId,omitempty"`
}

// AttributeOptions lists which values of one attribute remain reachable.
type AttributeOptions struct {
	AttributeID       int    `json:"attributeId"`
	Name              string `json:"name"`
	SelectedValueID   *int   `json:"selectedValueId,omitempty"`
	AvailableValueIDs []int  `json:"availableValueIds"`
}

// SnapshotResult is the picker bootstrap payload.
type SnapshotResult struct {
	Product          *models.Product   `json:"product"`
	DefaultSelection variant.Selection `json:"defaultSelection"`
}

// Snapshot returns the product with its default preselection.
func (s *VariantService) Snapshot(ctx context.Context, productID int) (*SnapshotResult, error) {
	p, err := s.activeSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &SnapshotResult{Product: p, DefaultSelection: variant.DefaultSelection(p)}, nil
}

// Resolve resolves sel for a product and applies the purchase gate for quantity.
func (s *VariantService) Resolve(ctx context.Context, productID int, sel variant.Selection, quantity int) (*ResolveResult, error) {
	p, err := s.activeSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := variant.ValidateSelection(p, sel); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidSelection, err)
	}

	res := s.resolve(p, sel)
	out := &ResolveResult{
		ProductID:           productID,
		Status:              res.Status,
		MissingAttributeIDs: res.Missing,
		Combination:         res.Combination,
		CanPurchase:         variant.IsSelectionValid(p, sel, quantity),
	}
	if res.Combination != nil {
		out.Label = variant.DescribeCombination(p, res.Combination)
	}
	if res.Defect != nil {
		out.Defect = res.Defect.Error()
	}
	return out, nil
}

// Estimate returns the advisory price for a partial selection, or the
// combination price once the selection resolves.
func (s *VariantService) Estimate(ctx context.Context, productID int, sel variant.Selection) (*EstimateResult, error) {
	p, err := s.activeSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := variant.ValidateSelection(p, sel); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidSelection, err)
	}

	delta := variant.EstimatedPriceDelta(p, sel)
	out := &EstimateResult{
		ProductID:      productID,
		PriceDelta:     delta,
		EstimatedPrice: p.BasePrice.Add(delta),
	}
	if res := s.resolve(p, sel); res.Resolved() {
		id := res.Combination.ID
		out.EstimatedPrice = res.Combination.Price
		out.Authoritative = true
		out.CombinationID = &id
	}
	return out, nil
}

// Options reports, per attribute, the values still reachable given the other picks.
func (s *VariantService) Options(ctx context.Context, productID int, sel variant.Selection) ([]AttributeOptions, error) {
	p, err := s.activeSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := variant.ValidateSelection(p, sel); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidSelection, err)
	}

	out := make([]AttributeOptions, 0, len(p.VariantAttributes))
	for _, a := range p.VariantAttributes {
		opt := AttributeOptions{
			AttributeID:       a.ID,
			Name:              a.Name,
			AvailableValueIDs: variant.AvailableValueIDs(p, sel, a.ID),
		}
		if v, ok := sel.Get(a.ID); ok {
			opt.SelectedValueID = &v
		}
		out = append(out, opt)
	}
	return out, nil
}

func (s *VariantService) activeSnapshot(ctx context.Context, productID int) (*models.Product, error) {
	p, err := s.catalog.GetSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, utils.ErrProductNotFound
	}
	return p, nil
}

// resolve runs the engine through the memo. Defects are reported when first
// computed for a snapshot version.
func (s *VariantService) resolve(p *models.Product, sel variant.Selection) variant.Resolution {
	key := fmt.Sprintf("%d:%d:%s", p.ID, p.Version(), sel.Key())
	if res, ok := s.memo.Get(key); ok {
		return res
	}

	res := variant.Resolve(p, sel)
	s.memo.Add(key, res)

	if res.Reportable() {
		log.Warn().
			Int("product_id", p.ID).
			Str("selection", sel.Key()).
			Str("defect", res.Defect.Error()).
			Msg("Variant resolution hit a catalog defect")
		s.notifier.NotifyResolutionDefect(p.ID, sel, res.Defect)
	}
	return res
}

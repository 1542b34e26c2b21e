package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// memStore is an in-memory CatalogStore.
type memStore struct {
	mu       sync.Mutex
	products map[int]*models.Product
	nextID   int
	loads    int
	failList error
}

func newMemStore(products ...*models.Product) *memStore {
	s := &memStore{products: make(map[int]*models.Product), nextID: 1000}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) touch(p *models.Product) {
	p.UpdatedAt = p.UpdatedAt.Add(time.Second)
}

func (s *memStore) GetProduct(_ context.Context, id int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	p, ok := s.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	cp.VariantAttributes = nil
	cp.VariantCombinations = nil
	return &cp, nil
}

func (s *memStore) ListProductIDs(_ context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for id := 1; id <= 10000; id++ {
		if p, ok := s.products[id]; ok && p.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memStore) ListAttributes(_ context.Context, productID int) ([]models.VariantAttribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []models.VariantAttribute
	for _, a := range s.products[productID].VariantAttributes {
		a.Values = append([]models.VariantAttributeValue(nil), a.Values...)
		out = append(out, a)
	}
	return out, nil
}

func (s *memStore) ListCombinations(_ context.Context, productID int) ([]models.VariantCombination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VariantCombination
	for _, c := range s.products[productID].VariantCombinations {
		c.Attributes = append([]models.CombinationAttribute(nil), c.Attributes...)
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) GetAttribute(_ context.Context, id int) (*models.VariantAttribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if a := p.AttributeByID(id); a != nil {
			cp := *a
			cp.ProductID = p.ID
			cp.Values = nil
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) SKUExists(_ context.Context, sku string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		for _, c := range p.VariantCombinations {
			if c.SKU == sku {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *memStore) CreateAttribute(_ context.Context, a *models.VariantAttribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[a.ProductID]
	a.ID = s.id()
	p.VariantAttributes = append(p.VariantAttributes, *a)
	s.touch(p)
	return nil
}

func (s *memStore) CreateAttributeValue(_ context.Context, productID int, v *models.VariantAttributeValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	v.ID = s.id()
	a := p.AttributeByID(v.AttributeID)
	a.Values = append(a.Values, *v)
	s.touch(p)
	return nil
}

func (s *memStore) CreateCombination(_ context.Context, c *models.VariantCombination) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[c.ProductID]
	for _, existing := range p.VariantCombinations {
		if existing.AssignmentKey() == c.AssignmentKey() {
			return fmt.Errorf("%w: same assignment as combination %d", utils.ErrDuplicateCombination, existing.ID)
		}
	}
	c.ID = s.id()
	if c.IsDefault {
		for i := range p.VariantCombinations {
			p.VariantCombinations[i].IsDefault = false
		}
	}
	for i := range c.Attributes {
		c.Attributes[i].CombinationID = c.ID
	}
	p.VariantCombinations = append(p.VariantCombinations, *c)
	s.touch(p)
	return nil
}

func (s *memStore) SetDefaultCombination(_ context.Context, productID, combinationID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return sql.ErrNoRows
	}
	found := false
	for i := range p.VariantCombinations {
		if p.VariantCombinations[i].ID == combinationID {
			found = true
		}
	}
	if !found {
		return sql.ErrNoRows
	}
	for i := range p.VariantCombinations {
		p.VariantCombinations[i].IsDefault = p.VariantCombinations[i].ID == combinationID
	}
	s.touch(p)
	return nil
}

// memCache is an in-memory SnapshotStore.
type memCache struct {
	mu          sync.Mutex
	items       map[int]*models.Product
	invalidated []int
}

func newMemCache() *memCache { return &memCache{items: make(map[int]*models.Product)} }

func (c *memCache) Get(_ context.Context, productID int) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[productID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (c *memCache) Set(_ context.Context, p *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = p
	return nil
}

func (c *memCache) Invalidate(_ context.Context, productID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, productID)
	c.invalidated = append(c.invalidated, productID)
	return nil
}

// recordingNotifier captures integrity notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	defects  []error
	invalids []int
}

func (n *recordingNotifier) NotifyResolutionDefect(_ int, _ variant.Selection, defect error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.defects = append(n.defects, defect)
}

func (n *recordingNotifier) NotifyCatalogInvalid(productID int, _ error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalids = append(n.invalids, productID)
}

const (
	colorID = 1
	sizeID  = 2
	red     = 11
	blue    = 12
	small   = 21
	medium  = 22
)

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptrMoney(v string) *decimal.Decimal {
	d := money(v)
	return &d
}

func assignment(combinationID int, pairs ...[2]int) []models.CombinationAttribute {
	var out []models.CombinationAttribute
	for _, p := range pairs {
		out = append(out, models.CombinationAttribute{CombinationID: combinationID, AttributeID: p[0], AttributeValueID: p[1]})
	}
	return out
}

// tee: Color={Red, Blue(+2.50)}, Size={S, M(+1.25)}; K1{Red,S}, K2{Red,M} default, K3{Blue,S}.
func tee() *models.Product {
	return &models.Product{
		ID:        7,
		Name:      "Tee",
		Slug:      "tee",
		BasePrice: money("20.00"),
		IsActive:  true,
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		VariantAttributes: []models.VariantAttribute{
			{ID: colorID, ProductID: 7, Name: "Color", Values: []models.VariantAttributeValue{
				{ID: red, AttributeID: colorID, Value: "red", DisplayName: "Red"},
				{ID: blue, AttributeID: colorID, Value: "blue", DisplayName: "Blue", PriceModifier: ptrMoney("2.50")},
			}},
			{ID: sizeID, ProductID: 7, Name: "Size", Values: []models.VariantAttributeValue{
				{ID: small, AttributeID: sizeID, Value: "s", DisplayName: "S"},
				{ID: medium, AttributeID: sizeID, Value: "m", DisplayName: "M", PriceModifier: ptrMoney("1.25")},
			}},
		},
		VariantCombinations: []models.VariantCombination{
			{ID: 1, ProductID: 7, SKU: "TEE-R-S", Price: money("20.00"), StockStatus: models.StockInStock,
				Attributes: assignment(1, [2]int{colorID, red}, [2]int{sizeID, small})},
			{ID: 2, ProductID: 7, SKU: "TEE-R-M", Price: money("21.00"), StockStatus: models.StockLowStock, IsDefault: true,
				Attributes: assignment(2, [2]int{colorID, red}, [2]int{sizeID, medium})},
			{ID: 3, ProductID: 7, SKU: "TEE-B-S", Price: money("22.00"), StockStatus: models.StockInStock,
				Attributes: assignment(3, [2]int{colorID, blue}, [2]int{sizeID, small})},
		},
	}
}

// giftCard has no attributes and a single default combination.
func giftCard() *models.Product {
	return &models.Product{
		ID:        8,
		Name:      "Gift card",
		Slug:      "gift-card",
		BasePrice: money("50.00"),
		IsActive:  true,
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		VariantCombinations: []models.VariantCombination{
			{ID: 9, ProductID: 8, SKU: "GIFT-50", Price: money("50.00"), StockStatus: models.StockInStock, IsDefault: true},
		},
	}
}

package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Catalog holds every loaded shop indexed by shop ID and by item name.
//
// A Catalog is immutable once built and is safe for concurrent use by any
// number of readers without further synchronization.
type Catalog struct {
	shops []*Shop
	byID  map[string]*Shop
	items *itemIndex
}

// Empty returns a catalog with no shops. Every query on it reports no matches.
func Empty() *Catalog {
	c := &Catalog{
		byID:  make(map[string]*Shop),
		items: newItemIndex(),
	}
	c.items.seal()
	return c
}

// Build indexes records in source order.
//
// Precondition: records may be empty.
// Postcondition: Returns a sealed Catalog, or an error wrapping ErrDataFormat
// when a record is invalid or a shop ID repeats.
func Build(records []Record) (*Catalog, error) {
	c := &Catalog{
		shops: make([]*Shop, 0, len(records)),
		byID:  make(map[string]*Shop, len(records)),
		items: newItemIndex(),
	}
	var errs []error
	for idx, rec := range records {
		if err := rec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", idx, err))
			continue
		}
		if _, exists := c.byID[rec.ID]; exists {
			errs = append(errs, fmt.Errorf("record %d: duplicate shop ID %q", idx, rec.ID))
			continue
		}
		s := rec.toShop()
		c.shops = append(c.shops, s)
		c.byID[s.ID] = s
		for _, it := range s.Items {
			c.items.add(it.Name, s)
		}
	}
	if len(errs) > 0 {
		return nil, Malformed(errors.Join(errs...))
	}
	c.items.seal()
	return c, nil
}

// Load reads records from src and builds a Catalog from them.
//
// Load never leaves the caller without a catalog: on failure it returns an
// empty catalog together with a *LoadError whose Kind is ErrDataUnavailable
// or ErrDataFormat. The failure is logged here, once.
//
// Precondition: src and logger must be non-nil.
// Postcondition: The returned *Catalog is never nil.
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Catalog, error) {
	start := time.Now()

	records, err := src.Records(ctx)
	if err == nil {
		var c *Catalog
		c, err = Build(records)
		if err == nil {
			logger.Info("shop catalog loaded",
				zap.String("source", src.Name()),
				zap.Int("shops", c.ShopCount()),
				zap.Int("items", c.ItemCount()),
				zap.Duration("elapsed", time.Since(start)),
			)
			return c, nil
		}
	}

	loadErr := &LoadError{Source: src.Name(), Kind: classify(err), Err: err}
	logger.Error("shop catalog unavailable; continuing with an empty catalog",
		zap.String("source", src.Name()),
		zap.Bool("malformed", errors.Is(loadErr.Kind, ErrDataFormat)),
		zap.Error(err),
	)
	return Empty(), loadErr
}

// ShopByID returns the shop with the given id.
//
// Postcondition: Returns (shop, true) if found, or (nil, false) for unknown or empty ids.
func (c *Catalog) ShopByID(id string) (*Shop, bool) {
	if id == "" {
		return nil, false
	}
	s, ok := c.byID[id]
	return s, ok
}

// AllShops returns every shop in source order. The slice is freshly allocated
// on each call and may be modified by the caller.
func (c *Catalog) AllShops() []*Shop {
	out := make([]*Shop, len(c.shops))
	copy(out, c.shops)
	return out
}

// ShopsForItem returns the shops selling an item, matched case-insensitively,
// in source order.
//
// Postcondition: never returns nil; empty when name is blank or unknown.
func (c *Catalog) ShopsForItem(name string) []*Shop {
	return c.items.lookup(name)
}

// SearchItems returns the distinct lowercased item names containing query,
// sorted ascending. Blank queries match nothing.
//
// Postcondition: never returns nil.
func (c *Catalog) SearchItems(query string) []string {
	return c.items.search(query)
}

// AllItemNames returns every distinct lowercased item name, sorted ascending.
func (c *Catalog) AllItemNames() []string {
	return c.items.all()
}

// ShopCount returns the number of loaded shops.
func (c *Catalog) ShopCount() int {
	return len(c.shops)
}

// ItemCount returns the number of distinct item names.
func (c *Catalog) ItemCount() int {
	return c.items.len()
}

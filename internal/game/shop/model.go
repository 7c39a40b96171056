// Package shop provides the shop catalog: shop and item records loaded from a
// data source and indexed for lookup by shop id and by item name.
package shop

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// UnlimitedStock is the Stock value of an item that never runs out.
const UnlimitedStock = -1

// ShopItem is one item listed by a shop.
type ShopItem struct {
	ItemID int    `json:"itemId" yaml:"itemId"`
	Name   string `json:"name" yaml:"name"`
	Stock  int    `json:"stock" yaml:"stock"`
	Price  int    `json:"price" yaml:"price"`
}

// Validate checks that the ShopItem satisfies its invariants.
//
// Postcondition: returns nil iff Name is non-empty, Price >= 0 and Stock >= -1.
func (i ShopItem) Validate() error {
	var errs []error
	if i.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if i.Price < 0 {
		errs = append(errs, fmt.Errorf("price must be >= 0, got %d", i.Price))
	}
	if i.Stock < UnlimitedStock {
		errs = append(errs, fmt.Errorf("stock must be >= -1, got %d", i.Stock))
	}
	return errors.Join(errs...)
}

// Unlimited reports whether the item has unlimited stock.
func (i ShopItem) Unlimited() bool {
	return i.Stock == UnlimitedStock
}

// Shop is a single shop and the items it sells. Shops are immutable once the
// catalog holding them has been built; callers must not modify them.
type Shop struct {
	ID       string
	Name     string
	Owner    string
	Location string
	// Point is nil when the source did not supply a full coordinate triple.
	Point *world.Point
	Items []ShopItem
}

// Item returns the first listed item whose name matches name case-insensitively.
//
// Postcondition: ok is true iff the shop lists such an item.
func (s *Shop) Item(name string) (ShopItem, bool) {
	key := normalize(name)
	for _, it := range s.Items {
		if normalize(it.Name) == key {
			return it, true
		}
	}
	return ShopItem{}, false
}

// Record is the source representation of a shop. Coordinates are pointers
// because a shop only has a location when all three are present.
type Record struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Owner    string     `json:"owner,omitempty" yaml:"owner,omitempty"`
	Location string     `json:"location" yaml:"location"`
	X        *int       `json:"x,omitempty" yaml:"x,omitempty"`
	Y        *int       `json:"y,omitempty" yaml:"y,omitempty"`
	Plane    *int       `json:"plane,omitempty" yaml:"plane,omitempty"`
	Items    []ShopItem `json:"items" yaml:"items"`
}

// Validate checks that the Record satisfies its invariants.
//
// Postcondition: returns nil iff id, name and location are non-empty and every item is valid.
func (r Record) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if r.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if r.Location == "" {
		errs = append(errs, errors.New("location must not be empty"))
	}
	for idx, it := range r.Items {
		if err := it.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("items[%d]: %w", idx, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shop %q: %w", r.ID, errors.Join(errs...))
	}
	return nil
}

// point converts the coordinate triple into a Point.
//
// Postcondition: returns nil unless X, Y and Plane are all set.
func (r Record) point() *world.Point {
	if r.X == nil || r.Y == nil || r.Plane == nil {
		return nil
	}
	p := world.NewPoint(*r.X, *r.Y, *r.Plane)
	return &p
}

// toShop converts r into an immutable Shop with its own copy of the items.
func (r Record) toShop() *Shop {
	items := make([]ShopItem, len(r.Items))
	copy(items, r.Items)
	return &Shop{
		ID:       r.ID,
		Name:     r.Name,
		Owner:    r.Owner,
		Location: r.Location,
		Point:    r.point(),
		Items:    items,
	}
}

// RecordOf converts a Shop back into its source representation.
//
// Postcondition: RecordOf(s).toShop() is equal in value to s.
func RecordOf(s *Shop) Record {
	r := Record{
		ID:       s.ID,
		Name:     s.Name,
		Owner:    s.Owner,
		Location: s.Location,
		Items:    make([]ShopItem, len(s.Items)),
	}
	copy(r.Items, s.Items)
	if s.Point != nil {
		x, y, plane := s.Point.X, s.Point.Y, s.Point.Plane
		r.X, r.Y, r.Plane = &x, &y, &plane
	}
	return r
}

package objective

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// ErrInvalidArgument is returned when an objective cannot be constructed from
// the values supplied.
var ErrInvalidArgument = errors.New("invalid argument")

// Spec carries the values an objective is created from.
type Spec struct {
	ID                string
	Type              Type
	Task              string
	LocationName      string
	Location          *world.Point
	PossibleLocations []world.Point
	Active            bool
	ItemName          string
	Quantity          *int
	ShopQuotes        []ShopLocation
}

// New validates spec and builds an Objective from it. RegionID is derived
// from spec.Location and is 0 when there is none. Empty location and quote
// lists are normalised to nil.
//
// Postcondition: Returns a valid Objective, or an error wrapping ErrInvalidArgument
// describing every violation.
func New(spec Spec) (Objective, error) {
	if err := spec.validate(); err != nil {
		return Objective{}, err
	}
	o := Objective{
		ID:           spec.ID,
		Type:         spec.Type,
		Task:         spec.Task,
		LocationName: spec.LocationName,
		Active:       spec.Active,
		ItemName:     spec.ItemName,
	}
	if spec.Location != nil {
		loc := *spec.Location
		o.Location = &loc
		o.RegionID = loc.RegionID()
	}
	if spec.Quantity != nil {
		q := *spec.Quantity
		o.Quantity = &q
	}
	if len(spec.PossibleLocations) > 0 {
		o.PossibleLocations = slices.Clone(spec.PossibleLocations)
	}
	if len(spec.ShopQuotes) > 0 {
		o.ShopQuotes = slices.Clone(spec.ShopQuotes)
	}
	return o, nil
}

func (s Spec) validate() error {
	var errs []string
	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, "id must not be empty")
	}
	if !s.Type.Valid() {
		errs = append(errs, fmt.Sprintf("type must be one of %v, got %q", AllTypes, s.Type))
	}
	if s.Quantity != nil {
		if *s.Quantity <= 0 {
			errs = append(errs, fmt.Sprintf("quantity must be > 0, got %d", *s.Quantity))
		}
		if s.Type.Valid() && !s.Type.takesQuantity() {
			errs = append(errs, fmt.Sprintf("quantity is only valid for BUY and COLLECT, got %s", s.Type))
		}
	}
	if s.Type != TypeBuy {
		if s.ItemName != "" {
			errs = append(errs, "item name is only valid for BUY")
		}
		if len(s.ShopQuotes) > 0 {
			errs = append(errs, "shop quotes are only valid for BUY")
		}
	}
	for i, q := range s.ShopQuotes {
		if q.ShopID == "" {
			errs = append(errs, fmt.Sprintf("shop_quotes[%d]: shop id must not be empty", i))
		}
		if q.Price < 0 {
			errs = append(errs, fmt.Sprintf("shop_quotes[%d]: price must be >= 0, got %d", i, q.Price))
		}
		if q.Stock < UnlimitedStock {
			errs = append(errs, fmt.Sprintf("shop_quotes[%d]: stock must be >= -1, got %d", i, q.Stock))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(errs, "; "))
	}
	return nil
}

// NewID returns a fresh objective id of the form "<prefix>_<8 hex digits>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

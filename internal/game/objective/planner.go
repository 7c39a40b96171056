package objective

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/objtrack/internal/game/shop"
	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// ErrUnknownItem is returned when no shop in the catalog sells the requested item.
var ErrUnknownItem = errors.New("no shop sells item")

// ErrUnknownShop is returned when a requested shop is not in the catalog or
// does not sell the requested item.
var ErrUnknownShop = errors.New("shop does not sell item")

// MultipleShops is the location name of a BUY objective quoting more than one shop.
const MultipleShops = "Multiple shops"

// buyIDPrefix prefixes the IDs of planned BUY objectives.
const buyIDPrefix = "buy"

// BuyRequest describes a BUY objective to plan.
type BuyRequest struct {
	// ItemName is matched case-insensitively against the catalog.
	ItemName string
	// Quantity is optional; when set it must be positive.
	Quantity *int
	// ShopID restricts the objective to a single shop when non-empty.
	ShopID string
	// Location overrides the primary location derived from the quotes.
	Location *world.Point
}

// Planner builds BUY objectives from a shop catalog.
type Planner struct {
	catalog *shop.Catalog
	newID   func() string
}

// NewPlanner returns a Planner reading from catalog.
//
// Precondition: catalog must be non-nil.
func NewPlanner(catalog *shop.Catalog) *Planner {
	return &Planner{
		catalog: catalog,
		newID:   func() string { return NewID(buyIDPrefix) },
	}
}

// PlanBuy resolves req against the catalog and returns a new, inactive BUY
// objective. One quote is attached per shop that lists the item and has a
// location; the quotes' points become the possible locations.
//
// Postcondition: Returns a valid Objective, or an error wrapping
// ErrInvalidArgument, ErrUnknownItem or ErrUnknownShop.
func (p *Planner) PlanBuy(req BuyRequest) (Objective, error) {
	item := strings.TrimSpace(req.ItemName)
	if item == "" {
		return Objective{}, fmt.Errorf("%w: item name must not be empty", ErrInvalidArgument)
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return Objective{}, fmt.Errorf("%w: quantity must be > 0, got %d", ErrInvalidArgument, *req.Quantity)
	}

	shops := p.catalog.ShopsForItem(item)
	if len(shops) == 0 {
		return Objective{}, fmt.Errorf("%w: %q", ErrUnknownItem, item)
	}
	if req.ShopID != "" {
		shops = filterShop(shops, req.ShopID)
		if len(shops) == 0 {
			return Objective{}, fmt.Errorf("%w: %q does not sell %q", ErrUnknownShop, req.ShopID, item)
		}
	}

	displayName := item
	var quotes []ShopLocation
	for i, s := range shops {
		listing, ok := s.Item(item)
		if !ok {
			continue
		}
		if i == 0 {
			displayName = listing.Name
		}
		if s.Point == nil {
			continue
		}
		quotes = append(quotes, ShopLocation{
			ShopID:       s.ID,
			ShopName:     s.Name,
			OwnerName:    s.Owner,
			LocationName: s.Location,
			Point:        *s.Point,
			Price:        listing.Price,
			Stock:        listing.Stock,
		})
	}

	possible := make([]world.Point, 0, len(quotes))
	for _, q := range quotes {
		possible = append(possible, q.Point)
	}

	primary := req.Location
	if primary == nil && len(quotes) > 0 {
		first := quotes[0].Point
		primary = &first
	}

	var locationName string
	switch len(quotes) {
	case 0:
		locationName = shops[0].Location
	case 1:
		locationName = quotes[0].LocationName
	default:
		locationName = MultipleShops
	}

	return New(Spec{
		ID:                p.newID(),
		Type:              TypeBuy,
		Task:              buyTask(displayName, req.Quantity),
		LocationName:      locationName,
		Location:          primary,
		PossibleLocations: possible,
		ItemName:          displayName,
		Quantity:          req.Quantity,
		ShopQuotes:        quotes,
	})
}

func filterShop(shops []*shop.Shop, id string) []*shop.Shop {
	for _, s := range shops {
		if s.ID == id {
			return []*shop.Shop{s}
		}
	}
	return nil
}

func buyTask(item string, quantity *int) string {
	if quantity == nil {
		return "Buy " + item
	}
	return fmt.Sprintf("Buy %d x %s", *quantity, item)
}

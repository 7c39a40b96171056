package resolve

import (
	"github.com/cory-johannsen/objtrack/internal/game/objective"
	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// LocationResolver picks the location of an objective nearest to a reference
// tile. Only candidates on the reference tile's plane are ever considered.
type LocationResolver struct {
	// Metric measures tile distance; nil means world.Chebyshev.
	Metric world.Metric
	// Prices breaks the fallback cases of BestShopLocation.
	Prices PriceResolver
}

// NewLocationResolver returns a LocationResolver using Chebyshev distance.
func NewLocationResolver() LocationResolver {
	return LocationResolver{Metric: world.Chebyshev}
}

func (r LocationResolver) distance(a, b world.Point) int {
	if r.Metric == nil {
		return world.Chebyshev(a, b)
	}
	return r.Metric(a, b)
}

// nearest returns the index of the candidate on ref's plane closest to ref,
// preferring the earliest candidate on ties, or -1 if none is on ref's plane.
func (r LocationResolver) nearest(n int, at func(int) world.Point, ref world.Point) int {
	best, bestDist := -1, 0
	for i := 0; i < n; i++ {
		p := at(i)
		if !p.SamePlane(ref) {
			continue
		}
		if d := r.distance(p, ref); best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// BestLocation returns the location to show for o given the player's tile.
//
// Without a reference tile or alternate locations it returns o.Location.
// Otherwise it returns the nearest alternate on ref's plane, falling back to
// o.Location when none shares the plane.
//
// Postcondition: a non-nil result taken from PossibleLocations is on ref's plane.
func (r LocationResolver) BestLocation(o objective.Objective, ref *world.Point) *world.Point {
	if ref == nil || len(o.PossibleLocations) == 0 {
		return clonePoint(o.Location)
	}
	i := r.nearest(len(o.PossibleLocations), func(i int) world.Point { return o.PossibleLocations[i] }, *ref)
	if i < 0 {
		return clonePoint(o.Location)
	}
	p := o.PossibleLocations[i]
	return &p
}

// BestShopLocation returns the quote to show for o given the player's tile.
//
// A single quote is always returned as is. Without a reference tile the
// cheapest quote is returned. Otherwise the nearest quote on ref's plane is
// returned, falling back to the cheapest when none shares the plane.
//
// Postcondition: Returns nil iff o has no quotes.
func (r LocationResolver) BestShopLocation(o objective.Objective, ref *world.Point) *objective.ShopLocation {
	quotes := o.ShopQuotes
	switch {
	case len(quotes) == 0:
		return nil
	case len(quotes) == 1:
		q := quotes[0]
		return &q
	case ref == nil:
		return r.Prices.CheapestShop(quotes)
	}
	i := r.nearest(len(quotes), func(i int) world.Point { return quotes[i].Point }, *ref)
	if i < 0 {
		return r.Prices.CheapestShop(quotes)
	}
	q := quotes[i]
	return &q
}

func clonePoint(p *world.Point) *world.Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

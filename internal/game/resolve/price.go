// Package resolve decides where an objective should be completed: the nearest
// reachable location, the best shop to visit, and the cheapest quote.
// Resolvers are stateless and never modify the objectives they are given.
package resolve

import "github.com/cory-johannsen/objtrack/internal/game/objective"

// PriceResolver answers price and stock questions about shop quotes.
type PriceResolver struct{}

// CheapestShop returns the quote with the lowest price. Ties go to the quote
// that appears first.
//
// Postcondition: Returns nil iff quotes is empty.
func (PriceResolver) CheapestShop(quotes []objective.ShopLocation) *objective.ShopLocation {
	if len(quotes) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(quotes); i++ {
		if quotes[i].Price < quotes[best].Price {
			best = i
		}
	}
	q := quotes[best]
	return &q
}

// TotalCost returns the price of quantity items at q, or 0 when quantity is nil.
func (PriceResolver) TotalCost(q objective.ShopLocation, quantity *int) int {
	if quantity == nil {
		return 0
	}
	return q.Price * *quantity
}

// HasSufficientStock reports whether q can supply required items.
func (PriceResolver) HasSufficientStock(q objective.ShopLocation, required int) bool {
	return q.Unlimited() || q.Stock >= required
}

// ShopsWithSufficientStock returns, in order, the quotes of o that can supply
// o's quantity.
//
// Postcondition: never returns nil; empty when o has no quantity or no quotes.
func (r PriceResolver) ShopsWithSufficientStock(o objective.Objective) []objective.ShopLocation {
	out := make([]objective.ShopLocation, 0, len(o.ShopQuotes))
	if o.Quantity == nil {
		return out
	}
	for _, q := range o.ShopQuotes {
		if r.HasSufficientStock(q, *o.Quantity) {
			out = append(out, q)
		}
	}
	return out
}

// CheapestTotalCost returns the cost of o's quantity at its cheapest quote.
//
// Postcondition: Returns 0 when o has no quotes or no quantity.
func (r PriceResolver) CheapestTotalCost(o objective.Objective) int {
	q := r.CheapestShop(o.ShopQuotes)
	if q == nil {
		return 0
	}
	return r.TotalCost(*q, o.Quantity)
}

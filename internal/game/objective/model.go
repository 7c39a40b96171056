// Package objective provides the objective model, its validated constructor,
// the in-memory objective store, and the planner that turns a catalog item
// into a BUY objective.
package objective

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// Type classifies what an objective asks the player to do.
type Type string

// Objective types.
const (
	TypeTalk    Type = "TALK"
	TypeTravel  Type = "TRAVEL"
	TypeCollect Type = "COLLECT"
	TypeKill    Type = "KILL"
	TypeUse     Type = "USE"
	TypeSkill   Type = "SKILL"
	TypeBuy     Type = "BUY"
	TypeOther   Type = "OTHER"
)

// AllTypes lists every objective type in declaration order.
var AllTypes = []Type{
	TypeTalk, TypeTravel, TypeCollect, TypeKill,
	TypeUse, TypeSkill, TypeBuy, TypeOther,
}

// Valid reports whether t is one of AllTypes.
func (t Type) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// ParseType converts a case-insensitive type name into a Type.
//
// Postcondition: Returns an error wrapping ErrInvalidArgument for unknown names.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown objective type %q", ErrInvalidArgument, s)
	}
	return t, nil
}

// takesQuantity reports whether objectives of type t may carry a quantity.
func (t Type) takesQuantity() bool {
	return t == TypeBuy || t == TypeCollect
}

// UnlimitedStock is the Stock value of a quote whose shop never runs out.
const UnlimitedStock = -1

// ShopLocation is a price quote for one item at one shop, copied from the
// catalog when the objective was created. It stays valid if the catalog is reloaded.
type ShopLocation struct {
	ShopID       string
	ShopName     string
	OwnerName    string
	LocationName string
	Point        world.Point
	Price        int
	Stock        int
}

// RegionID returns the region containing the shop.
func (q ShopLocation) RegionID() int {
	return q.Point.RegionID()
}

// Unlimited reports whether the shop has unlimited stock.
func (q ShopLocation) Unlimited() bool {
	return q.Stock == UnlimitedStock
}

// Summary renders the quote as "<shop> (<location>) - <price> gp".
func (q ShopLocation) Summary() string {
	return fmt.Sprintf("%s (%s) - %s gp", q.ShopName, q.LocationName, humanize.Comma(int64(q.Price)))
}

// Objective is one thing the player still has to do.
//
// Objectives are values. Active is the only field that ever changes, and it
// changes by replacing the whole record with WithActive; any other change is a
// remove followed by an add.
type Objective struct {
	ID           string
	Type         Type
	Task         string
	LocationName string
	// Location is the primary location; nil when the objective has none.
	Location *world.Point
	// PossibleLocations are alternates, e.g. every shop selling the item.
	// Nil or non-empty, never empty.
	PossibleLocations []world.Point
	// RegionID is derived from Location when the objective is constructed.
	RegionID int
	Active   bool
	// ItemName is set for BUY objectives only.
	ItemName string
	// Quantity is nil when no quantity applies.
	Quantity *int
	// ShopQuotes is set for BUY objectives only. Nil or non-empty.
	ShopQuotes []ShopLocation
}

// Clone returns a deep copy of o.
func (o Objective) Clone() Objective {
	out := o
	if o.Location != nil {
		loc := *o.Location
		out.Location = &loc
	}
	if o.Quantity != nil {
		q := *o.Quantity
		out.Quantity = &q
	}
	out.PossibleLocations = slices.Clone(o.PossibleLocations)
	out.ShopQuotes = slices.Clone(o.ShopQuotes)
	return out
}

// WithActive returns a copy of o with Active set to active. Every other field
// is carried over unchanged.
func (o Objective) WithActive(active bool) Objective {
	out := o.Clone()
	out.Active = active
	return out
}

// RegionIDFor returns the region of p, or the objective's own region when p is nil.
func (o Objective) RegionIDFor(p *world.Point) int {
	if p == nil {
		return o.RegionID
	}
	return p.RegionID()
}

// HasLocation reports whether the objective has a primary or alternate location.
func (o Objective) HasLocation() bool {
	return o.Location != nil || len(o.PossibleLocations) > 0
}

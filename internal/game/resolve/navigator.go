package resolve

import (
	"github.com/cory-johannsen/objtrack/internal/game/objective"
	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// Band is a coarse distance category used to colour guidance.
type Band string

// Distance bands.
const (
	BandNear   Band = "near"
	BandMedium Band = "medium"
	BandFar    Band = "far"
)

// Default band limits, in tiles.
const (
	DefaultNearTiles   = 10
	DefaultMediumTiles = 50
)

// Guidance tells the player how to reach an objective.
type Guidance struct {
	Objective objective.Objective
	Target    world.Point
	// Distance is the straight-line distance in tiles.
	Distance float64
	// Bearing is in degrees clockwise from north.
	Bearing float64
	Compass string
	Band    Band
}

// Navigator finds the closest objective to the player.
type Navigator struct {
	Locations   LocationResolver
	NearTiles   int
	MediumTiles int
}

// NewNavigator returns a Navigator with the given band limits. Non-positive
// limits fall back to the defaults.
func NewNavigator(locations LocationResolver, nearTiles, mediumTiles int) Navigator {
	if nearTiles <= 0 {
		nearTiles = DefaultNearTiles
	}
	if mediumTiles <= 0 {
		mediumTiles = DefaultMediumTiles
	}
	return Navigator{Locations: locations, NearTiles: nearTiles, MediumTiles: mediumTiles}
}

// Closest returns guidance to the nearest of objectives, measured by
// straight-line distance from player to each objective's best location.
// Objectives without a location on the player's plane are skipped; ties go to
// the earliest objective.
//
// Postcondition: ok is false iff no objective has a location on player's plane.
func (n Navigator) Closest(objectives []objective.Objective, player world.Point) (Guidance, bool) {
	var (
		best  Guidance
		found bool
	)
	for _, o := range objectives {
		target := n.Locations.BestLocation(o, &player)
		if target == nil || !target.SamePlane(player) {
			continue
		}
		d := world.Euclidean(player, *target)
		if found && d >= best.Distance {
			continue
		}
		best = Guidance{Objective: o, Target: *target, Distance: d}
		found = true
	}
	if !found {
		return Guidance{}, false
	}
	best.Bearing = world.Bearing(player, best.Target)
	best.Compass = world.Compass(best.Bearing)
	best.Band = n.band(best.Distance)
	return best, true
}

func (n Navigator) band(d float64) Band {
	switch {
	case d < float64(n.NearTiles):
		return BandNear
	case d < float64(n.MediumTiles):
		return BandMedium
	default:
		return BandFar
	}
}

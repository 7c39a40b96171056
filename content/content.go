// Package content embeds the sample shop catalog and the starter objective
// seed scripts shipped with the tracker.
package content

import (
	"embed"

	"github.com/cory-johannsen/objtrack/internal/game/shop"
)

// SeedDir is the directory of seed scripts inside Seeds.
const SeedDir = "seeds"

// ShopsName labels the embedded catalog in logs and errors.
const ShopsName = "embedded:shops.json"

//go:embed shops.json
var shops []byte

// Seeds holds the embedded *.lua seed scripts under SeedDir.
//
//go:embed seeds/*.lua
var Seeds embed.FS

// ShopSource returns a catalog source over the embedded shops.json.
// v may be nil to skip schema validation.
func ShopSource(v *shop.SchemaValidator) *shop.BytesSource {
	return shop.NewBytesSource(ShopsName, shop.FormatJSON, shops, v)
}

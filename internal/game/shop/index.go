package shop

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalize returns the index key for an item name.
// A Caser is stateful, so each call builds its own.
func normalize(name string) string {
	return cases.Lower(language.Und).String(name)
}

// itemIndex maps lowercased item names to the shops that sell them.
// It is written only while the catalog is built and is read-only afterwards.
type itemIndex struct {
	shops map[string][]*Shop
	// names holds the keys of shops in ascending order.
	names []string
}

func newItemIndex() *itemIndex {
	return &itemIndex{shops: make(map[string][]*Shop)}
}

// add records that s sells an item called name. A shop listing the same item
// more than once appears once under that key.
func (x *itemIndex) add(name string, s *Shop) {
	key := normalize(name)
	list := x.shops[key]
	if n := len(list); n > 0 && list[n-1] == s {
		return
	}
	x.shops[key] = append(list, s)
}

// seal sorts the key list. It must be called once, after the last add.
func (x *itemIndex) seal() {
	x.names = make([]string, 0, len(x.shops))
	for k := range x.shops {
		x.names = append(x.names, k)
	}
	sort.Strings(x.names)
}

// lookup returns a copy of the shops selling name.
//
// Postcondition: never returns nil.
func (x *itemIndex) lookup(name string) []*Shop {
	if strings.TrimSpace(name) == "" {
		return []*Shop{}
	}
	list := x.shops[normalize(name)]
	out := make([]*Shop, len(list))
	copy(out, list)
	return out
}

// search returns every key containing query, in ascending order.
//
// Postcondition: never returns nil; empty for blank queries.
func (x *itemIndex) search(query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}
	q := normalize(query)
	out := make([]string, 0)
	for _, name := range x.names {
		if strings.Contains(name, q) {
			out = append(out, name)
		}
	}
	return out
}

// all returns every key in ascending order.
func (x *itemIndex) all() []string {
	out := make([]string, len(x.names))
	copy(out, x.names)
	return out
}

func (x *itemIndex) len() int {
	return len(x.names)
}

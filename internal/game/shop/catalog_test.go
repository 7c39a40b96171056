package shop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/objtrack/internal/game/world"
)

func intp(n int) *int { return &n }

func testRecords() []Record {
	return []Record{
		{
			ID: "varrock_swords", Name: "Varrock Swordshop", Owner: "Shopkeeper", Location: "Varrock",
			X: intp(3204), Y: intp(3399), Plane: intp(0),
			Items: []ShopItem{
				{ItemID: 1277, Name: "Bronze sword", Stock: 10, Price: 26},
				{ItemID: 1287, Name: "Adamant sword", Stock: 2, Price: 1040},
			},
		},
		{
			ID: "lumbridge_general", Name: "Lumbridge General Store", Owner: "Shop keeper", Location: "Lumbridge",
			X: intp(3212), Y: intp(3246), Plane: intp(0),
			Items: []ShopItem{
				{ItemID: 1931, Name: "Pot", Stock: 5, Price: 1},
				{ItemID: 1277, Name: "BRONZE SWORD", Stock: 3, Price: 30},
			},
		},
		{
			ID: "aubury_runes", Name: "Aubury's Rune Shop", Owner: "Aubury", Location: "Varrock",
			Items: []ShopItem{
				{ItemID: 556, Name: "Air rune", Stock: UnlimitedStock, Price: 4},
			},
		},
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Build(testRecords())
	require.NoError(t, err)
	return c
}

func TestBuild_IndexesShopsAndItems(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, 3, c.ShopCount())
	assert.Equal(t, 4, c.ItemCount())
	assert.Equal(t, []string{"adamant sword", "air rune", "bronze sword", "pot"}, c.AllItemNames())
}

func TestBuild_PointRequiresAllCoordinates(t *testing.T) {
	recs := []Record{
		{ID: "full", Name: "Full", Location: "A", X: intp(1), Y: intp(2), Plane: intp(0)},
		{ID: "partial", Name: "Partial", Location: "B", X: intp(1), Y: intp(2)},
		{ID: "none", Name: "None", Location: "C"},
	}
	c, err := Build(recs)
	require.NoError(t, err)

	full, ok := c.ShopByID("full")
	require.True(t, ok)
	require.NotNil(t, full.Point)
	assert.Equal(t, world.NewPoint(1, 2, 0), *full.Point)

	partial, _ := c.ShopByID("partial")
	assert.Nil(t, partial.Point)
	none, _ := c.ShopByID("none")
	assert.Nil(t, none.Point)
}

func TestBuild_ItemsKeepSourceOrder(t *testing.T) {
	c := testCatalog(t)
	s, ok := c.ShopByID("varrock_swords")
	require.True(t, ok)
	require.Len(t, s.Items, 2)
	assert.Equal(t, "Bronze sword", s.Items[0].Name)
	assert.Equal(t, "Adamant sword", s.Items[1].Name)
}

func TestBuild_DuplicateShopID(t *testing.T) {
	recs := append(testRecords(), Record{ID: "aubury_runes", Name: "Copy", Location: "Varrock"})
	_, err := Build(recs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataFormat)
	assert.Contains(t, err.Error(), "duplicate shop ID")
}

func TestBuild_InvalidRecords(t *testing.T) {
	cases := map[string]Record{
		"missing id":       {Name: "n", Location: "l"},
		"missing name":     {ID: "i", Location: "l"},
		"missing location": {ID: "i", Name: "n"},
		"negative price":   {ID: "i", Name: "n", Location: "l", Items: []ShopItem{{Name: "x", Price: -1}}},
		"bad stock":        {ID: "i", Name: "n", Location: "l", Items: []ShopItem{{Name: "x", Stock: -2}}},
		"unnamed item":     {ID: "i", Name: "n", Location: "l", Items: []ShopItem{{Price: 1}}},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Build([]Record{rec})
			assert.ErrorIs(t, err, ErrDataFormat)
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := testCatalog(t)
	b := testCatalog(t)
	assert.Equal(t, a.AllItemNames(), b.AllItemNames())
	for _, name := range a.AllItemNames() {
		var idsA, idsB []string
		for _, s := range a.ShopsForItem(name) {
			idsA = append(idsA, s.ID)
		}
		for _, s := range b.ShopsForItem(name) {
			idsB = append(idsB, s.ID)
		}
		assert.Equal(t, idsA, idsB, "shops for %q", name)
	}
}

func TestBuild_SameItemTwiceInOneShop(t *testing.T) {
	c, err := Build([]Record{{
		ID: "s", Name: "S", Location: "L",
		Items: []ShopItem{{Name: "Pot", Price: 1}, {Name: "pot", Price: 2}},
	}})
	require.NoError(t, err)
	assert.Len(t, c.ShopsForItem("pot"), 1)
}

func TestShopByID(t *testing.T) {
	c := testCatalog(t)

	s, ok := c.ShopByID("aubury_runes")
	require.True(t, ok)
	assert.Equal(t, "Aubury", s.Owner)

	_, ok = c.ShopByID("nonexistent")
	assert.False(t, ok)
	_, ok = c.ShopByID("")
	assert.False(t, ok)
	_, ok = c.ShopByID(strings.Repeat("shop_id_", 1000))
	assert.False(t, ok)
}

func TestAllShops_DefensiveCopy(t *testing.T) {
	c := testCatalog(t)
	shops := c.AllShops()
	require.Len(t, shops, 3)
	assert.Equal(t, "varrock_swords", shops[0].ID)

	shops[0] = nil
	again := c.AllShops()
	require.Len(t, again, 3)
	assert.Equal(t, "varrock_swords", again[0].ID)
}

func TestShopsForItem(t *testing.T) {
	c := testCatalog(t)

	shops := c.ShopsForItem("Bronze Sword")
	require.Len(t, shops, 2)
	assert.Equal(t, "varrock_swords", shops[0].ID)
	assert.Equal(t, "lumbridge_general", shops[1].ID)

	assert.Equal(t, c.ShopsForItem("bronze sword"), c.ShopsForItem("BRONZE SWORD"))
}

func TestShopsForItem_NeverNil(t *testing.T) {
	c := testCatalog(t)
	for _, q := range []string{"", "   ", "dragon scimitar", "@#$%^&*"} {
		got := c.ShopsForItem(q)
		assert.NotNil(t, got, "query %q", q)
		assert.Empty(t, got, "query %q", q)
	}
}

func TestSearchItems(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{"adamant sword", "bronze sword"}, c.SearchItems("sword"))
	assert.Equal(t, []string{"adamant sword", "bronze sword"}, c.SearchItems("SWORD"))
	assert.Equal(t, []string{"air rune"}, c.SearchItems("Rune"))
	assert.Equal(t, []string{"adamant sword", "bronze sword", "pot"}, c.SearchItems("o"))
}

func TestSearchItems_EmptyQueries(t *testing.T) {
	c := testCatalog(t)
	for _, q := range []string{"", "   ", "\t\n\r"} {
		got := c.SearchItems(q)
		assert.NotNil(t, got, "query %q", q)
		assert.Empty(t, got, "query %q", q)
	}
}

func TestSearchItems_NoMatch(t *testing.T) {
	c := testCatalog(t)
	assert.Empty(t, c.SearchItems(strings.Repeat("a", 10000)))
	for _, q := range []string{"@#$%", "<script>", "'; DROP TABLE shops; --", "\\n"} {
		assert.Empty(t, c.SearchItems(q), "query %q", q)
	}
}

func TestEmptyCatalog(t *testing.T) {
	c := Empty()
	assert.Equal(t, 0, c.ShopCount())
	assert.Empty(t, c.AllShops())
	assert.NotNil(t, c.AllItemNames())
	assert.Empty(t, c.AllItemNames())
	assert.Empty(t, c.SearchItems("sword"))
	assert.Empty(t, c.ShopsForItem("sword"))
	_, ok := c.ShopByID("anything")
	assert.False(t, ok)
}

func TestLoad_Success(t *testing.T) {
	c, err := Load(context.Background(), NewStaticSource("static", testRecords()), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, c.ShopCount())
}

type failingSource struct{ err error }

func (f failingSource) Name() string { return "failing" }
func (f failingSource) Records(context.Context) ([]Record, error) {
	return nil, f.err
}

func TestLoad_UnavailableDegradesToEmpty(t *testing.T) {
	c, err := Load(context.Background(), failingSource{err: errors.New("boom")}, zap.NewNop())
	require.NotNil(t, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.NotErrorIs(t, err, ErrDataFormat)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "failing", le.Source)
	assert.Equal(t, 0, c.ShopCount())
	assert.Empty(t, c.SearchItems("sword"))
}

func TestLoad_MalformedDegradesToEmpty(t *testing.T) {
	src := NewStaticSource("dupes", []Record{
		{ID: "a", Name: "A", Location: "L"},
		{ID: "a", Name: "A again", Location: "L"},
	})
	c, err := Load(context.Background(), src, zap.NewNop())
	require.NotNil(t, c)
	assert.ErrorIs(t, err, ErrDataFormat)
	assert.Equal(t, 0, c.ShopCount())
}

func TestLoad_NonListDocumentDegradesToEmpty(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		doc    string
	}{
		{"json null", FormatJSON, "null"},
		{"json empty", FormatJSON, ""},
		{"yaml empty", FormatYAML, ""},
		{"yaml null", FormatYAML, "~"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Load(context.Background(), NewBytesSource("doc", tc.format, []byte(tc.doc), nil), zap.NewNop())
			require.NotNil(t, c)
			assert.ErrorIs(t, err, ErrDataFormat)
			assert.Equal(t, 0, c.ShopCount())
		})
	}
}

func TestDecode_EmptyListIsValid(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		recs, err := Decode(f, []byte("[]"), nil)
		require.NoError(t, err, f)
		assert.Empty(t, recs)
	}

	data, err := Encode(FormatJSON, nil)
	require.NoError(t, err)
	recs, err := Decode(FormatJSON, data, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestShop_Item(t *testing.T) {
	c := testCatalog(t)
	s, _ := c.ShopByID("lumbridge_general")
	it, ok := s.Item("bronze sword")
	require.True(t, ok)
	assert.Equal(t, 30, it.Price)
	_, ok = s.Item("adamant sword")
	assert.False(t, ok)
}

func TestRecordOf_RoundTrip(t *testing.T) {
	for _, rec := range testRecords() {
		s := rec.toShop()
		assert.Equal(t, s, RecordOf(s).toShop())
	}
}

func TestConcurrentQueries(t *testing.T) {
	c := testCatalog(t)
	var wg sync.WaitGroup
	errs := make(chan string, 10)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				if len(c.SearchItems("sword")) != 2 {
					errs <- "search"
					return
				}
				if len(c.ShopsForItem("bronze sword")) != 2 {
					errs <- "shops for item"
					return
				}
				if len(c.AllShops()) != 3 {
					errs <- "all shops"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent %s returned an unexpected result", e)
	}
}

// genRecords draws a catalog whose item names are ASCII words of mixed case.
func genRecords(t *rapid.T) []Record {
	n := rapid.IntRange(1, 6).Draw(t, "num_shops")
	recs := make([]Record, n)
	for i := range recs {
		items := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) ShopItem {
			return ShopItem{
				ItemID: rapid.IntRange(1, 30000).Draw(t, "item_id"),
				Name:   rapid.StringMatching(`[A-Za-z]{2,6}( [A-Za-z]{2,6})?`).Draw(t, "item_name"),
				Stock:  rapid.IntRange(-1, 50).Draw(t, "stock"),
				Price:  rapid.IntRange(0, 5000).Draw(t, "price"),
			}
		}), 0, 5).Draw(t, "items")
		recs[i] = Record{
			ID:       "shop_" + string(rune('a'+i)),
			Name:     "Shop",
			Location: "Somewhere",
			Items:    items,
		}
	}
	return recs
}

func mixedCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i%2 == 0 {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestPropertySearchIsCaseInsensitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, err := Build(genRecords(t))
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		names := c.AllItemNames()
		if len(names) == 0 {
			t.Skip("no items generated")
		}
		s := names[rapid.IntRange(0, len(names)-1).Draw(t, "idx")]
		assert.Equal(t, c.SearchItems(s), c.SearchItems(strings.ToUpper(s)))
		assert.Equal(t, c.SearchItems(s), c.SearchItems(mixedCase(s)))
	})
}

func TestPropertySearchSortedAndDistinct(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, err := Build(genRecords(t))
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		q := rapid.StringMatching(`[A-Za-z ]{1,3}`).Draw(t, "query")
		got := c.SearchItems(q)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1], got[i], "results must be strictly increasing")
		}
		for _, name := range got {
			assert.Contains(t, name, strings.ToLower(q))
		}
	})
}

func TestPropertyIndexCompleteness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, err := Build(genRecords(t))
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		for _, name := range c.AllItemNames() {
			shops := c.ShopsForItem(name)
			assert.NotEmpty(t, shops, "no shops for %q", name)
			for _, s := range shops {
				_, ok := s.Item(name)
				assert.True(t, ok, "shop %q does not list %q", s.ID, name)
			}
		}
	})
}

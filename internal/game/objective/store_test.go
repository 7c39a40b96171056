package objective

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/objtrack/internal/game/world"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(zaptest.NewLogger(t))
}

func mustNew(t *testing.T, spec Spec) Objective {
	t.Helper()
	o, err := New(spec)
	require.NoError(t, err)
	return o
}

func buyObjective(t *testing.T) Objective {
	return mustNew(t, Spec{
		ID:                "buy_sword",
		Type:              TypeBuy,
		Task:              "Buy adamant sword",
		LocationName:      MultipleShops,
		Location:          pt(3167, 3418, 0),
		PossibleLocations: []world.Point{world.NewPoint(3167, 3418, 0), world.NewPoint(3200, 3400, 0)},
		ItemName:          "adamant sword",
		Quantity:          qty(10),
		ShopQuotes: []ShopLocation{
			{ShopID: "S1", ShopName: "S1", Point: world.NewPoint(3167, 3418, 0), Price: 100, Stock: UnlimitedStock},
			{ShopID: "S2", ShopName: "S2", Point: world.NewPoint(3200, 3400, 0), Price: 90, Stock: 5},
		},
	})
}

func TestStore_AddGet(t *testing.T) {
	s := newTestStore(t)
	o := buyObjective(t)
	s.Add(o)

	got, ok := s.Get("buy_sword")
	require.True(t, ok)
	assert.Equal(t, o, got)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStore_AddOverwrites(t *testing.T) {
	s := newTestStore(t)
	s.Add(mustNew(t, Spec{ID: "a", Type: TypeTalk, Task: "first"}))
	s.Add(mustNew(t, Spec{ID: "a", Type: TypeTalk, Task: "second"}))
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", got.Task)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	o := buyObjective(t)
	s.Add(o)

	o.ShopQuotes[0].Price = 1
	got, _ := s.Get("buy_sword")
	assert.Equal(t, 100, got.ShopQuotes[0].Price)

	got.PossibleLocations[0].X = 0
	again, _ := s.Get("buy_sword")
	assert.Equal(t, 3167, again.PossibleLocations[0].X)
}

func TestStore_AllAndActive(t *testing.T) {
	s := newTestStore(t)
	s.Add(mustNew(t, Spec{ID: "c", Type: TypeKill, Active: true}))
	s.Add(mustNew(t, Spec{ID: "a", Type: TypeTalk}))
	s.Add(mustNew(t, Spec{ID: "b", Type: TypeTravel, Active: true}))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	active := s.Active()
	assert.Equal(t, []string{"b", "c"}, ids(active))

	empty := NewStore(zaptest.NewLogger(t))
	assert.NotNil(t, empty.All())
	assert.NotNil(t, empty.Active())
}

func ids(objs []Objective) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID
	}
	return out
}

func TestStore_Toggle(t *testing.T) {
	s := newTestStore(t)
	o := buyObjective(t)
	s.Add(o)

	toggled, ok := s.Toggle("buy_sword")
	require.True(t, ok)
	assert.True(t, toggled.Active)

	got, _ := s.Get("buy_sword")
	assert.True(t, got.Active)
	assert.Equal(t, o.ShopQuotes, got.ShopQuotes)
	assert.Equal(t, o.PossibleLocations, got.PossibleLocations)
	assert.Equal(t, o.Quantity, got.Quantity)
	assert.Equal(t, o.RegionID, got.RegionID)

	_, ok = s.Toggle("buy_sword")
	require.True(t, ok)
	back, _ := s.Get("buy_sword")
	assert.Equal(t, o, back)
}

func TestStore_ToggleMissingIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.Add(mustNew(t, Spec{ID: "a", Type: TypeTalk}))
	before := s.All()

	_, ok := s.Toggle("missing_id")
	assert.False(t, ok)
	assert.Equal(t, before, s.All())
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	s.Add(mustNew(t, Spec{ID: "a", Type: TypeTalk}))
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentToggleAndRead(t *testing.T) {
	s := NewStore(zap.NewNop())
	o := buyObjective(t)
	s.Add(o)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Toggle("buy_sword")
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				for _, got := range s.All() {
					if len(got.ShopQuotes) != 2 || len(got.PossibleLocations) != 2 || got.Quantity == nil {
						t.Errorf("torn record observed: %+v", got)
						return
					}
				}
				for _, got := range s.Active() {
					if !got.Active {
						t.Errorf("inactive record in Active(): %s", got.ID)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get("buy_sword")
	assert.Equal(t, o, got, "an even number of toggles restores the record")
}

func TestPropertyStoreToggleTwiceRestores(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		o := genObjective(rt)
		s := NewStore(zap.NewNop())
		s.Add(o)
		s.Toggle(o.ID)
		s.Toggle(o.ID)
		got, ok := s.Get(o.ID)
		assert.True(rt, ok)
		assert.Equal(rt, o, got)
	})
}

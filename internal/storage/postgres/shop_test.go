package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/objtrack/internal/config"
	"github.com/cory-johannsen/objtrack/internal/game/shop"
	"github.com/cory-johannsen/objtrack/internal/storage/postgres"
	"github.com/cory-johannsen/objtrack/internal/testutil"
)

func intp(n int) *int { return &n }

func sampleRecords() []shop.Record {
	return []shop.Record{
		{
			ID: "varrock_swords", Name: "Varrock Swordshop", Owner: "Shopkeeper", Location: "Varrock",
			X: intp(3204), Y: intp(3399), Plane: intp(0),
			Items: []shop.ShopItem{
				{ItemID: 1277, Name: "Bronze sword", Stock: 10, Price: 26},
				{ItemID: 1287, Name: "Adamant sword", Stock: 5, Price: 1040},
			},
		},
		{
			ID: "lumbridge_general", Name: "Lumbridge General Store", Location: "Lumbridge",
			X: intp(3212), Y: intp(3246), Plane: intp(0),
			Items: []shop.ShopItem{
				{ItemID: 1931, Name: "Pot", Stock: shop.UnlimitedStock, Price: 1},
			},
		},
		{
			ID: "wandering_trader", Name: "Wandering Trader", Location: "Unknown",
			Items: []shop.ShopItem{},
		},
	}
}

func TestShopRepository_RoundTrip(t *testing.T) {
	pc := testutil.NewShopDatabase(t)
	repo := postgres.NewShopRepository(pc.RawPool)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

	got, err := repo.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "varrock_swords", got[0].ID)
	assert.Equal(t, "Shopkeeper", got[0].Owner)
	assert.Equal(t, sampleRecords()[0].Items, got[0].Items)
	assert.Equal(t, 3204, *got[0].X)
	assert.Empty(t, got[1].Owner)
	assert.Nil(t, got[2].X)
	assert.Empty(t, got[2].Items)
}

func TestShopRepository_ReplaceAllReplaces(t *testing.T) {
	pc := testutil.NewShopDatabase(t)
	repo := postgres.NewShopRepository(pc.RawPool)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))
	require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()[1:2]))

	got, err := repo.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lumbridge_general", got[0].ID)
}

func TestShopRepository_ReplaceAllRejectsInvalid(t *testing.T) {
	pc := testutil.NewShopDatabase(t)
	repo := postgres.NewShopRepository(pc.RawPool)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

	dup := append(sampleRecords(), sampleRecords()[0])
	err := repo.ReplaceAll(ctx, dup)
	assert.ErrorIs(t, err, shop.ErrDataFormat)

	got, err := repo.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3, "failed replace must leave the catalog untouched")
}

func TestShopRepository_LoadsCatalog(t *testing.T) {
	pc := testutil.NewShopDatabase(t)
	repo := postgres.NewShopRepository(pc.RawPool)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, sampleRecords()))

	c, err := shop.Load(ctx, repo, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 3, c.ShopCount())
	assert.Equal(t, []string{"adamant sword"}, c.SearchItems("adam"))
	assert.Len(t, c.ShopsForItem("POT"), 1)
}

func TestShopRepository_ClosedPoolIsUnavailable(t *testing.T) {
	pc := testutil.NewShopDatabase(t)
	pool, err := postgres.NewPool(context.Background(), pc.Config)
	require.NoError(t, err)
	require.NoError(t, pool.Health(context.Background()))
	repo := pool.Shops()
	pool.Close()

	assert.ErrorIs(t, pool.Health(context.Background()), shop.ErrDataUnavailable)
	c, err := shop.Load(context.Background(), repo, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, shop.ErrDataUnavailable)
	assert.Equal(t, 0, c.ShopCount())
}

func TestNewPool_UnreachableIsUnavailable(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "objtrack", Name: "catalog", SSLMode: "disable",
		MaxConns: 1, ConnectTimeout: time.Second,
	}
	start := time.Now()
	pool, err := postgres.NewPool(context.Background(), cfg)
	assert.Nil(t, pool)
	assert.ErrorIs(t, err, shop.ErrDataUnavailable)
	assert.Less(t, time.Since(start), 10*time.Second)
}

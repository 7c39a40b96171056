package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/objtrack/internal/game/shop"
)

// ShopRepository reads and replaces the shop catalog held in PostgreSQL.
// It implements shop.Source.
type ShopRepository struct {
	db *pgxpool.Pool
}

// NewShopRepository creates a ShopRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the shop schema applied.
func NewShopRepository(db *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: db}
}

// Name identifies the repository in catalog logs.
func (r *ShopRepository) Name() string {
	return "postgres"
}

// Records returns every stored shop with its items, both in catalog order.
//
// Postcondition: query failures wrap shop.ErrDataUnavailable; rows that
// cannot be decoded wrap shop.ErrDataFormat.
func (r *ShopRepository) Records(ctx context.Context) ([]shop.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, owner, location, x, y, plane
		FROM shops ORDER BY position ASC`)
	if err != nil {
		return nil, shop.Unavailable(fmt.Errorf("listing shops: %w", err))
	}
	defer rows.Close()

	records := make([]shop.Record, 0)
	byID := make(map[string]int)
	for rows.Next() {
		var (
			rec   shop.Record
			owner *string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &owner, &rec.Location, &rec.X, &rec.Y, &rec.Plane); err != nil {
			return nil, shop.Malformed(fmt.Errorf("scanning shop row: %w", err))
		}
		if owner != nil {
			rec.Owner = *owner
		}
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, shop.Unavailable(fmt.Errorf("listing shops: %w", err))
	}

	items, err := r.db.Query(ctx, `
		SELECT i.shop_id, i.item_id, i.name, i.stock, i.price
		FROM shop_items i JOIN shops s ON s.id = i.shop_id
		ORDER BY s.position ASC, i.position ASC`)
	if err != nil {
		return nil, shop.Unavailable(fmt.Errorf("listing shop items: %w", err))
	}
	defer items.Close()

	for items.Next() {
		var (
			shopID string
			it     shop.ShopItem
		)
		if err := items.Scan(&shopID, &it.ItemID, &it.Name, &it.Stock, &it.Price); err != nil {
			return nil, shop.Malformed(fmt.Errorf("scanning shop item row: %w", err))
		}
		idx, ok := byID[shopID]
		if !ok {
			return nil, shop.Malformed(fmt.Errorf("item %q references unknown shop %q", it.Name, shopID))
		}
		records[idx].Items = append(records[idx].Items, it)
	}
	if err := items.Err(); err != nil {
		return nil, shop.Unavailable(fmt.Errorf("listing shop items: %w", err))
	}
	return records, nil
}

// ReplaceAll swaps the stored catalog for records in a single transaction.
// Record order becomes catalog order.
//
// Postcondition: invalid records or repeated IDs yield an error wrapping
// shop.ErrDataFormat before anything is written. On any error the stored
// catalog is unchanged.
func (r *ShopRepository) ReplaceAll(ctx context.Context, records []shop.Record) error {
	if _, err := shop.Build(records); err != nil {
		return err
	}

	shopRows := make([][]any, 0, len(records))
	var itemRows [][]any
	for pos, rec := range records {
		var owner *string
		if rec.Owner != "" {
			owner = &rec.Owner
		}
		shopRows = append(shopRows, []any{rec.ID, pos, rec.Name, owner, rec.Location, rec.X, rec.Y, rec.Plane})
		for ipos, it := range rec.Items {
			itemRows = append(itemRows, []any{rec.ID, ipos, it.ItemID, it.Name, it.Stock, it.Price})
		}
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM shop_items`); err != nil {
			return fmt.Errorf("clearing shop items: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM shops`); err != nil {
			return fmt.Errorf("clearing shops: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"shops"},
			[]string{"id", "position", "name", "owner", "location", "x", "y", "plane"},
			pgx.CopyFromRows(shopRows),
		); err != nil {
			return fmt.Errorf("copying shops: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"shop_items"},
			[]string{"shop_id", "position", "item_id", "name", "stock", "price"},
			pgx.CopyFromRows(itemRows),
		); err != nil {
			return fmt.Errorf("copying shop items: %w", err)
		}
		return nil
	})
}

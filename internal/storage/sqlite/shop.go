// Package sqlite stores the shop catalog in a single SQLite file using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/objtrack/internal/game/shop"
)

// ShopStore reads and replaces a shop catalog held in a SQLite file.
// It implements shop.Source.
type ShopStore struct {
	db   *sql.DB
	path string
}

// Open opens an existing catalog database.
//
// Postcondition: a missing file yields an error wrapping shop.ErrDataUnavailable.
func Open(path string) (*ShopStore, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shop.Unavailable(fmt.Errorf("catalog database %s: %w", path, err))
		}
		return nil, shop.Unavailable(err)
	}
	return open(path)
}

// Create opens path, creating the file, its directory and the schema as needed.
func Create(path string) (*ShopStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(s.db); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return s, nil
}

func open(path string) (*ShopStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, shop.Unavailable(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, shop.Unavailable(fmt.Errorf("configuring %s: %w", path, err))
	}
	return &ShopStore{db: db, path: path}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS shops (
			id        TEXT    PRIMARY KEY,
			position  INTEGER NOT NULL UNIQUE,
			name      TEXT    NOT NULL,
			owner     TEXT,
			location  TEXT    NOT NULL,
			x         INTEGER,
			y         INTEGER,
			plane     INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS shop_items (
			shop_id   TEXT    NOT NULL REFERENCES shops (id) ON DELETE CASCADE,
			position  INTEGER NOT NULL,
			item_id   INTEGER NOT NULL,
			name      TEXT    NOT NULL,
			stock     INTEGER NOT NULL CHECK (stock >= -1),
			price     INTEGER NOT NULL CHECK (price >= 0),
			PRIMARY KEY (shop_id, position)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the database path.
func (s *ShopStore) Name() string {
	return s.path
}

// Close releases the database handle.
func (s *ShopStore) Close() error {
	return s.db.Close()
}

// Records returns every stored shop with its items, both in catalog order.
//
// Postcondition: query failures, including a database without the catalog
// tables, wrap shop.ErrDataUnavailable; undecodable rows wrap shop.ErrDataFormat.
func (s *ShopStore) Records(ctx context.Context) ([]shop.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
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
			rec      shop.Record
			owner    sql.NullString
			x, y, pl sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &owner, &rec.Location, &x, &y, &pl); err != nil {
			return nil, shop.Malformed(fmt.Errorf("scanning shop row: %w", err))
		}
		rec.Owner = owner.String
		rec.X, rec.Y, rec.Plane = intOrNil(x), intOrNil(y), intOrNil(pl)
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, shop.Unavailable(fmt.Errorf("listing shops: %w", err))
	}

	items, err := s.db.QueryContext(ctx, `
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
func (s *ShopStore) ReplaceAll(ctx context.Context, records []shop.Record) error {
	if _, err := shop.Build(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning catalog replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shop_items`); err != nil {
		return fmt.Errorf("clearing shop items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shops`); err != nil {
		return fmt.Errorf("clearing shops: %w", err)
	}

	shopStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shops (id, position, name, owner, location, x, y, plane)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing shop insert: %w", err)
	}
	defer shopStmt.Close()
	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shop_items (shop_id, position, item_id, name, stock, price)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing item insert: %w", err)
	}
	defer itemStmt.Close()

	for pos, rec := range records {
		owner := sql.NullString{String: rec.Owner, Valid: rec.Owner != ""}
		if _, err := shopStmt.ExecContext(ctx, rec.ID, pos, rec.Name, owner, rec.Location,
			nullInt(rec.X), nullInt(rec.Y), nullInt(rec.Plane)); err != nil {
			return fmt.Errorf("inserting shop %q: %w", rec.ID, err)
		}
		for ipos, it := range rec.Items {
			if _, err := itemStmt.ExecContext(ctx, rec.ID, ipos, it.ItemID, it.Name, it.Stock, it.Price); err != nil {
				return fmt.Errorf("inserting item %q of shop %q: %w", it.Name, rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog replace: %w", err)
	}
	return nil
}

func intOrNil(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// Package sqlite implements bestiary.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

const driverName = "sqlite"

// Store is a bestiary.Store backed by one SQLite file.
type Store struct {
	db     *sql.DB
	tables bestiary.TableNames
}

var (
	_ bestiary.Store = (*Store)(nil)
	_ bestiary.Tx    = (*Tx)(nil)
)

// Open opens the database at path with foreign keys enforced. The file must
// already hold the reference tables.
func Open(ctx context.Context, path string, tables bestiary.TableNames) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required: %w", bestiary.ErrInvalidConfig)
	}
	cleanPath := filepath.Clean(path)
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cleanPath)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db %q: %v: %w", cleanPath, err, bestiary.ErrConnectionFailed)
	}
	return &Store{db: db, tables: tables.WithDefaults()}, nil
}

// DB exposes the underlying handle for setup outside an import.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Begin(ctx context.Context) (bestiary.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", describe(err))
	}
	return &Tx{tx: tx, tables: s.tables}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tx is one import transaction.
type Tx struct {
	tx     *sql.Tx
	tables bestiary.TableNames
}

// ListReferences reads every (slug, id) pair of a reference table.
func (t *Tx) ListReferences(ctx context.Context, category bestiary.Category) ([]bestiary.Reference, error) {
	table, err := t.tables.For(category)
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.QueryContext(ctx, "SELECT slug, id FROM "+QuoteTable(table)+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, describe(err))
	}
	defer rows.Close()

	var refs []bestiary.Reference
	for rows.Next() {
		var r bestiary.Reference
		if err := rows.Scan(&r.Slug, &r.ID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, describe(err))
	}
	return refs, nil
}

// UpsertCreatures merges creatures into the creature table by slug. Rows whose
// slug already exists before the statement are counted as updates.
func (t *Tx) UpsertCreatures(ctx context.Context, creatures []bestiary.Creature) (bestiary.UpsertResult, error) {
	var result bestiary.UpsertResult
	table := t.tables.Creature

	for _, chunk := range Chunk(creatures, MaxRowsPerStatement) {
		slugs := make([]any, len(chunk))
		for i, c := range chunk {
			slugs[i] = c.Slug
		}
		var existing int64
		if err := t.tx.QueryRowContext(ctx, buildExisting(table, len(chunk)), slugs...).Scan(&existing); err != nil {
			return bestiary.UpsertResult{}, fmt.Errorf("count existing %s: %w", table, describe(err))
		}

		args, err := upsertArgs(chunk)
		if err != nil {
			return bestiary.UpsertResult{}, err
		}
		if _, err := t.tx.ExecContext(ctx, BuildUpsert(table, len(chunk)), args...); err != nil {
			return bestiary.UpsertResult{}, fmt.Errorf("upsert %s: %w", table, describe(err))
		}

		result.Updated += existing
		result.Inserted += int64(len(chunk)) - existing
	}
	return result, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", describe(err))
	}
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", describe(err))
	}
	return nil
}

func upsertArgs(chunk []bestiary.Creature) ([]any, error) {
	args := make([]any, 0, len(chunk)*len(Columns))
	for _, c := range chunk {
		sources := c.SourceIDs
		if sources == nil {
			sources = []int64{}
		}
		encoded, err := json.Marshal(sources)
		if err != nil {
			return nil, fmt.Errorf("encode source ids of %s: %w", c.Slug, err)
		}
		args = append(args,
			c.Slug, c.Name, c.Description, c.BattleSprite,
			c.Health, c.Attack, c.Intelligence, c.Defense, c.Speed,
			c.KlassID, c.RaceID, c.TraitID, string(encoded),
		)
	}
	return args, nil
}

// describe names the constraint class of a SQLite error.
func describe(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("foreign key violation: %w", err)
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("unique violation: %w", err)
	case sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
		return fmt.Errorf("not-null violation: %w", err)
	case sqlite3lib.SQLITE_BUSY:
		return fmt.Errorf("database is locked: %w", err)
	}
	return err
}

// Package postgres implements bestiary.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// DB is the part of a pool the store needs. *pgxpool.Pool satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is a bestiary.Store backed by PostgreSQL.
type Store struct {
	db     DB
	tables bestiary.TableNames
	close  func() error
}

// Compile-time interface checks.
var (
	_ bestiary.Store = (*Store)(nil)
	_ bestiary.Tx    = (*Tx)(nil)
)

// New creates a Store over db. closer runs on Close and may be nil.
func New(db DB, tables bestiary.TableNames, closer func() error) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Store{db: db, tables: tables.WithDefaults(), close: closer}
}

// NewFromPool creates a Store that closes pool, then extra, on Close.
func NewFromPool(pool *pgxpool.Pool, tables bestiary.TableNames, extra func() error) *Store {
	return New(pool, tables, func() error {
		pool.Close()
		if extra != nil {
			return extra()
		}
		return nil
	})
}

// Begin starts the import transaction with the server's default isolation level.
func (s *Store) Begin(ctx context.Context) (bestiary.Tx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", describe(err))
	}
	return &Tx{tx: tx, tables: s.tables}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Tx is one import transaction.
type Tx struct {
	tx     pgx.Tx
	tables bestiary.TableNames
}

// ListReferences reads every (slug, id) pair of a reference table.
func (t *Tx) ListReferences(ctx context.Context, category bestiary.Category) ([]bestiary.Reference, error) {
	table, err := t.tables.For(category)
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx, "SELECT slug, id FROM "+QuoteTable(table)+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, describe(err))
	}
	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (bestiary.Reference, error) {
		var r bestiary.Reference
		err := row.Scan(&r.Slug, &r.ID)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, describe(err))
	}
	return refs, nil
}

// UpsertCreatures merges creatures into the creature table by slug. Batches
// larger than the bind-parameter limit are split across statements of the
// same transaction.
func (t *Tx) UpsertCreatures(ctx context.Context, creatures []bestiary.Creature) (bestiary.UpsertResult, error) {
	var result bestiary.UpsertResult

	for _, chunk := range Chunk(creatures, MaxRowsPerStatement) {
		query := BuildUpsert(t.tables.Creature, len(chunk))
		rows, err := t.tx.Query(ctx, query, upsertArgs(chunk)...)
		if err != nil {
			return bestiary.UpsertResult{}, fmt.Errorf("upsert %s: %w", t.tables.Creature, describe(err))
		}
		inserted, err := pgx.CollectRows(rows, pgx.RowTo[bool])
		if err != nil {
			return bestiary.UpsertResult{}, fmt.Errorf("upsert %s: %w", t.tables.Creature, describe(err))
		}
		for _, ins := range inserted {
			if ins {
				result.Inserted++
			} else {
				result.Updated++
			}
		}
	}
	return result, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", describe(err))
	}
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", describe(err))
	}
	return nil
}

func upsertArgs(chunk []bestiary.Creature) []any {
	args := make([]any, 0, len(chunk)*len(Columns))
	for _, c := range chunk {
		sources := c.SourceIDs
		if sources == nil {
			sources = []int64{}
		}
		args = append(args,
			c.Slug, c.Name, c.Description, c.BattleSprite,
			c.Health, c.Attack, c.Intelligence, c.Defense, c.Speed,
			c.KlassID, c.RaceID, c.TraitID, sources,
		)
	}
	return args
}

// describe adds the SQLSTATE and detail of a server error to its message.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	msg := fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	if pgErr.Detail != "" {
		msg += ": " + pgErr.Detail
	}
	if pgErr.TableName != "" && !strings.Contains(msg, pgErr.TableName) {
		msg += " [table " + pgErr.TableName + "]"
	}
	return fmt.Errorf("%s: %w", msg, err)
}

package bestiary

import "context"

// Store opens transactions against the database holding the reference and creature tables.
type Store interface {
	// Begin starts the single transaction an import runs in.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the underlying connection pool or file handle.
	Close() error
}

// Tx is one import transaction. Nothing is visible to other sessions until Commit.
type Tx interface {
	// ListReferences returns every (slug, id) pair of the given category.
	ListReferences(ctx context.Context, category Category) ([]Reference, error)

	// UpsertCreatures inserts new creatures and overwrites the mutable columns of
	// existing ones, matched by slug. An empty batch executes no statement.
	UpsertCreatures(ctx context.Context, creatures []Creature) (UpsertResult, error)

	Commit(ctx context.Context) error

	// Rollback aborts the transaction. Calling it after Commit is a no-op.
	Rollback(ctx context.Context) error
}

// ReferenceReader is the part of Tx the reference index builder needs.
type ReferenceReader interface {
	ListReferences(ctx context.Context, category Category) ([]Reference, error)
}

package services

import (
	"context"
	"errors"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// memStore is an in-memory bestiary.Store. Committed creatures live in
// creatures; a transaction works on a copy.
type memStore struct {
	refs      map[bestiary.Category][]bestiary.Reference
	creatures map[string]bestiary.Creature

	beginErr  error
	listErr   error
	upsertErr error
	commitErr error

	begun, commits, rollbacks int
	closed                    bool
}

func newMemStore() *memStore {
	return &memStore{
		refs: map[bestiary.Category][]bestiary.Reference{
			bestiary.CategoryKlass:  {{Slug: "fire", ID: 1}},
			bestiary.CategoryRace:   {{Slug: "dragon", ID: 2}},
			bestiary.CategoryTrait:  {{Slug: "brave", ID: 3}},
			bestiary.CategorySource: {{Slug: "book-a", ID: 4}, {Slug: "book-b", ID: 5}},
		},
		creatures: map[string]bestiary.Creature{},
	}
}

func (m *memStore) opener() StoreOpener {
	return func(context.Context, *bestiary.ImportConfig, bestiary.Logger) (bestiary.Store, error) {
		return m, nil
	}
}

func (m *memStore) Begin(context.Context) (bestiary.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.begun++
	pending := make(map[string]bestiary.Creature, len(m.creatures))
	for k, v := range m.creatures {
		pending[k] = v
	}
	return &memTx{store: m, pending: pending}, nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

type memTx struct {
	store   *memStore
	pending map[string]bestiary.Creature
	done    bool
}

func (t *memTx) ListReferences(_ context.Context, c bestiary.Category) ([]bestiary.Reference, error) {
	if t.store.listErr != nil {
		return nil, t.store.listErr
	}
	return t.store.refs[c], nil
}

func (t *memTx) UpsertCreatures(_ context.Context, creatures []bestiary.Creature) (bestiary.UpsertResult, error) {
	if t.store.upsertErr != nil {
		return bestiary.UpsertResult{}, t.store.upsertErr
	}
	var res bestiary.UpsertResult
	for _, c := range creatures {
		if _, ok := t.pending[c.Slug]; ok {
			res.Updated++
		} else {
			res.Inserted++
		}
		t.pending[c.Slug] = c
	}
	return res, nil
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.done = true
	t.store.commits++
	t.store.creatures = t.pending
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.rollbacks++
	return nil
}

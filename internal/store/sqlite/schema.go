package sqlite

import (
	"fmt"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Schema returns DDL for the tables an import reads and writes. source_ids
// is stored as a JSON array. The importer never runs it.
func Schema(tables bestiary.TableNames) string {
	tables = tables.WithDefaults()
	ref := func(name string) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id   INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT ''
);
`, QuoteTable(name))
	}

	return ref(tables.Klass) + ref(tables.Race) + ref(tables.Source) + ref(tables.Trait) +
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id            INTEGER PRIMARY KEY,
    slug          TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    battle_sprite TEXT NOT NULL DEFAULT '',
    health        INTEGER NOT NULL,
    attack        INTEGER NOT NULL,
    intelligence  INTEGER NOT NULL,
    defense       INTEGER NOT NULL,
    speed         INTEGER NOT NULL,
    klass_id      INTEGER NOT NULL REFERENCES %s (id),
    race_id       INTEGER NOT NULL REFERENCES %s (id),
    trait_id      INTEGER NOT NULL REFERENCES %s (id),
    source_ids    TEXT NOT NULL DEFAULT '[]',
    created_at    TEXT NOT NULL DEFAULT (%s),
    updated_at    TEXT NOT NULL DEFAULT (%s)
);
`, QuoteTable(tables.Creature), QuoteTable(tables.Klass), QuoteTable(tables.Race), QuoteTable(tables.Trait), nowUTC, nowUTC)
}

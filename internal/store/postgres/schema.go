package postgres

import (
	"fmt"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Schema returns DDL for the tables an import reads and writes. The importer
// never runs it; tests and local setups do.
func Schema(tables bestiary.TableNames) string {
	tables = tables.WithDefaults()
	ref := func(name string) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id   BIGSERIAL PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT ''
);
`, QuoteTable(name))
	}

	return ref(tables.Klass) + ref(tables.Race) + ref(tables.Source) + ref(tables.Trait) +
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id            BIGSERIAL PRIMARY KEY,
    slug          TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    battle_sprite TEXT NOT NULL DEFAULT '',
    health        INTEGER NOT NULL,
    attack        INTEGER NOT NULL,
    intelligence  INTEGER NOT NULL,
    defense       INTEGER NOT NULL,
    speed         INTEGER NOT NULL,
    klass_id      BIGINT NOT NULL REFERENCES %s (id),
    race_id       BIGINT NOT NULL REFERENCES %s (id),
    trait_id      BIGINT NOT NULL REFERENCES %s (id),
    source_ids    BIGINT[] NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`, QuoteTable(tables.Creature), QuoteTable(tables.Klass), QuoteTable(tables.Race), QuoteTable(tables.Trait))
}

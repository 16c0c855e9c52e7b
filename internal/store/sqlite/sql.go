package sqlite

import (
	"strings"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Columns written by the upsert, in bind order. updated_at is set from the
// SQLite clock.
var Columns = []string{
	"slug", "name", "description", "battle_sprite",
	"health", "attack", "intelligence", "defense", "speed",
	"klass_id", "race_id", "trait_id", "source_ids",
}

// maxBindParams is SQLITE_MAX_VARIABLE_NUMBER for SQLite 3.32 and later.
const maxBindParams = 32766

// MaxRowsPerStatement is the largest batch one upsert statement can bind.
var MaxRowsPerStatement = maxBindParams / len(Columns)

const nowUTC = "strftime('%Y-%m-%dT%H:%M:%fZ', 'now')"

// QuoteTable quotes a possibly schema-qualified table name.
func QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// BuildUpsert returns the INSERT ... ON CONFLICT(slug) DO UPDATE statement for n rows.
func BuildUpsert(table string, n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(QuoteTable(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(Columns, ", "))
	b.WriteString(", updated_at) VALUES ")

	row := "(" + strings.Repeat("?, ", len(Columns)) + nowUTC + ")"
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}

	b.WriteString(" ON CONFLICT(slug) DO UPDATE SET ")
	for _, col := range Columns[1:] {
		b.WriteString(col)
		b.WriteString(" = excluded.")
		b.WriteString(col)
		b.WriteString(", ")
	}
	b.WriteString("updated_at = excluded.updated_at")
	return b.String()
}

// buildExisting counts how many of n slugs already exist in table.
func buildExisting(table string, n int) string {
	return "SELECT count(*) FROM " + QuoteTable(table) +
		" WHERE slug IN (" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

// Chunk splits creatures into consecutive batches of at most size rows.
func Chunk(creatures []bestiary.Creature, size int) [][]bestiary.Creature {
	if size <= 0 {
		size = 1
	}
	var out [][]bestiary.Creature
	for start := 0; start < len(creatures); start += size {
		end := min(start+size, len(creatures))
		out = append(out, creatures[start:end])
	}
	return out
}

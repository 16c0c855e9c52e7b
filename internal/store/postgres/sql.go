package postgres

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Columns written by the upsert, in bind order. updated_at is set by the server.
var Columns = []string{
	"slug", "name", "description", "battle_sprite",
	"health", "attack", "intelligence", "defense", "speed",
	"klass_id", "race_id", "trait_id", "source_ids",
}

// maxBindParams is PostgreSQL's limit on parameters per statement.
const maxBindParams = 65535

// MaxRowsPerStatement is the largest batch one upsert statement can bind.
var MaxRowsPerStatement = maxBindParams / len(Columns)

// QuoteTable quotes a possibly schema-qualified table name.
func QuoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// BuildUpsert returns the INSERT ... ON CONFLICT (slug) DO UPDATE statement
// for n rows. Each returned row reports whether it was freshly inserted.
func BuildUpsert(table string, n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(QuoteTable(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(Columns, ", "))
	b.WriteString(", updated_at) VALUES ")

	p := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for range Columns {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(p))
			b.WriteString(", ")
			p++
		}
		b.WriteString("now())")
	}

	b.WriteString(" ON CONFLICT (slug) DO UPDATE SET ")
	for _, col := range Columns[1:] {
		b.WriteString(col)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(col)
		b.WriteString(", ")
	}
	b.WriteString("updated_at = now() RETURNING (xmax = 0) AS inserted")
	return b.String()
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

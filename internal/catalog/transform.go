package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Columns the transformer reads from every creature row. Anything else is ignored.
const (
	FieldName         = "name"
	FieldHealth       = "health"
	FieldAttack       = "attack"
	FieldIntelligence = "intelligence"
	FieldDefense      = "defense"
	FieldSpeed        = "speed"
	FieldKlass        = "klass"
	FieldRace         = "race"
	FieldSources      = "sources"
	FieldTrait        = "trait"
	FieldBattleSprite = "battle_sprite"
)

// RequiredFields lists the columns every creature row must carry.
var RequiredFields = []string{
	FieldName, FieldHealth, FieldAttack, FieldIntelligence, FieldDefense, FieldSpeed,
	FieldKlass, FieldRace, FieldSources, FieldTrait, FieldBattleSprite,
}

// Transformer resolves creature rows into store records.
type Transformer struct {
	refs    Indexes
	bios    Bios
	sprites SpriteLoader
	file    string
}

// NewTransformer creates a Transformer. file labels MissingFieldErrors.
func NewTransformer(refs Indexes, bios Bios, sprites SpriteLoader, file string) *Transformer {
	if sprites == nil {
		panic("sprites cannot be nil")
	}
	if file == "" {
		file = bestiary.DefaultCreaturesFile
	}
	return &Transformer{refs: refs, bios: bios, sprites: sprites, file: file}
}

// Transform turns one row into a Creature. The row's slug is always derived
// from its name.
func (t *Transformer) Transform(row Row) (bestiary.Creature, error) {
	f, err := t.extract(row)
	if err != nil {
		return bestiary.Creature{}, err
	}

	c := bestiary.Creature{
		Slug:        Slugify(f[FieldName]),
		Name:        f[FieldName],
		Description: t.bios.Lookup(f[FieldName]),
	}

	stats := []struct {
		field string
		dst   *int32
	}{
		{FieldHealth, &c.Health},
		{FieldAttack, &c.Attack},
		{FieldIntelligence, &c.Intelligence},
		{FieldDefense, &c.Defense},
		{FieldSpeed, &c.Speed},
	}
	for _, s := range stats {
		v, err := parseStat(f[s.field])
		if err != nil {
			return bestiary.Creature{}, &InvalidFieldError{Line: row.Line, Field: s.field, Value: f[s.field], Err: err}
		}
		*s.dst = v
	}

	if c.KlassID, err = t.resolve(t.refs.Klass, f[FieldKlass], row.Line); err != nil {
		return bestiary.Creature{}, err
	}
	if c.RaceID, err = t.resolve(t.refs.Race, f[FieldRace], row.Line); err != nil {
		return bestiary.Creature{}, err
	}
	if c.TraitID, err = t.resolve(t.refs.Trait, f[FieldTrait], row.Line); err != nil {
		return bestiary.Creature{}, err
	}
	if c.SourceIDs, err = t.resolveSources(f[FieldSources], row.Line); err != nil {
		return bestiary.Creature{}, err
	}

	sprite, err := t.sprites.Load(f[FieldBattleSprite])
	if err != nil {
		var se *SpriteError
		if errors.As(err, &se) {
			se.Line = row.Line
			return bestiary.Creature{}, se
		}
		return bestiary.Creature{}, &SpriteError{Name: f[FieldBattleSprite], Line: row.Line, Err: err}
	}
	c.BattleSprite = sprite

	return c, nil
}

// TransformAll transforms rows in order and rejects two rows sharing a slug.
func (t *Transformer) TransformAll(rows []Row) ([]bestiary.Creature, error) {
	out := make([]bestiary.Creature, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		c, err := t.Transform(row)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[c.Slug]; dup {
			return nil, &DuplicateSlugError{Slug: c.Slug, FirstLine: first, Line: row.Line}
		}
		seen[c.Slug] = row.Line
		out = append(out, c)
	}
	return out, nil
}

func (t *Transformer) extract(row Row) (map[string]string, error) {
	f := make(map[string]string, len(RequiredFields))
	for _, key := range RequiredFields {
		v, ok := row.Get(key)
		if !ok {
			return nil, &MissingFieldError{File: t.file, Line: row.Line, Field: key}
		}
		f[key] = v
	}
	return f, nil
}

func (t *Transformer) resolve(idx Index, name string, line int) (int64, error) {
	id, err := idx.Resolve(name)
	if err != nil {
		var ue *UnknownReferenceError
		if errors.As(err, &ue) {
			ue.Line = line
		}
		return 0, err
	}
	return id, nil
}

func (t *Transformer) resolveSources(list string, line int) ([]int64, error) {
	parts := strings.Split(list, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := t.resolve(t.refs.Source, strings.TrimSpace(p), line)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseStat(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			return 0, ne.Err
		}
		return 0, fmt.Errorf("parse integer: %w", err)
	}
	return int32(v), nil
}

package catalog

import (
	"context"
	"fmt"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Index maps the slugs of one reference category to their ids.
type Index struct {
	category bestiary.Category
	ids      map[string]int64
}

// BuildIndex indexes refs by slug. A later row with the same slug wins.
func BuildIndex(category bestiary.Category, refs []bestiary.Reference) Index {
	ids := make(map[string]int64, len(refs))
	for _, r := range refs {
		ids[r.Slug] = r.ID
	}
	return Index{category: category, ids: ids}
}

// Category returns the reference category the index was built for.
func (x Index) Category() bestiary.Category { return x.category }

// Len returns the number of indexed slugs.
func (x Index) Len() int { return len(x.ids) }

// Resolve slugifies name and returns the matching id.
func (x Index) Resolve(name string) (int64, error) {
	slug := Slugify(name)
	id, ok := x.ids[slug]
	if !ok {
		return 0, &UnknownReferenceError{Category: x.category, Name: name, Slug: slug}
	}
	return id, nil
}

// Indexes holds one Index per reference category.
type Indexes struct {
	Klass  Index
	Race   Index
	Source Index
	Trait  Index
}

// LoadIndexes reads every reference category and builds its index.
func LoadIndexes(ctx context.Context, r bestiary.ReferenceReader) (Indexes, error) {
	var idx Indexes
	for _, c := range bestiary.Categories() {
		refs, err := r.ListReferences(ctx, c)
		if err != nil {
			return Indexes{}, fmt.Errorf("load %s references: %w", c, err)
		}
		built := BuildIndex(c, refs)
		switch c {
		case bestiary.CategoryKlass:
			idx.Klass = built
		case bestiary.CategoryRace:
			idx.Race = built
		case bestiary.CategorySource:
			idx.Source = built
		case bestiary.CategoryTrait:
			idx.Trait = built
		}
	}
	return idx, nil
}

// Package catalog holds the in-memory cheatsheet catalog: immutable
// snapshots indexed by category and slug, the store that swaps them on
// reload, and the list, search and featured queries over them.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/model"
)

var (
	// ErrNotFound is returned when a category or cheatsheet does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownFilter is returned for a featured preset that does not exist.
	ErrUnknownFilter = errors.New(constants.ResponseUnknownFilter)
	// ErrInvalidQuery is returned for list parameters that cannot be applied.
	ErrInvalidQuery = errors.New("invalid query")
)

// Catalog is an immutable snapshot of the library. It must not be modified
// after it is handed to a Store.
type Catalog struct {
	categories []model.Category
	sheets     []*model.Cheatsheet
	byCategory map[string][]*model.Cheatsheet
	bySlug     map[string]*model.Cheatsheet
	generation uint64
}

// New indexes sheets in the given order. Sheets whose category is not in
// categories, and sheets whose key repeats an earlier one after case
// folding, are left out and returned as skips.
func New(categories []model.Category, sheets []*model.Cheatsheet) (*Catalog, []Skip) {
	c := &Catalog{
		categories: make([]model.Category, len(categories)),
		byCategory: make(map[string][]*model.Cheatsheet, len(categories)),
		bySlug:     make(map[string]*model.Cheatsheet, len(sheets)),
	}
	copy(c.categories, categories)
	for i := range c.categories {
		c.categories[i].Order = i
		c.byCategory[fold(c.categories[i].Name)] = nil
	}

	var skips []Skip
	for _, s := range sheets {
		cat := fold(s.Category)
		if _, ok := c.byCategory[cat]; !ok {
			skips = append(skips, Skip{Path: sourceOf(s), Reason: "unknown category " + s.Category})
			continue
		}
		key := slugKey(s.Category, s.Slug)
		if first, dup := c.bySlug[key]; dup {
			skips = append(skips, Skip{Path: sourceOf(s), Reason: "duplicate of " + sourceOf(first)})
			continue
		}
		c.bySlug[key] = s
		c.byCategory[cat] = append(c.byCategory[cat], s)
		c.sheets = append(c.sheets, s)
	}
	return c, skips
}

// Generation is the store generation this snapshot was published as.
func (c *Catalog) Generation() uint64 {
	return c.generation
}

// Len is the number of cheatsheets.
func (c *Catalog) Len() int {
	return len(c.sheets)
}

// Categories returns the categories in display order.
func (c *Catalog) Categories() []model.Category {
	out := make([]model.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category looks a category up case-insensitively.
func (c *Catalog) Category(name string) (model.Category, error) {
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, nil
		}
	}
	return model.Category{}, ErrNotFound
}

// CategorySummaries pairs every category with its loaded cheatsheet count.
func (c *Catalog) CategorySummaries() []model.CategorySummary {
	out := make([]model.CategorySummary, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, model.CategorySummary{
			Category:  cat,
			ToolCount: len(c.byCategory[fold(cat.Name)]),
		})
	}
	return out
}

// All returns every cheatsheet in catalog order. The slice is a copy; the
// cheatsheets are shared and must be treated as read-only.
func (c *Catalog) All() []*model.Cheatsheet {
	out := make([]*model.Cheatsheet, len(c.sheets))
	copy(out, c.sheets)
	return out
}

// ByCategory returns the cheatsheets of one category in catalog order.
func (c *Catalog) ByCategory(name string) ([]*model.Cheatsheet, error) {
	sheets, ok := c.byCategory[fold(name)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]*model.Cheatsheet, len(sheets))
	copy(out, sheets)
	return out, nil
}

// Get looks a cheatsheet up by category and slug, ignoring case.
func (c *Catalog) Get(category, slug string) (*model.Cheatsheet, error) {
	s, ok := c.bySlug[slugKey(category, slug)]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Related returns up to n other cheatsheets from the same category, most
// popular first.
func (c *Catalog) Related(sheet *model.Cheatsheet, n int) []*model.Cheatsheet {
	siblings := c.byCategory[fold(sheet.Category)]
	out := make([]*model.Cheatsheet, 0, len(siblings))
	for _, s := range siblings {
		if !strings.EqualFold(s.Slug, sheet.Slug) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity > out[j].Popularity
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Metas strips the content from a list of cheatsheets.
func Metas(sheets []*model.Cheatsheet) []model.CheatsheetMeta {
	out := make([]model.CheatsheetMeta, len(sheets))
	for i, s := range sheets {
		out[i] = s.CheatsheetMeta
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func slugKey(category, slug string) string {
	return fold(category) + "/" + fold(slug)
}

func sourceOf(s *model.Cheatsheet) string {
	if s.Source != "" {
		return s.Source
	}
	return s.Key()
}

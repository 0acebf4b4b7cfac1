package catalog

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/model"
)

// ListQuery filters, sorts and paginates the catalog. Zero values mean
// "no filter" and the default page.
type ListQuery struct {
	Category   string `json:"category,omitempty"`
	Query      string `json:"q,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Tag        string `json:"tag,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Sort       string `json:"sort,omitempty"`
}

// Normalize clamps page and limit and trims the text fields.
func (q ListQuery) Normalize() ListQuery {
	q.Category = strings.TrimSpace(q.Category)
	q.Query = strings.TrimSpace(q.Query)
	q.Difficulty = strings.TrimSpace(q.Difficulty)
	q.Tag = strings.TrimSpace(q.Tag)
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	if q.Page < 1 {
		q.Page = constants.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = constants.DefaultLimit
	}
	if q.Limit > constants.MaxLimit {
		q.Limit = constants.MaxLimit
	}
	if q.Sort == "" {
		q.Sort = constants.SortCatalog
	}
	return q
}

// ValidSort reports whether s names a supported sort order.
func ValidSort(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", constants.SortCatalog, constants.SortPopularity, constants.SortTitle, constants.SortUpdated:
		return true
	}
	return false
}

// List applies q to the catalog and returns one page of metadata.
func (c *Catalog) List(q ListQuery) (model.Page[model.CheatsheetMeta], error) {
	q = q.Normalize()
	if !ValidSort(q.Sort) {
		return model.Page[model.CheatsheetMeta]{}, fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, q.Sort)
	}

	matched := c.filter(q)
	sortSheets(matched, q.Sort)
	return Paginate(Metas(matched), q.Page, q.Limit), nil
}

// Search returns every cheatsheet matching text, in catalog order. A
// positive limit caps the result.
func (c *Catalog) Search(text string, limit int) []model.CheatsheetMeta {
	matched := c.filter(ListQuery{Query: strings.TrimSpace(text)})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return Metas(matched)
}

func (c *Catalog) filter(q ListQuery) []*model.Cheatsheet {
	needle := strings.ToLower(q.Query)
	out := make([]*model.Cheatsheet, 0, len(c.sheets))
	for _, s := range c.sheets {
		if q.Category != "" && !strings.EqualFold(s.Category, q.Category) {
			continue
		}
		if q.Difficulty != "" && !strings.EqualFold(string(s.Difficulty), q.Difficulty) {
			continue
		}
		if q.Tag != "" && !hasTag(s, q.Tag) {
			continue
		}
		if needle != "" && !matchesText(s, needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// matchesText checks title, description, category and tags for needle,
// which must already be lower case.
func matchesText(s *model.Cheatsheet, needle string) bool {
	if strings.Contains(strings.ToLower(s.Title), needle) ||
		strings.Contains(strings.ToLower(s.Description), needle) ||
		strings.Contains(strings.ToLower(s.Category), needle) {
		return true
	}
	for _, t := range s.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func hasTag(s *model.Cheatsheet, tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func sortSheets(sheets []*model.Cheatsheet, order string) {
	switch order {
	case constants.SortPopularity:
		sort.SliceStable(sheets, func(i, j int) bool {
			return sheets[i].Popularity > sheets[j].Popularity
		})
	case constants.SortTitle:
		sort.SliceStable(sheets, func(i, j int) bool {
			return strings.ToLower(sheets[i].Title) < strings.ToLower(sheets[j].Title)
		})
	case constants.SortUpdated:
		sort.SliceStable(sheets, func(i, j int) bool {
			return sheets[i].UpdatedAt.After(sheets[j].UpdatedAt)
		})
	}
}

// Paginate slices items into the requested page. A page past the end is
// empty but still reports the totals.
func Paginate[T any](items []T, page, limit int) model.Page[T] {
	if page < 1 {
		page = constants.DefaultPage
	}
	if limit < 1 {
		limit = constants.DefaultLimit
	}
	total := len(items)
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return model.Page[T]{
		Items:      out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// FeaturedFilters lists the featured presets in home page order.
var FeaturedFilters = []string{
	constants.FeaturedPopular,
	constants.FeaturedLatest,
	constants.FeaturedGettingStarted,
	constants.FeaturedTrending,
	constants.FeaturedEnterprise,
	constants.FeaturedSecurity,
}

// Featured returns up to n cheatsheets for a home page preset. rng drives
// the "trending" shuffle; a nil rng uses the global source.
func (c *Catalog) Featured(filter string, n int, rng *rand.Rand) ([]model.CheatsheetMeta, error) {
	if n < 1 {
		n = constants.DefaultFeatured
	}
	picked := make([]*model.Cheatsheet, 0, len(c.sheets))
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case constants.FeaturedPopular:
		picked = append(picked, c.sheets...)
		sortSheets(picked, constants.SortPopularity)
	case constants.FeaturedLatest:
		picked = append(picked, c.sheets...)
		sortSheets(picked, constants.SortUpdated)
	case constants.FeaturedGettingStarted:
		picked = c.filter(ListQuery{Difficulty: string(model.Beginner)})
	case constants.FeaturedTrending:
		picked = append(picked, c.sheets...)
		shuffle := rand.Shuffle
		if rng != nil {
			shuffle = rng.Shuffle
		}
		shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	case constants.FeaturedEnterprise:
		picked = c.filter(ListQuery{Difficulty: string(model.Advanced)})
	case constants.FeaturedSecurity:
		picked = c.filter(ListQuery{Category: constants.SecurityCategory})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, filter)
	}
	if len(picked) > n {
		picked = picked[:n]
	}
	return Metas(picked), nil
}

package catalog

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaKeys(metas []model.CheatsheetMeta) []string {
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Key()
	}
	return out
}

func TestListQuery_Normalize(t *testing.T) {
	q := ListQuery{Page: -3, Limit: 0, Query: "  docker  "}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "docker", q.Query)
	assert.Equal(t, constants.SortCatalog, q.Sort)

	q = ListQuery{Limit: 5000}.Normalize()
	assert.Equal(t, constants.MaxLimit, q.Limit)
}

func TestList_Defaults(t *testing.T) {
	c, _ := loadTestCatalog(t)
	page, err := c.List(ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Items, 6)
}

func TestList_CategoryFilter(t *testing.T) {
	c, _ := loadTestCatalog(t)

	page, err := c.List(ListQuery{Category: "containerization"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{"Containerization/Helm", "Containerization/Kubernetes", "Containerization/docker"}, metaKeys(page.Items))

	page, err = c.List(ListQuery{Category: "Databases"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestList_TextQuery(t *testing.T) {
	c, _ := loadTestCatalog(t)

	cases := map[string][]string{
		"DOCKER":        {"Containerization/docker"},
		"about jen":     {"CI-CD/Jenkins"},
		"orchestration": {"Containerization/Kubernetes"},
		"security":      {"Security/Trivy"},
		"kubernetes":    {"Containerization/Helm", "Containerization/Kubernetes"},
		"no-such-thing": {},
		"   ":           {"CI-CD/GitHub-Actions", "CI-CD/Jenkins", "Containerization/Helm", "Containerization/Kubernetes", "Containerization/docker", "Security/Trivy"},
	}
	for q, want := range cases {
		t.Run(q, func(t *testing.T) {
			page, err := c.List(ListQuery{Query: q})
			require.NoError(t, err)
			assert.Equal(t, want, metaKeys(page.Items))
			assert.Equal(t, len(want), page.Total)
		})
	}
}

func TestList_DifficultyAndTag(t *testing.T) {
	c, _ := loadTestCatalog(t)

	page, err := c.List(ListQuery{Difficulty: "advanced"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Containerization/Kubernetes", "Security/Trivy"}, metaKeys(page.Items))

	page, err = c.List(ListQuery{Tag: "containers", Difficulty: "Beginner"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Containerization/docker"}, metaKeys(page.Items))
}

func TestList_Sort(t *testing.T) {
	c, _ := loadTestCatalog(t)

	page, err := c.List(ListQuery{Sort: "popularity", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Containerization/docker", "CI-CD/Jenkins", "Containerization/Kubernetes"}, metaKeys(page.Items))

	page, err = c.List(ListQuery{Sort: "title", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Containerization/docker", "CI-CD/GitHub-Actions"}, metaKeys(page.Items))

	page, err = c.List(ListQuery{Sort: "updated", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Security/Trivy", "Containerization/docker"}, metaKeys(page.Items))

	_, err = c.List(ListQuery{Sort: "random"})
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestList_Pagination(t *testing.T) {
	c, _ := loadTestCatalog(t)

	page, err := c.List(ListQuery{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []string{"Containerization/docker", "Security/Trivy"}, metaKeys(page.Items))

	page, err = c.List(ListQuery{Page: 9, Limit: 4})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 9, page.Page)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, p.Items)
	assert.Equal(t, 3, p.TotalPages)

	p = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, p.Items)

	p = Paginate([]int{}, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.NotNil(t, p.Items)

	p = Paginate(items, math.MaxInt, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, math.MaxInt, p.Page)
	assert.Equal(t, 1, p.TotalPages)

	p = Paginate(items, math.MaxInt/2+1, 2)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.TotalPages)
}

func TestList_HugePage(t *testing.T) {
	c, _ := loadTestCatalog(t)
	page, err := c.List(ListQuery{Page: math.MaxInt, Limit: constants.MaxLimit})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestSearch(t *testing.T) {
	c, _ := loadTestCatalog(t)
	assert.Equal(t, []string{"CI-CD/GitHub-Actions", "CI-CD/Jenkins"}, metaKeys(c.Search("ci/cd", 0)))
	assert.Len(t, c.Search("", 0), 6)
	assert.Len(t, c.Search("", 2), 2)
}

func TestFeatured(t *testing.T) {
	c, _ := loadTestCatalog(t)

	popular, err := c.Featured("popular", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Containerization/docker", "CI-CD/Jenkins"}, metaKeys(popular))

	latest, err := c.Featured("latest", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Security/Trivy"}, metaKeys(latest))

	beginner, err := c.Featured("getting-started", 6, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"CI-CD/GitHub-Actions", "CI-CD/Jenkins", "Containerization/docker"}, metaKeys(beginner))

	enterprise, err := c.Featured("enterprise", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Containerization/Kubernetes", "Security/Trivy"}, metaKeys(enterprise))

	security, err := c.Featured("Security", 6, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Security/Trivy"}, metaKeys(security))

	_, err = c.Featured("hot", 6, nil)
	assert.True(t, errors.Is(err, ErrUnknownFilter))
}

func TestFeatured_TrendingDeterministicWithSeed(t *testing.T) {
	c, _ := loadTestCatalog(t)
	before := keysOf(c)

	a, err := c.Featured("trending", 6, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := c.Featured("trending", 6, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, metaKeys(a), metaKeys(b))
	assert.ElementsMatch(t, before, metaKeys(a))

	assert.Equal(t, before, keysOf(c), "presets must not reorder the catalog")
}

func keysOf(c *Catalog) []string {
	return keys(c.All())
}

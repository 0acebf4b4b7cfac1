package catalog

import (
	"errors"
	"testing"

	"github.com/opsdeck/cheatsheets/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(sheets []*model.Cheatsheet) []string {
	out := make([]string, len(sheets))
	for i, s := range sheets {
		out[i] = s.Key()
	}
	return out
}

func TestLoad_OrderAndReport(t *testing.T) {
	c, report := loadTestCatalog(t)

	assert.Equal(t, []string{
		"CI-CD/GitHub-Actions",
		"CI-CD/Jenkins",
		"Containerization/Helm",
		"Containerization/Kubernetes",
		"Containerization/docker",
		"Security/Trivy",
	}, keys(c.All()))

	assert.Equal(t, 6, report.Loaded)
	assert.False(t, report.OK())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Security/broken.md", report.Skipped[0].Path)
	assert.Equal(t, []string{"Networking"}, report.MissingCategories)
}

func TestLoad_SourceAndModTime(t *testing.T) {
	c, _ := loadTestCatalog(t)
	s, err := c.Get("ci-cd", "jenkins")
	require.NoError(t, err)
	assert.Equal(t, "CI-CD/Jenkins.md", s.Source)
	assert.Equal(t, "Jenkins", s.Title)
	assert.Equal(t, []string{"CI/CD", "Automation"}, s.Tags)
}

func TestGet_CaseInsensitive(t *testing.T) {
	c, _ := loadTestCatalog(t)

	for _, tc := range [][2]string{
		{"Containerization", "docker"},
		{"containerization", "DOCKER"},
		{"CONTAINERIZATION", "Docker"},
	} {
		s, err := c.Get(tc[0], tc[1])
		require.NoError(t, err, tc)
		assert.Equal(t, "Containerization/docker", s.Key())
	}

	_, err := c.Get("Containerization", "podman")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.Get("Nope", "docker")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCategories(t *testing.T) {
	c, _ := loadTestCatalog(t)

	cats := c.Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, "CI-CD", cats[0].Name)
	assert.Equal(t, 3, cats[3].Order)

	cat, err := c.Category("security")
	require.NoError(t, err)
	assert.Equal(t, "Security", cat.Name)
	_, err = c.Category("Databases")
	assert.ErrorIs(t, err, ErrNotFound)

	sums := c.CategorySummaries()
	counts := map[string]int{}
	for _, s := range sums {
		counts[s.Name] = s.ToolCount
	}
	assert.Equal(t, map[string]int{"CI-CD": 2, "Containerization": 3, "Security": 1, "Networking": 0}, counts)
}

func TestByCategory(t *testing.T) {
	c, _ := loadTestCatalog(t)

	sheets, err := c.ByCategory("ci-cd")
	require.NoError(t, err)
	assert.Equal(t, []string{"CI-CD/GitHub-Actions", "CI-CD/Jenkins"}, keys(sheets))

	sheets, err = c.ByCategory("Networking")
	require.NoError(t, err)
	assert.Empty(t, sheets)

	_, err = c.ByCategory("Databases")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNew_DuplicatesFirstWins(t *testing.T) {
	first := &model.Cheatsheet{CheatsheetMeta: model.CheatsheetMeta{Category: "CI-CD", Slug: "Jenkins", Title: "first"}, Source: "a"}
	second := &model.Cheatsheet{CheatsheetMeta: model.CheatsheetMeta{Category: "ci-cd", Slug: "jenkins", Title: "second"}, Source: "b"}
	stray := &model.Cheatsheet{CheatsheetMeta: model.CheatsheetMeta{Category: "Databases", Slug: "postgres"}}

	c, skips := New(testCategories, []*model.Cheatsheet{first, second, stray})
	assert.Equal(t, 1, c.Len())
	s, err := c.Get("CI-CD", "Jenkins")
	require.NoError(t, err)
	assert.Equal(t, "first", s.Title)

	require.Len(t, skips, 2)
	assert.Equal(t, "b", skips[0].Path)
	assert.Contains(t, skips[0].Reason, "duplicate")
	assert.Equal(t, "Databases/postgres", skips[1].Path)
}

func TestRelated(t *testing.T) {
	c, _ := loadTestCatalog(t)
	helm, err := c.Get("Containerization", "Helm")
	require.NoError(t, err)

	related := c.Related(helm, 3)
	assert.Equal(t, []string{"Containerization/docker", "Containerization/Kubernetes"}, keys(related))

	assert.Len(t, c.Related(helm, 1), 1)

	trivy, _ := c.Get("Security", "Trivy")
	assert.Empty(t, c.Related(trivy, 3))
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, _ := loadTestCatalog(t)
	all := c.All()
	all[0] = nil
	assert.NotNil(t, c.All()[0])
}

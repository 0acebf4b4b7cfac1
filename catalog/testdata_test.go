package catalog

import (
	"context"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/opsdeck/cheatsheets/model"
	"github.com/stretchr/testify/require"
)

var testCategories = []model.Category{
	{Name: "CI-CD", Icon: "🔄"},
	{Name: "Containerization", Icon: "📦"},
	{Name: "Security", Icon: "🔒"},
	{Name: "Networking", Icon: "🌐"},
}

func sheetFile(title, difficulty string, popularity int, updated string, tags ...string) *fstest.MapFile {
	body := "---\ntitle: " + title + "\ndescription: About " + title + "\ndifficulty: " + difficulty +
		"\npopularity: " + strconv.Itoa(popularity) + "\nupdatedAt: \"" + updated + "\"\ntags:\n"
	for _, t := range tags {
		body += "  - " + t + "\n"
	}
	if len(tags) == 0 {
		body += "  []\n"
	}
	body += "---\n# " + title + "\n\n## Usage\n\n```bash\n" + title + " --help\n```\n"
	return &fstest.MapFile{Data: []byte(body), ModTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func testLibrary() fstest.MapFS {
	return fstest.MapFS{
		"CI-CD/Jenkins.md":               sheetFile("Jenkins", "Beginner", 95, "2024-11-02", "CI/CD", "Automation"),
		"CI-CD/GitHub-Actions.md":        sheetFile("GitHub Actions", "Beginner", 90, "2025-01-15", "CI/CD", "GitHub"),
		"CI-CD/notes.txt":                &fstest.MapFile{Data: []byte("ignored")},
		"Containerization/docker.md":     sheetFile("Docker", "Beginner", 98, "2025-02-01", "Containers"),
		"Containerization/Kubernetes.md": sheetFile("Kubernetes", "Advanced", 95, "2025-01-20", "Containers", "Orchestration"),
		"Containerization/Helm.md":       sheetFile("Helm", "Intermediate", 90, "2024-10-11", "Kubernetes"),
		"Security/Trivy.md":              sheetFile("Trivy", "Advanced", 83, "2025-02-10", "Security", "Scanning"),
		"Security/broken.md":             &fstest.MapFile{Data: []byte("---\ndifficulty: Wizard\n---\nbody")},
		"Security/nested/ignored.md":     sheetFile("Ignored", "Beginner", 1, "2024-01-01"),
		"Uncategorized/Stray.md":         sheetFile("Stray", "Beginner", 1, "2024-01-01"),
	}
}

func loadTestCatalog(t *testing.T) (*Catalog, *LoadReport) {
	t.Helper()
	c, report, err := NewFSLoader(testLibrary(), testCategories).Load(context.Background())
	require.NoError(t, err)
	return c, report
}

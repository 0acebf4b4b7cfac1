package api

import (
	"context"
	"math/rand"
	"testing"
	"testing/fstest"
	"time"

	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/event"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/storage"
	"github.com/stretchr/testify/require"
)

var testCategories = []model.Category{
	{Name: "CI-CD", Icon: "🔄", Description: "Pipelines"},
	{Name: "Containerization", Icon: "📦", Description: "Containers and orchestration"},
	{Name: "Security", Icon: "🔒", Description: "Scanning and secrets"},
}

func sheet(title, difficulty, popularity, updated, tags string) *fstest.MapFile {
	body := "---\ntitle: " + title +
		"\ndescription: All about " + title +
		"\ndifficulty: " + difficulty +
		"\npopularity: " + popularity +
		"\nupdatedAt: \"" + updated + "\"" +
		"\ntags: " + tags +
		"\n---\n# " + title + "\n\n## Basics\n\n```bash\n" + title + " --version\n```\n\n## Advanced\n\nMore.\n"
	return &fstest.MapFile{Data: []byte(body), ModTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func testLibrary() fstest.MapFS {
	return fstest.MapFS{
		"CI-CD/Jenkins.md":               sheet("Jenkins", "Beginner", "95", "2024-11-02", "[CI/CD, Automation]"),
		"Containerization/docker.md":     sheet("Docker", "Beginner", "98", "2025-02-01", "[Containers]"),
		"Containerization/Kubernetes.md": sheet("Kubernetes", "Advanced", "95", "2025-01-20", "[Containers, Orchestration]"),
		"Security/Trivy.md":              sheet("Trivy", "Intermediate", "83", "2025-02-10", "[Security, Scanning]"),
	}
}

type testEnv struct {
	svc  *Service
	deps *Dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bus := event.NewInProcEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	store := catalog.NewStore(catalog.NewFSLoader(testLibrary(), testCategories), bus)
	_, err := store.Reload(context.Background())
	require.NoError(t, err)

	deps := &Dependencies{
		Config:   config.Default(),
		Store:    store,
		Renderer: markdown.NewRenderer(time.Minute),
		Storage:  storage.NewMemoryStorage(),
		Bus:      bus,
	}
	return &testEnv{svc: NewService(deps, rand.New(rand.NewSource(1))), deps: deps}
}

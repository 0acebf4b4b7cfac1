package exporter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsdeck/cheatsheets/blob"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/content"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, _, err := catalog.NewFSLoader(content.Library(), catalog.DefaultCategories()).Load(context.Background())
	require.NoError(t, err)
	return c
}

func TestExport_WritesDocuments(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.NewFilesystemBlobStore(dir)
	require.NoError(t, err)
	c := embeddedCatalog(t)

	res, err := Export(context.Background(), c, store, nil)
	require.NoError(t, err)
	assert.Equal(t, c.Len(), res.Count)
	assert.Len(t, res.URLs, 2)

	data, err := os.ReadFile(filepath.Join(dir, constants.ExportMetadataFile))
	require.NoError(t, err)
	var meta map[string]model.CheatsheetMeta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Len(t, meta, c.Len())
	assert.Equal(t, "Docker", meta["Containerization/docker"].Title)
	assert.Contains(t, string(data), "\n  \"", "documents are indented")

	data, err = os.ReadFile(filepath.Join(dir, constants.ExportContentFile))
	require.NoError(t, err)
	var bodies map[string]string
	require.NoError(t, json.Unmarshal(data, &bodies))
	assert.Contains(t, bodies["Containerization/docker"], "docker run")
	assert.NotContains(t, bodies["Containerization/docker"], "popularity:", "content excludes frontmatter")

	_, err = os.Stat(filepath.Join(dir, constants.ExportHTMLFile))
	assert.True(t, os.IsNotExist(err))
}

func TestExport_Rendered(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.NewFilesystemBlobStore(dir)
	require.NoError(t, err)

	res, err := Export(context.Background(), embeddedCatalog(t), store, markdown.NewRenderer(0))
	require.NoError(t, err)
	assert.Len(t, res.URLs, 3)

	data, err := os.ReadFile(filepath.Join(dir, constants.ExportHTMLFile))
	require.NoError(t, err)
	var pages map[string]string
	require.NoError(t, json.Unmarshal(data, &pages))
	assert.Contains(t, pages["Containerization/docker"], `id="section-0"`)
}

func TestSnapshotLoader_RoundTrip(t *testing.T) {
	store, err := blob.NewFilesystemBlobStore(t.TempDir())
	require.NoError(t, err)
	original := embeddedCatalog(t)
	_, err = Export(context.Background(), original, store, nil)
	require.NoError(t, err)

	loaded, report, err := NewSnapshotLoader(store, catalog.DefaultCategories()).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, original.Len(), loaded.Len())

	want := original.All()
	got := loaded.All()
	for i := range want {
		assert.Equal(t, want[i].Key(), got[i].Key(), "catalog order survives the round trip")
		assert.Equal(t, want[i].Content, got[i].Content)
		assert.Equal(t, want[i].Tags, got[i].Tags)
		assert.True(t, want[i].UpdatedAt.Equal(got[i].UpdatedAt))
	}
	assert.Equal(t, original.CategorySummaries(), loaded.CategorySummaries())
}

func TestSnapshotLoader_MissingContent(t *testing.T) {
	store, err := blob.NewFilesystemBlobStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	meta := map[string]model.CheatsheetMeta{
		"Cloud/AWS": {Title: "AWS", Category: "Cloud", Slug: "AWS", Difficulty: model.Advanced, UpdatedAt: time.Now().UTC()},
		"Cloud/GCP": {Title: "GCP", Category: "Cloud", Slug: "GCP"},
	}
	data, _ := json.Marshal(meta)
	_, err = store.Put(ctx, data, constants.ContentTypeJSON, constants.ExportMetadataFile)
	require.NoError(t, err)
	_, err = store.Put(ctx, []byte(`{"Cloud/AWS":"## S3"}`), constants.ContentTypeJSON, constants.ExportContentFile)
	require.NoError(t, err)

	c, report, err := NewSnapshotLoader(store, catalog.DefaultCategories()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Cloud/GCP", report.Skipped[0].Path)

	aws := c.All()[0]
	assert.Equal(t, "Cloud/AWS", aws.Key())
	assert.NotNil(t, aws.Tags)
}

func TestSnapshotLoader_MissingDocuments(t *testing.T) {
	store, err := blob.NewFilesystemBlobStore(t.TempDir())
	require.NoError(t, err)
	_, _, err = NewSnapshotLoader(store, catalog.DefaultCategories()).Load(context.Background())
	assert.Error(t, err)
}

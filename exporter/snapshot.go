package exporter

import (
	"context"
	"sort"
	"strings"

	"github.com/opsdeck/cheatsheets/blob"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/model"
)

// SnapshotLoader builds a catalog from previously exported documents.
type SnapshotLoader struct {
	Store      blob.BlobStore
	Categories []model.Category
}

var _ catalog.Loader = (*SnapshotLoader)(nil)

// NewSnapshotLoader creates a loader reading from store.
func NewSnapshotLoader(store blob.BlobStore, categories []model.Category) *SnapshotLoader {
	return &SnapshotLoader{Store: store, Categories: categories}
}

// Load reads the documents and orders the cheatsheets the way a directory
// load would: by category order, then by slug.
func (l *SnapshotLoader) Load(ctx context.Context) (*catalog.Catalog, *catalog.LoadReport, error) {
	docs, err := ReadDocuments(ctx, l.Store)
	if err != nil {
		return nil, nil, err
	}

	order := make(map[string]int, len(l.Categories))
	for i, c := range l.Categories {
		order[strings.ToLower(c.Name)] = i
	}

	report := &catalog.LoadReport{}
	sheets := make([]*model.Cheatsheet, 0, len(docs.Metadata))
	for key, meta := range docs.Metadata {
		body, ok := docs.Content[key]
		if !ok {
			report.Skipped = append(report.Skipped, catalog.Skip{Path: key, Reason: "missing content"})
			continue
		}
		if meta.Tags == nil {
			meta.Tags = []string{}
		}
		sheets = append(sheets, &model.Cheatsheet{CheatsheetMeta: meta, Content: body, Source: key})
	}
	sort.Slice(sheets, func(i, j int) bool {
		oi, iok := order[strings.ToLower(sheets[i].Category)]
		oj, jok := order[strings.ToLower(sheets[j].Category)]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return sheets[i].Slug < sheets[j].Slug
	})

	c, skips := catalog.New(l.Categories, sheets)
	report.Skipped = append(report.Skipped, skips...)
	sort.Slice(report.Skipped, func(i, j int) bool { return report.Skipped[i].Path < report.Skipped[j].Path })
	report.Loaded = c.Len()
	return c, report, nil
}

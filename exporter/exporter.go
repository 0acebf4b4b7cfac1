// Package exporter writes the catalog as static JSON documents and reads
// them back as a catalog source.
package exporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opsdeck/cheatsheets/blob"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/utils"
)

// Documents are the exported JSON documents, keyed by "category/slug".
type Documents struct {
	Metadata map[string]model.CheatsheetMeta
	Content  map[string]string
	HTML     map[string]string
}

// Result lists the URLs written by Export.
type Result struct {
	Count int      `json:"count"`
	URLs  []string `json:"urls"`
}

// Build collects the export documents from a catalog. When renderer is
// non-nil the HTML document is built too.
func Build(c *catalog.Catalog, renderer *markdown.Renderer) (*Documents, error) {
	docs := &Documents{
		Metadata: make(map[string]model.CheatsheetMeta, c.Len()),
		Content:  make(map[string]string, c.Len()),
	}
	if renderer != nil {
		docs.HTML = make(map[string]string, c.Len())
	}
	for _, s := range c.All() {
		key := s.Key()
		docs.Metadata[key] = s.CheatsheetMeta
		docs.Content[key] = s.Content
		if renderer != nil {
			out, _, err := renderer.Render(s.Content)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", key, err)
			}
			docs.HTML[key] = out
		}
	}
	return docs, nil
}

// Export writes the documents for c into store.
func Export(ctx context.Context, c *catalog.Catalog, store blob.BlobStore, renderer *markdown.Renderer) (*Result, error) {
	docs, err := Build(c, renderer)
	if err != nil {
		return nil, err
	}
	files := []struct {
		name string
		v    any
	}{
		{constants.ExportMetadataFile, docs.Metadata},
		{constants.ExportContentFile, docs.Content},
	}
	if docs.HTML != nil {
		files = append(files, struct {
			name string
			v    any
		}{constants.ExportHTMLFile, docs.HTML})
	}

	res := &Result{Count: c.Len()}
	for _, f := range files {
		data, err := utils.MarshalJSONIndent(f.v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.name, err)
		}
		url, err := store.Put(ctx, data, constants.ContentTypeJSON, f.name)
		if err != nil {
			return nil, utils.Errorf("write %s: %w", f.name, err)
		}
		utils.Debug("exported %s (%d bytes)", url, len(data))
		res.URLs = append(res.URLs, url)
	}
	return res, nil
}

// ReadDocuments loads the metadata and content documents from store.
func ReadDocuments(ctx context.Context, store blob.BlobStore) (*Documents, error) {
	docs := &Documents{}
	if err := readJSON(ctx, store, constants.ExportMetadataFile, &docs.Metadata); err != nil {
		return nil, err
	}
	if err := readJSON(ctx, store, constants.ExportContentFile, &docs.Content); err != nil {
		return nil, err
	}
	return docs, nil
}

func readJSON(ctx context.Context, store blob.BlobStore, name string, v any) error {
	data, err := store.Get(ctx, store.URL(name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

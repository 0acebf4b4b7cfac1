package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/content"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/utils"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Skip records a file that was not loaded and why.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LoadReport describes one load of the library.
type LoadReport struct {
	Loaded            int      `json:"loaded"`
	Skipped           []Skip   `json:"skipped,omitempty"`
	MissingCategories []string `json:"missingCategories,omitempty"`
}

// OK reports whether every file was loaded.
func (r *LoadReport) OK() bool {
	return len(r.Skipped) == 0
}

// Loader produces a catalog snapshot from some source.
type Loader interface {
	Load(ctx context.Context) (*Catalog, *LoadReport, error)
}

// ParseCategories decodes a categories table.
func ParseCategories(data []byte) ([]model.Category, error) {
	var cats []model.Category
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("invalid categories table: %w", err)
	}
	seen := make(map[string]bool, len(cats))
	for i := range cats {
		cats[i].Name = strings.TrimSpace(cats[i].Name)
		if cats[i].Name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if seen[fold(cats[i].Name)] {
			return nil, fmt.Errorf("duplicate category %q", cats[i].Name)
		}
		seen[fold(cats[i].Name)] = true
		cats[i].Order = i
	}
	return cats, nil
}

// DefaultCategories returns the embedded categories table.
func DefaultCategories() []model.Category {
	cats, err := ParseCategories(content.CategoriesYAML)
	if err != nil {
		panic(err)
	}
	return cats
}

// LoadCategories reads a categories table from path, or returns the
// embedded table when path is empty.
func LoadCategories(path string) ([]model.Category, error) {
	if path == "" {
		return DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCategories(data)
}

// FSLoader reads <Category>/<slug>.md files from a filesystem.
type FSLoader struct {
	FS         fs.FS
	Categories []model.Category
	// Now is used for files without a modification time. Defaults to time.Now.
	Now func() time.Time
}

// NewFSLoader creates a loader over fsys for the given categories.
func NewFSLoader(fsys fs.FS, categories []model.Category) *FSLoader {
	return &FSLoader{FS: fsys, Categories: categories, Now: time.Now}
}

type categoryResult struct {
	sheets  []*model.Cheatsheet
	skips   []Skip
	missing bool
}

// Load reads every category directory concurrently and assembles the
// result in category order.
func (l *FSLoader) Load(ctx context.Context) (*Catalog, *LoadReport, error) {
	results := make([]categoryResult, len(l.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range l.Categories {
		g.Go(func() error {
			res, err := l.loadCategory(gctx, cat.Name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := &LoadReport{}
	var sheets []*model.Cheatsheet
	for i, res := range results {
		if res.missing {
			report.MissingCategories = append(report.MissingCategories, l.Categories[i].Name)
		}
		sheets = append(sheets, res.sheets...)
		report.Skipped = append(report.Skipped, res.skips...)
	}

	cat, dupes := New(l.Categories, sheets)
	report.Skipped = append(report.Skipped, dupes...)
	report.Loaded = cat.Len()
	for _, s := range report.Skipped {
		utils.Warn(constants.MsgSkippedFile, s.Path, s.Reason)
	}
	return cat, report, nil
}

func (l *FSLoader) loadCategory(ctx context.Context, name string) (categoryResult, error) {
	var res categoryResult
	entries, err := fs.ReadDir(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		utils.Warn("category directory %s not found, skipping", name)
		res.missing = true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read category %s: %w", name, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), constants.MarkdownExtension) {
			continue
		}
		p := path.Join(name, entry.Name())
		sheet, err := l.loadFile(p, name, entry)
		if err != nil {
			res.skips = append(res.skips, Skip{Path: p, Reason: err.Error()})
			continue
		}
		res.sheets = append(res.sheets, sheet)
	}
	return res, nil
}

func (l *FSLoader) loadFile(p, category string, entry fs.DirEntry) (*model.Cheatsheet, error) {
	data, err := fs.ReadFile(l.FS, p)
	if err != nil {
		return nil, err
	}
	modTime := l.now()
	if info, err := entry.Info(); err == nil && !info.ModTime().IsZero() {
		modTime = info.ModTime()
	}
	slug := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
	sheet, err := markdown.Parse(data, category, slug, modTime)
	if err != nil {
		return nil, err
	}
	sheet.Source = p
	return sheet, nil
}

func (l *FSLoader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

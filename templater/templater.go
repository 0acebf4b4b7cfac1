// Package templater renders the site pages from pongo2 templates embedded
// in the binary.
package templater

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"maps"
	"net/url"
	"path"
	"sync"

	pongo2 "github.com/flosch/pongo2/v6"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

const templatesDir = "templates"

var registerOnce sync.Once

// Templater renders named page templates with a shared set of globals.
type Templater struct {
	set *pongo2.TemplateSet
}

// embedLoader resolves template names inside the embedded templates directory.
type embedLoader struct {
	fs embed.FS
}

func (l embedLoader) Abs(base, name string) string {
	return path.Join(templatesDir, path.Base(name))
}

func (l embedLoader) Get(p string) (io.Reader, error) {
	data, err := l.fs.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// NewTemplater creates a Templater over the embedded templates. globals are
// available in every page.
func NewTemplater(globals map[string]any) *Templater {
	registerOnce.Do(registerFilters)
	set := pongo2.NewSet("cheats", embedLoader{fs: templatesFS})
	set.Globals = pongo2.Context{}
	maps.Copy(set.Globals, globals)
	return &Templater{set: set}
}

// Render executes the named template into w.
func (t *Templater) Render(w io.Writer, name string, data map[string]any) error {
	tpl, err := t.set.FromCache(name)
	if err != nil {
		return fmt.Errorf("load template %s: %w", name, err)
	}
	ctx := make(pongo2.Context, len(data))
	maps.Copy(ctx, data)
	utils.Debug("Templater.Render: %s, context keys = %v", name, contextKeys(ctx))
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	return nil
}

// RenderString executes the named template and returns the output.
func (t *Templater) RenderString(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Names lists the embedded page templates.
func Names() []string {
	entries, err := templatesFS.ReadDir(templatesDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func registerFilters() {
	filters := map[string]pongo2.FilterFunction{
		"difficulty_color": filterDifficultyColor,
		"sheet_url":        filterSheetURL,
	}
	for name, fn := range filters {
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			utils.Warn("pongo2 filter %s: %v", name, err)
		}
	}
}

// filterDifficultyColor maps a difficulty to the badge color used by the
// pages: green, yellow or red.
func filterDifficultyColor(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch model.Difficulty(in.String()) {
	case model.Beginner:
		return pongo2.AsValue("green"), nil
	case model.Intermediate:
		return pongo2.AsValue("yellow"), nil
	default:
		return pongo2.AsValue("red"), nil
	}
}

// filterSheetURL builds the page path of a cheatsheet from its metadata.
func filterSheetURL(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var meta model.CheatsheetMeta
	switch v := in.Interface().(type) {
	case model.CheatsheetMeta:
		meta = v
	case *model.CheatsheetMeta:
		meta = *v
	case *model.Cheatsheet:
		meta = v.CheatsheetMeta
	case model.Cheatsheet:
		meta = v.CheatsheetMeta
	default:
		return nil, &pongo2.Error{OrigError: fmt.Errorf("sheet_url: unsupported value %T", v)}
	}
	return pongo2.AsValue("/" + url.PathEscape(meta.Category) + "/" + url.PathEscape(meta.Slug)), nil
}

func contextKeys(ctx pongo2.Context) []string {
	var out []string
	for k := range ctx {
		out = append(out, k)
	}
	return out
}

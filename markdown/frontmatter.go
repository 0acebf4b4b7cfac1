// Package markdown parses cheatsheet documents and renders them to HTML or
// to the terminal.
package markdown

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/content"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnterminatedFrontmatter is returned when an opening "---" line has no
// matching closing line.
var ErrUnterminatedFrontmatter = errors.New("unterminated frontmatter")

var updatedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func frontmatterSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(constants.FrontmatterSchemaFile, content.FrontmatterSchema)
	})
	return schema, schemaErr
}

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// body. A document without one is returned whole as the body.
func SplitFrontmatter(data []byte) (front []byte, body string, err error) {
	text := strings.ReplaceAll(string(bytes.TrimPrefix(data, []byte("\ufeff"))), "\r\n", "\n")
	first, rest, found := strings.Cut(text, "\n")
	if strings.TrimRight(first, " \t") != constants.FrontmatterDelimiter {
		return nil, text, nil
	}
	if !found {
		return nil, "", ErrUnterminatedFrontmatter
	}

	var fm strings.Builder
	for {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, " \t") == constants.FrontmatterDelimiter {
			return []byte(fm.String()), next, nil
		}
		if !more {
			return nil, "", ErrUnterminatedFrontmatter
		}
		fm.WriteString(line)
		fm.WriteByte('\n')
		rest = next
	}
}

// ParseFrontmatter decodes YAML frontmatter and validates it against the
// embedded schema. The result holds JSON-compatible values only.
func ParseFrontmatter(front []byte) (map[string]any, error) {
	doc := map[string]any{}
	if len(bytes.TrimSpace(front)) == 0 {
		return doc, nil
	}
	var raw map[string]any
	if err := yaml.Unmarshal(front, &raw); err != nil {
		return nil, fmt.Errorf("invalid frontmatter YAML: %w", err)
	}
	// YAML timestamps and integer types are normalized through JSON so the
	// schema validator and the field extraction below see one shape.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("unsupported frontmatter value: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}

	s, err := frontmatterSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("frontmatter schema validation error: %w", err)
	}
	return doc, nil
}

// BuildMeta turns validated frontmatter into metadata, applying defaults.
// modTime is used when updatedAt is absent; a zero modTime means now.
func BuildMeta(doc map[string]any, category, slug string, modTime time.Time) (model.CheatsheetMeta, error) {
	meta := model.CheatsheetMeta{
		Title:       stringField(doc, "title", slug),
		Description: stringField(doc, "description", ""),
		Category:    category,
		Slug:        slug,
		Icon:        stringField(doc, "icon", constants.DefaultCheatsheetIcon),
		Status:      stringField(doc, "status", constants.DefaultCheatsheetStatus),
		Tags:        []string{},
	}

	difficulty, err := model.ParseDifficulty(stringField(doc, "difficulty", ""))
	if err != nil {
		return meta, err
	}
	meta.Difficulty = difficulty

	if p, ok := doc["popularity"].(float64); ok {
		meta.Popularity = int(p)
	}
	if tags, ok := doc["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				meta.Tags = append(meta.Tags, strings.TrimSpace(s))
			}
		}
	}

	if raw := stringField(doc, "updatedAt", ""); raw != "" {
		ts, err := parseUpdatedAt(raw)
		if err != nil {
			return meta, err
		}
		meta.UpdatedAt = ts
	} else if !modTime.IsZero() {
		meta.UpdatedAt = modTime.UTC()
	} else {
		meta.UpdatedAt = time.Now().UTC()
	}
	return meta, nil
}

// Parse reads a whole cheatsheet document.
func Parse(data []byte, category, slug string, modTime time.Time) (*model.Cheatsheet, error) {
	front, body, err := SplitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	doc, err := ParseFrontmatter(front)
	if err != nil {
		return nil, err
	}
	meta, err := BuildMeta(doc, category, slug, modTime)
	if err != nil {
		return nil, err
	}
	return &model.Cheatsheet{CheatsheetMeta: meta, Content: body}, nil
}

func stringField(doc map[string]any, key, def string) string {
	if v, ok := doc[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func parseUpdatedAt(raw string) (time.Time, error) {
	for _, layout := range updatedAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid updatedAt %q", raw)
}

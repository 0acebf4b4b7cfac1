package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/telemetry"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/patrickmn/go-cache"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// SectionIDFormat names the anchor of the n-th second-level heading.
const SectionIDFormat = "section-%d"

const wordsPerMinute = 200

// Renderer turns cheatsheet markdown into sanitized HTML with section
// anchors, copy markers on code blocks and a table of contents.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *cache.Cache
}

// NewRenderer creates a renderer whose cache keeps entries for ttl. A
// non-positive ttl disables caching.
func NewRenderer(ttl time.Duration) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").OnElements("code", "pre", "div", "span")
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")

	r := &Renderer{md: md, policy: policy}
	if ttl > 0 {
		r.cache = cache.New(ttl, 2*ttl)
	}
	return r
}

// Render converts a markdown body to HTML and collects its headings.
func (r *Renderer) Render(source string) (string, []model.Heading, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", nil, fmt.Errorf("markdown convert: %w", err)
	}
	safe := r.policy.SanitizeBytes(buf.Bytes())
	return decorate(safe)
}

// Cheatsheet renders sheet, reusing a cached result for the same catalog
// generation.
func (r *Renderer) Cheatsheet(generation uint64, sheet *model.Cheatsheet) (*model.RenderedCheatsheet, error) {
	key := fmt.Sprintf("%d:%s", generation, sheet.Key())
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			telemetry.ObserveRenderCache(true)
			return v.(*model.RenderedCheatsheet), nil
		}
		telemetry.ObserveRenderCache(false)
	}

	htmlOut, toc, err := r.Render(sheet.Content)
	if err != nil {
		return nil, utils.Errorf("render %s: %w", sheet.Key(), err)
	}
	rendered := &model.RenderedCheatsheet{
		Cheatsheet:     *sheet,
		HTML:           htmlOut,
		TOC:            toc,
		ReadingMinutes: ReadingMinutes(sheet.Content),
	}
	if r.cache != nil {
		r.cache.SetDefault(key, rendered)
	}
	return rendered, nil
}

// ReadingMinutes estimates reading time at 200 words per minute, rounded
// up, with a minimum of one minute.
func ReadingMinutes(source string) int {
	words := len(strings.Fields(source))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Flush drops every cached page.
func (r *Renderer) Flush() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

// CachedItems reports how many pages are cached.
func (r *Renderer) CachedItems() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.ItemCount()
}

func decorate(fragment []byte) (string, []model.Heading, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(fragment))
	if err != nil {
		return "", nil, fmt.Errorf("parse rendered html: %w", err)
	}
	body := doc.Find("body")

	body.Find("h2").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("id", fmt.Sprintf(SectionIDFormat, i))
	})

	toc := []model.Heading{}
	body.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		toc = append(toc, model.Heading{
			Level: level,
			Text:  strings.TrimSpace(s.Text()),
			ID:    s.AttrOr("id", ""),
		})
	})

	body.Find("pre").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("data-copy", "true")
		s.WrapHtml(`<div class="code-block"></div>`)
	})

	out, err := body.Html()
	if err != nil {
		return "", nil, fmt.Errorf("serialize rendered html: %w", err)
	}
	return strings.TrimSpace(out), toc, nil
}

package api

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/templater"
	"github.com/opsdeck/cheatsheets/utils"
)

var featuredTitles = map[string]string{
	constants.FeaturedPopular:        "Most popular",
	constants.FeaturedLatest:         "Recently updated",
	constants.FeaturedGettingStarted: "Getting started",
	constants.FeaturedTrending:       "Trending",
	constants.FeaturedEnterprise:     "Enterprise",
	constants.FeaturedSecurity:       "Security",
}

// FeaturedSection is one block of the home page.
type FeaturedSection struct {
	Filter string
	Title  string
	Items  []model.CheatsheetMeta
}

// Pages serves the server-rendered site.
type Pages struct {
	svc CheatsheetService
	tpl *templater.Templater
}

// NewPages creates the site handlers.
func NewPages(svc CheatsheetService, tpl *templater.Templater) *Pages {
	return &Pages{svc: svc, tpl: tpl}
}

// Register mounts the site routes on mux.
func (p *Pages) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.home)
	mux.HandleFunc("GET /categories", p.categories)
	mux.HandleFunc("GET /getting-started", p.gettingStarted)
	mux.HandleFunc("GET /search", p.search)
	mux.HandleFunc("GET /about", p.about)
	mux.HandleFunc("GET /{category}", p.category)
	mux.HandleFunc("GET /{category}/{slug}", p.cheatsheet)
}

func (p *Pages) home(w http.ResponseWriter, r *http.Request) {
	summaries, err := p.svc.ListCategories(r.Context())
	if err != nil {
		p.renderError(w, r, err, "")
		return
	}
	sections := make([]FeaturedSection, 0, len(catalog.FeaturedFilters))
	for _, filter := range catalog.FeaturedFilters {
		items, err := p.svc.FeaturedCheatsheets(r.Context(), filter, constants.DefaultFeatured)
		if err != nil {
			p.renderError(w, r, err, "")
			return
		}
		sections = append(sections, FeaturedSection{Filter: filter, Title: featuredTitles[filter], Items: items})
	}
	p.render(w, r, http.StatusOK, "home.html", map[string]any{
		"categories": summaries,
		"featured":   sections,
	})
}

func (p *Pages) categories(w http.ResponseWriter, r *http.Request) {
	summaries, err := p.svc.ListCategories(r.Context())
	if err != nil {
		p.renderError(w, r, err, "")
		return
	}
	p.render(w, r, http.StatusOK, "categories.html", map[string]any{
		"categories": summaries,
		"saved":      p.saved(r.Context()),
	})
}

func (p *Pages) category(w http.ResponseWriter, r *http.Request) {
	detail, err := p.svc.GetCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		p.renderError(w, r, err, constants.ResponseCategoryNotFound)
		return
	}
	p.render(w, r, http.StatusOK, "category.html", map[string]any{
		"category": detail.CategorySummary,
		"sheets":   detail.Cheatsheets,
	})
}

func (p *Pages) cheatsheet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, slug := r.PathValue("category"), r.PathValue("slug")
	sheet, err := p.svc.GetCheatsheet(ctx, category, slug)
	if err != nil {
		p.renderError(w, r, err, constants.ResponseCheatsheetNotFound)
		return
	}
	related, err := p.svc.RelatedCheatsheets(ctx, sheet.Category, sheet.Slug, constants.DefaultRelated)
	if err != nil {
		utils.WarnCtx(ctx, "related cheatsheets unavailable", "key", sheet.Key(), "error", err)
	}
	isSaved := false
	if clientID, ok := ClientIDFromContext(ctx); ok {
		if isSaved, err = p.svc.IsSaved(ctx, clientID, sheet.Key()); err != nil {
			utils.WarnCtx(ctx, "saved state unavailable", "key", sheet.Key(), "error", err)
		}
	}
	p.render(w, r, http.StatusOK, "cheatsheet.html", map[string]any{
		"sheet":     sheet,
		"sheet_key": sheet.Key(),
		"is_saved":  isSaved,
		"related":   related,
	})
}

func (p *Pages) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	var results []model.CheatsheetMeta
	if query != "" {
		var err error
		if results, err = p.svc.SearchCheatsheets(r.Context(), query, 0); err != nil {
			p.renderError(w, r, err, "")
			return
		}
	}
	p.render(w, r, http.StatusOK, "search.html", map[string]any{
		"query":   query,
		"results": results,
	})
}

func (p *Pages) gettingStarted(w http.ResponseWriter, r *http.Request) {
	page, err := p.svc.ListCheatsheets(r.Context(), catalog.ListQuery{
		Difficulty: string(model.Beginner),
		Sort:       constants.SortPopularity,
		Limit:      constants.MaxLimit,
	})
	if err != nil {
		p.renderError(w, r, err, "")
		return
	}
	p.render(w, r, http.StatusOK, "getting-started.html", map[string]any{"sheets": page.Items})
}

func (p *Pages) about(w http.ResponseWriter, r *http.Request) {
	summaries, err := p.svc.ListCategories(r.Context())
	if err != nil {
		p.renderError(w, r, err, "")
		return
	}
	p.render(w, r, http.StatusOK, "about.html", map[string]any{"categories": summaries})
}

func (p *Pages) saved(ctx context.Context) []string {
	clientID, ok := ClientIDFromContext(ctx)
	if !ok {
		return nil
	}
	items, err := p.svc.ListSaved(ctx, clientID)
	if err != nil {
		utils.WarnCtx(ctx, "saved items unavailable", "error", err)
		return nil
	}
	return items
}

// renderError shows the 404 page for missing content and a plain error
// otherwise.
func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status := HTTPStatus(err)
	if status == http.StatusNotFound {
		if notFound == "" {
			notFound = http.StatusText(status)
		}
		p.render(w, r, status, constants.ResponsePageNotFoundTemplate, map[string]any{"message": notFound})
		return
	}
	if status >= http.StatusInternalServerError {
		utils.ErrorCtx(r.Context(), constants.LogFailedRenderPage, "path", r.URL.Path, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if _, ok := data["query"]; !ok {
		data["query"] = ""
	}
	if _, ok := data["total_cheatsheets"]; !ok {
		data["total_cheatsheets"] = p.total(r.Context())
	}
	var buf bytes.Buffer
	if err := p.tpl.Render(&buf, name, data); err != nil {
		utils.ErrorCtx(r.Context(), constants.LogFailedRenderPage, "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeHTML)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		utils.WarnCtx(r.Context(), constants.LogFailedWriteText, "error", err)
	}
}

func (p *Pages) total(ctx context.Context) int {
	summaries, err := p.svc.ListCategories(ctx)
	if err != nil {
		return 0
	}
	total := 0
	for _, s := range summaries {
		total += s.ToolCount
	}
	return total
}

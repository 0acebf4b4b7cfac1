package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	mcp "github.com/metoro-io/mcp-golang"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (http.Handler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	mux := http.NewServeMux()
	GenerateHTTPHandlers(mux, env.svc)
	return ClientID(mux), env
}

func doRequest(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOperationsRegistered(t *testing.T) {
	for _, id := range []string{
		constants.OpListCategories, constants.OpGetCategory, constants.OpListCheatsheets,
		constants.OpGetCheatsheet, constants.OpSearchCheatsheets, constants.OpFeaturedCheatsheets,
		constants.OpRelatedCheatsheets, constants.OpListSaved, constants.OpSaveItem,
		constants.OpRemoveItem, constants.OpCatalogStats, constants.OpReloadCatalog,
	} {
		op, ok := GetOperation(id)
		require.True(t, ok, id)
		assert.NotEmpty(t, op.HTTPPath, id)
		assert.NotNil(t, op.Handler, id)
		assert.Equal(t, reflect.Struct, op.ArgsType.Kind(), id)
	}
	assert.Len(t, GetAllOperations(), 12)
}

func TestHTTP_ListCheatsheets(t *testing.T) {
	h, _ := newTestMux(t)
	rec := doRequest(t, h, http.MethodGet, "/api/cheatsheets?category=containerization&limit=1&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page model.Page[model.CheatsheetMeta]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Docker", page.Items[0].Title, "files load in byte order, so Kubernetes.md comes first")
	assert.Contains(t, rec.Body.String(), `"cheatsheets":[`)
}

func TestHTTP_GetCheatsheet(t *testing.T) {
	h, _ := newTestMux(t)
	rec := doRequest(t, h, http.MethodGet, "/api/cheatsheets/containerization/DOCKER", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sheet model.RenderedCheatsheet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sheet))
	assert.Equal(t, "Docker", sheet.Title)
	assert.Contains(t, sheet.HTML, "section-0")
}

func TestHTTP_Errors(t *testing.T) {
	h, _ := newTestMux(t)
	cases := []struct {
		target string
		status int
		msg    string
	}{
		{"/api/cheatsheets/Containerization/podman", http.StatusNotFound, constants.ResponseCheatsheetNotFound},
		{"/api/categories/Databases", http.StatusNotFound, constants.ResponseCategoryNotFound},
		{"/api/featured/hot", http.StatusBadRequest, "unknown featured filter"},
		{"/api/cheatsheets?sort=random", http.StatusBadRequest, "invalid query"},
		{"/api/cheatsheets?page=two", http.StatusBadRequest, "Invalid arguments"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, tc.target, "")
			assert.Equal(t, tc.status, rec.Code)
			var body utils.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tc.msg)
			assert.Equal(t, tc.status, body.Code)
		})
	}
}

func TestHTTP_SearchFeaturedRelated(t *testing.T) {
	h, _ := newTestMux(t)

	rec := doRequest(t, h, http.MethodGet, "/api/search?q=scanning", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []model.CheatsheetMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Trivy", found[0].Title)

	rec = doRequest(t, h, http.MethodGet, "/api/featured/enterprise", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var featured []model.CheatsheetMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &featured))
	require.Len(t, featured, 1)
	assert.Equal(t, "Kubernetes", featured[0].Title)

	rec = doRequest(t, h, http.MethodGet, "/api/related/Containerization/Kubernetes?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var related []model.CheatsheetMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &related))
	require.Len(t, related, 1)
	assert.Equal(t, "Docker", related[0].Title)
}

func TestHTTP_SavedItems(t *testing.T) {
	h, _ := newTestMux(t)
	client := []string{constants.HeaderClientID, "browser-1"}

	rec := doRequest(t, h, http.MethodPost, "/api/saved", `{"item":"security"}`, client...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doRequest(t, h, http.MethodPost, "/api/saved", `{"item":"containerization/docker"}`, client...)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/saved", "", client...)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Equal(t, []string{"Security", "Containerization/docker"}, items)

	rec = doRequest(t, h, http.MethodDelete, "/api/saved/Containerization/docker", "", client...)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Equal(t, []string{"Security"}, items)

	rec = doRequest(t, h, http.MethodPost, "/api/saved", `{"item":""}`, client...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doRequest(t, h, http.MethodPost, "/api/saved", `{"item":`, client...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/saved", "", constants.HeaderClientID, "browser-2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Empty(t, items)
}

func TestHTTP_StatsAndReload(t *testing.T) {
	h, _ := newTestMux(t)
	rec := doRequest(t, h, http.MethodPost, "/api/reload", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result ReloadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, uint64(2), result.Generation)

	rec = doRequest(t, h, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats CatalogStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Cheatsheets)
	assert.Equal(t, uint64(2), stats.Generation)

	rec = doRequest(t, h, http.MethodGet, "/api/reload", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("x: %w", catalog.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(catalog.ErrUnknownFilter))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidArgument))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrReloadUnsupported))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(catalog.ErrNotLoaded))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("disk on fire")))
}

func runCLI(t *testing.T, env *testEnv, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	utils.SetUserOutput(&out)
	defer utils.SetUserOutput(nil)

	root := &cobra.Command{Use: "cheats", SilenceUsage: true, SilenceErrors: true}
	AttachCLICommands(root, func(*cobra.Command) (CheatsheetService, error) { return env.svc, nil })
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_GeneratedCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := runCLI(t, env, "get", "Security", "trivy")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Trivy"`)

	out, err = runCLI(t, env, "list", "--category", "Containerization", "--sort", "title", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Docker"`)
	assert.Contains(t, out, `"totalPages": 2`)

	out, err = runCLI(t, env, "search", "orchestration")
	require.NoError(t, err)
	assert.Contains(t, out, "Kubernetes")

	_, err = runCLI(t, env, "featured", "hot")
	assert.ErrorIs(t, err, catalog.ErrUnknownFilter)

	_, err = runCLI(t, env, "categories", "extra")
	assert.Error(t, err, "categories takes no positional arguments")
}

func TestCLI_SkipsHTTPOnlyOperations(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range GenerateCLICommands(func(*cobra.Command) (CheatsheetService, error) { return nil, nil }) {
		names[cmd.Name()] = true
	}
	assert.True(t, names["get"])
	assert.True(t, names["reload"])
	assert.False(t, names[""])
	assert.Len(t, names, 9)
}

func TestMCP_GeneratedHandlers(t *testing.T) {
	env := newTestEnv(t)
	tools := GenerateMCPTools(env.svc)
	byName := map[string]any{}
	for _, tool := range tools {
		byName[tool.Name] = tool.Handler
	}
	assert.Len(t, tools, 8)
	assert.NotContains(t, byName, constants.OpSaveItem)
	assert.NotContains(t, byName, constants.OpReloadCatalog)

	handler, ok := byName["cheats_get_cheatsheet"]
	require.True(t, ok)
	fn := reflect.ValueOf(handler)
	require.Equal(t, 2, fn.Type().NumIn())
	assert.Equal(t, reflect.TypeOf(CheatsheetArgs{}), fn.Type().In(1))

	out := fn.Call([]reflect.Value{
		reflect.ValueOf(context.Background()),
		reflect.ValueOf(CheatsheetArgs{Category: "CI-CD", Slug: "jenkins"}),
	})
	require.True(t, out[1].IsNil(), "unexpected error: %v", out[1].Interface())
	resp := out[0].Interface().(*mcp.ToolResponse)
	require.Len(t, resp.Content, 1)
	assert.Contains(t, resp.Content[0].TextContent.Text, `"title": "Jenkins"`)

	out = fn.Call([]reflect.Value{
		reflect.ValueOf(context.Background()),
		reflect.ValueOf(CheatsheetArgs{Category: "CI-CD", Slug: "travis"}),
	})
	require.False(t, out[1].IsNil())
	assert.ErrorIs(t, out[1].Interface().(error), catalog.ErrNotFound)
}

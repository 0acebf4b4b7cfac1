package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/templater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSite(t *testing.T) (http.Handler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	mux := http.NewServeMux()
	GenerateHTTPHandlers(mux, env.svc)
	NewPages(env.svc, templater.NewTemplater(map[string]any{"site_name": "Cheats"})).Register(mux)
	return ClientID(mux), env
}

func getPage(t *testing.T, h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, h, http.MethodGet, target, "", headers...)
}

func TestPages_Home(t *testing.T) {
	h, _ := newTestSite(t)
	rec := getPage(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.ContentTypeHTML, rec.Header().Get(constants.HeaderContentType))

	body := rec.Body.String()
	assert.Contains(t, body, `id="featured-popular"`)
	assert.Contains(t, body, `id="featured-security"`)
	assert.Contains(t, body, `href="/Containerization"`)
	assert.Contains(t, body, "4 DevOps tools across 3 categories")
}

func TestPages_Cheatsheet(t *testing.T) {
	h, _ := newTestSite(t)
	client := []string{constants.HeaderClientID, "page-reader"}
	rec := doRequest(t, h, http.MethodPost, "/api/saved", `{"item":"Containerization/Kubernetes"}`, client...)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getPage(t, h, "/containerization/kubernetes", client...)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Kubernetes &middot; Cheats</title>")
	assert.Contains(t, body, `<pre data-copy="true">`)
	assert.Contains(t, body, `data-save="Containerization/Kubernetes" aria-pressed="true"`)
	assert.Contains(t, body, `href="/Containerization/docker"`, "related cheatsheets are linked")

	rec = getPage(t, h, "/Containerization/docker", client...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-pressed="false"`)
}

func TestPages_Category(t *testing.T) {
	h, _ := newTestSite(t)
	rec := getPage(t, h, "/Security")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/Security/Trivy"`)
}

func TestPages_NotFound(t *testing.T) {
	h, _ := newTestSite(t)

	rec := getPage(t, h, "/Databases")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.ResponseCategoryNotFound)

	rec = getPage(t, h, "/Security/nmap")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.ResponseCheatsheetNotFound)
	assert.Contains(t, rec.Body.String(), `href="/categories"`)
}

func TestPages_Search(t *testing.T) {
	h, _ := newTestSite(t)

	rec := getPage(t, h, "/search?q=containers")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2 results for")
	assert.Contains(t, body, `href="/Containerization/Kubernetes"`)

	rec = getPage(t, h, "/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type a tool name")
}

func TestPages_StaticPages(t *testing.T) {
	h, _ := newTestSite(t)
	for _, path := range []string{"/categories", "/getting-started", "/about"} {
		rec := getPage(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := getPage(t, h, "/getting-started")
	assert.Contains(t, rec.Body.String(), `href="/Containerization/docker"`)
	assert.NotContains(t, rec.Body.String(), `href="/Containerization/Kubernetes"`)
}

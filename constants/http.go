package constants

// HTTP Methods
const (
	HTTPMethodGET    = "GET"
	HTTPMethodPOST   = "POST"
	HTTPMethodDELETE = "DELETE"
)

// API Paths
const (
	PathCategories         = "/api/categories"
	PathCategory           = "/api/categories/{category}"
	PathCheatsheets        = "/api/cheatsheets"
	PathCheatsheet         = "/api/cheatsheets/{category}/{slug}"
	PathSearch             = "/api/search"
	PathFeatured           = "/api/featured/{filter}"
	PathRelated            = "/api/related/{category}/{slug}"
	PathSaved              = "/api/saved"
	PathSavedItem          = "/api/saved/{item...}"
	PathStats              = "/api/stats"
	PathReload             = "/api/reload"
	PathHealth             = "/healthz"
	PathMetrics            = "/metrics"
	PathMCP                = "/mcp"
	HealthCheckResponse    = `{"status":"healthy"}`
	DefaultHTTPAddr        = ":8080"
	DefaultMCPAddr         = ":9090"
	ClientIDCookie         = "cheats_client"
	ClientIDCookieMaxAge   = 365 * 24 * 60 * 60
	DefaultRateLimitPerSec = 20
	DefaultRateLimitBurst  = 40
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// HTTP Headers
const (
	HeaderContentType = "Content-Type"
	HeaderClientID    = "X-Client-ID"
	HeaderRequestID   = "X-Request-ID"
	HeaderForwarded   = "X-Forwarded-For"
)

package constants

// ============================================================================
// CONFIGURATION
// ============================================================================

// Configuration Files
const (
	ConfigFileName          = "cheats.config.json"
	ConfigSchemaFile        = "cheats.config.schema.json"
	FrontmatterSchemaFile   = "frontmatter.schema.json"
	MarkdownExtension       = ".md"
	FrontmatterDelimiter    = "---"
	DefaultCheatsheetIcon   = "📄"
	DefaultCheatsheetStatus = ""
)

// Content Sources
const (
	ContentSourceEmbedded = "embedded"
	ContentSourceDir      = "dir"
	ContentSourceSnapshot = "snapshot"
)

// Storage Drivers
const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Blob Drivers
const (
	BlobDriverFilesystem = "filesystem"
	BlobDriverS3         = "s3"
)

// Event Drivers
const (
	EventDriverMemory = "memory"
	EventDriverNATS   = "nats"
)

// Tracing Exporters
const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
)

// Environment Variables
const (
	EnvDebug       = "CHEATS_DEBUG"
	EnvContentDir  = "CHEATS_CONTENT_DIR"
	EnvAddr        = "CHEATS_ADDR"
	EnvDatabaseURL = "DATABASE_URL"
	EnvS3Bucket    = "CHEATS_S3_BUCKET"
	EnvS3Region    = "AWS_REGION"
)

// ============================================================================
// CATALOG
// ============================================================================

// Pagination
const (
	DefaultPage     = 1
	DefaultLimit    = 10
	MaxLimit        = 1000
	DefaultFeatured = 6
	DefaultRelated  = 3
)

// Sort orders
const (
	SortCatalog    = "catalog"
	SortPopularity = "popularity"
	SortTitle      = "title"
	SortUpdated    = "updated"
)

// Featured filters
const (
	FeaturedPopular        = "popular"
	FeaturedLatest         = "latest"
	FeaturedGettingStarted = "getting-started"
	FeaturedTrending       = "trending"
	FeaturedEnterprise     = "enterprise"
	FeaturedSecurity       = "security"
)

// SecurityCategory is the category the "security" featured filter selects.
const SecurityCategory = "Security"

// Export file names
const (
	ExportMetadataFile = "cheatsheets-metadata.json"
	ExportContentFile  = "cheatsheets-content.json"
	ExportHTMLFile     = "cheatsheets-html.json"
)

// ============================================================================
// OPERATIONS
// ============================================================================

// Operation IDs
const (
	OpListCategories      = "listCategories"
	OpGetCategory         = "getCategory"
	OpListCheatsheets     = "listCheatsheets"
	OpGetCheatsheet       = "getCheatsheet"
	OpSearchCheatsheets   = "searchCheatsheets"
	OpFeaturedCheatsheets = "featuredCheatsheets"
	OpRelatedCheatsheets  = "relatedCheatsheets"
	OpListSaved           = "listSaved"
	OpSaveItem            = "saveItem"
	OpRemoveItem          = "removeItem"
	OpCatalogStats        = "catalogStats"
	OpReloadCatalog       = "reloadCatalog"
)

// Operation descriptions
const (
	DescListCategories      = "List every category with the number of cheatsheets it holds"
	DescGetCategory         = "Get a category and the cheatsheets in it"
	DescListCheatsheets     = "List cheatsheets with optional category, text, difficulty and tag filters, sorted and paginated"
	DescGetCheatsheet       = "Get a cheatsheet rendered to HTML with its table of contents"
	DescSearchCheatsheets   = "Search cheatsheets by title, description, category and tags"
	DescFeaturedCheatsheets = "Get a featured selection: popular, latest, getting-started, trending, enterprise or security"
	DescRelatedCheatsheets  = "Get other cheatsheets from the same category"
	DescListSaved           = "List the items saved by the current client"
	DescSaveItem            = "Save a category or cheatsheet for the current client"
	DescRemoveItem          = "Remove a saved item for the current client"
	DescCatalogStats        = "Show catalog counts and the most viewed cheatsheets"
	DescReloadCatalog       = "Reload the catalog from its content source"
)

// ============================================================================
// EVENTS
// ============================================================================

const (
	TopicCatalogReloaded  = "catalog.reloaded"
	TopicCheatsheetViewed = "cheatsheet.viewed"
)

// ============================================================================
// CLI COMMANDS & DESCRIPTIONS
// ============================================================================

// Command names
const (
	CmdServe    = "serve"
	CmdExport   = "export"
	CmdValidate = "validate"
	CmdShow     = "show"
	CmdMCP      = "mcp"
)

// Command descriptions
const (
	DescServe    = "Start the cheatsheets HTTP server"
	DescExport   = "Pre-render the library into static JSON documents"
	DescValidate = "Validate every cheatsheet in the library"
	DescShow     = "Render a cheatsheet in the terminal"
	DescMCP      = "MCP server commands"
	DescMCPServe = "Serve catalog tools over MCP (stdio or HTTP)"
)

// CLI Messages
const (
	MsgValidationOK   = "Validation OK: %d cheatsheets in %d categories"
	MsgExportWritten  = "Wrote %s"
	MsgServerStarting = "Starting cheatsheets server on %s"
	MsgSkippedFile    = "skipped %s: %s"
)

// Logging
const (
	LoggerModeProduction = "production"
	LoggerModeDebug      = "debug"
	JSONIndent           = "  "
)

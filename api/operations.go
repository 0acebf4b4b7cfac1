package api

import (
	"context"
	"net/http"
	"reflect"
	"sort"

	mcp "github.com/metoro-io/mcp-golang"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/spf13/cobra"
)

// OperationDefinition defines a single operation with all its metadata and implementation
type OperationDefinition struct {
	ID          string                                                                  // Unique identifier
	Name        string                                                                  // Display name
	Description string                                                                  // Human readable description
	HTTPMethod  string                                                                  // HTTP method (GET, POST, etc.)
	HTTPPath    string                                                                  // HTTP path pattern
	CLIUse      string                                                                  // CLI command usage pattern
	CLIShort    string                                                                  // CLI short description
	MCPName     string                                                                  // MCP tool name (defaults to ID)
	NotFound    string                                                                  // Message for a 404 response
	ArgsType    reflect.Type                                                            // Type for request arguments
	Handler     func(ctx context.Context, svc CheatsheetService, args any) (any, error) // Core implementation
	CLIHandler  func(cmd *cobra.Command, args []string, svc CheatsheetService) error    // Optional custom CLI handler
	HTTPHandler func(w http.ResponseWriter, r *http.Request, svc CheatsheetService)     // Optional custom HTTP handler
	MCPHandler  func(ctx context.Context, args any) (*mcp.ToolResponse, error)          // Optional custom MCP handler
	SkipHTTP    bool                                                                    // Skip HTTP interface generation
	SkipMCP     bool                                                                    // Skip MCP interface generation
	SkipCLI     bool                                                                    // Skip CLI interface generation
}

// Argument types. Leading string fields double as CLI positional arguments,
// `path` names an HTTP path wildcard, `json` a query parameter or body field.

type EmptyArgs struct{}

type CategoryArgs struct {
	Category string `json:"category" path:"category" flag:"category" description:"Category name" jsonschema:"required,description=Category name such as CI-CD or Security"`
}

type ListCheatsheetsArgs struct {
	Category   string `json:"category" flag:"category" description:"Only this category" jsonschema:"description=Only cheatsheets from this category"`
	Q          string `json:"q" flag:"query" description:"Text to match" jsonschema:"description=Case-insensitive text matched against title, description, category and tags"`
	Difficulty string `json:"difficulty" flag:"difficulty" description:"Beginner, Intermediate or Advanced" jsonschema:"description=Beginner, Intermediate or Advanced"`
	Tag        string `json:"tag" flag:"tag" description:"Only cheatsheets with this tag" jsonschema:"description=Only cheatsheets carrying this tag"`
	Page       int    `json:"page" flag:"page" description:"Page number, from 1" jsonschema:"description=Page number starting at 1"`
	Limit      int    `json:"limit" flag:"limit" description:"Page size" jsonschema:"description=Page size between 1 and 1000"`
	Sort       string `json:"sort" flag:"sort" description:"catalog, popularity, title or updated" jsonschema:"description=Sort order: catalog, popularity, title or updated"`
}

func (a *ListCheatsheetsArgs) query() catalog.ListQuery {
	return catalog.ListQuery{
		Category:   a.Category,
		Query:      a.Q,
		Difficulty: a.Difficulty,
		Tag:        a.Tag,
		Page:       a.Page,
		Limit:      a.Limit,
		Sort:       a.Sort,
	}
}

type CheatsheetArgs struct {
	Category string `json:"category" path:"category" flag:"category" description:"Category name" jsonschema:"required,description=Category name"`
	Slug     string `json:"slug" path:"slug" flag:"slug" description:"Cheatsheet slug" jsonschema:"required,description=Cheatsheet slug such as docker"`
}

type SearchArgs struct {
	Q     string `json:"q" flag:"query" description:"Text to search for" jsonschema:"required,description=Text to search for"`
	Limit int    `json:"limit" flag:"limit" description:"Maximum number of results (0 for all)" jsonschema:"description=Maximum number of results, 0 for all"`
}

type FeaturedArgs struct {
	Filter string `json:"filter" path:"filter" flag:"filter" description:"Featured preset" jsonschema:"required,description=popular, latest, getting-started, trending, enterprise or security"`
	Limit  int    `json:"limit" flag:"limit" description:"Maximum number of results" jsonschema:"description=Maximum number of results, defaults to 6"`
}

type RelatedArgs struct {
	Category string `json:"category" path:"category" flag:"category" description:"Category name" jsonschema:"required,description=Category name"`
	Slug     string `json:"slug" path:"slug" flag:"slug" description:"Cheatsheet slug" jsonschema:"required,description=Cheatsheet slug"`
	Limit    int    `json:"limit" flag:"limit" description:"Maximum number of results" jsonschema:"description=Maximum number of results, defaults to 3"`
}

type SavedItemArgs struct {
	Item string `json:"item" path:"item" flag:"item" description:"Category name or category/slug"`
}

// Global operation registry
var operationRegistry = make(map[string]*OperationDefinition)

// RegisterOperation registers an operation definition
func RegisterOperation(op *OperationDefinition) {
	if op.MCPName == "" {
		op.MCPName = op.ID
	}
	operationRegistry[op.ID] = op
}

// GetOperation retrieves an operation by ID
func GetOperation(id string) (*OperationDefinition, bool) {
	op, exists := operationRegistry[id]
	return op, exists
}

// GetAllOperations returns all registered operations
func GetAllOperations() map[string]*OperationDefinition {
	return operationRegistry
}

// sortedOperations returns the registered operations ordered by ID so that
// generated commands, routes and tools are stable.
func sortedOperations() []*OperationDefinition {
	ops := make([]*OperationDefinition, 0, len(operationRegistry))
	for _, op := range operationRegistry {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return ops
}

// init registers all core operations
func init() {
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpListCategories,
		Name:        "List Categories",
		Description: constants.DescListCategories,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathCategories,
		CLIUse:      "categories",
		CLIShort:    "List all categories",
		MCPName:     "cheats_list_categories",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			return svc.ListCategories(ctx)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpGetCategory,
		Name:        "Get Category",
		Description: constants.DescGetCategory,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathCategory,
		CLIUse:      "category <name>",
		CLIShort:    "Show a category and its cheatsheets",
		MCPName:     "cheats_get_category",
		NotFound:    constants.ResponseCategoryNotFound,
		ArgsType:    reflect.TypeOf(CategoryArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*CategoryArgs)
			return svc.GetCategory(ctx, a.Category)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpListCheatsheets,
		Name:        "List Cheatsheets",
		Description: constants.DescListCheatsheets,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathCheatsheets,
		CLIUse:      "list",
		CLIShort:    "List cheatsheets with filters and pagination",
		MCPName:     "cheats_list_cheatsheets",
		ArgsType:    reflect.TypeOf(ListCheatsheetsArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*ListCheatsheetsArgs)
			return svc.ListCheatsheets(ctx, a.query())
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpGetCheatsheet,
		Name:        "Get Cheatsheet",
		Description: constants.DescGetCheatsheet,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathCheatsheet,
		CLIUse:      "get <category> <slug>",
		CLIShort:    "Get a rendered cheatsheet",
		MCPName:     "cheats_get_cheatsheet",
		NotFound:    constants.ResponseCheatsheetNotFound,
		ArgsType:    reflect.TypeOf(CheatsheetArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*CheatsheetArgs)
			return svc.GetCheatsheet(ctx, a.Category, a.Slug)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpSearchCheatsheets,
		Name:        "Search Cheatsheets",
		Description: constants.DescSearchCheatsheets,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathSearch,
		CLIUse:      "search <query>",
		CLIShort:    "Search cheatsheets",
		MCPName:     "cheats_search",
		ArgsType:    reflect.TypeOf(SearchArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*SearchArgs)
			return svc.SearchCheatsheets(ctx, a.Q, a.Limit)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpFeaturedCheatsheets,
		Name:        "Featured Cheatsheets",
		Description: constants.DescFeaturedCheatsheets,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathFeatured,
		CLIUse:      "featured <filter>",
		CLIShort:    "Show a featured selection of cheatsheets",
		MCPName:     "cheats_featured",
		ArgsType:    reflect.TypeOf(FeaturedArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*FeaturedArgs)
			return svc.FeaturedCheatsheets(ctx, a.Filter, a.Limit)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpRelatedCheatsheets,
		Name:        "Related Cheatsheets",
		Description: constants.DescRelatedCheatsheets,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathRelated,
		CLIUse:      "related <category> <slug>",
		CLIShort:    "Show cheatsheets related to one cheatsheet",
		MCPName:     "cheats_related",
		NotFound:    constants.ResponseCheatsheetNotFound,
		ArgsType:    reflect.TypeOf(RelatedArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*RelatedArgs)
			return svc.RelatedCheatsheets(ctx, a.Category, a.Slug, a.Limit)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpListSaved,
		Name:        "List Saved",
		Description: constants.DescListSaved,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathSaved,
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		SkipCLI:     true,
		SkipMCP:     true,
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			clientID, _ := ClientIDFromContext(ctx)
			return svc.ListSaved(ctx, clientID)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpSaveItem,
		Name:        "Save Item",
		Description: constants.DescSaveItem,
		HTTPMethod:  constants.HTTPMethodPOST,
		HTTPPath:    constants.PathSaved,
		NotFound:    constants.ResponseCheatsheetNotFound,
		ArgsType:    reflect.TypeOf(SavedItemArgs{}),
		SkipCLI:     true,
		SkipMCP:     true,
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*SavedItemArgs)
			clientID, _ := ClientIDFromContext(ctx)
			return svc.SaveItem(ctx, clientID, a.Item)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpRemoveItem,
		Name:        "Remove Item",
		Description: constants.DescRemoveItem,
		HTTPMethod:  constants.HTTPMethodDELETE,
		HTTPPath:    constants.PathSavedItem,
		ArgsType:    reflect.TypeOf(SavedItemArgs{}),
		SkipCLI:     true,
		SkipMCP:     true,
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			a := args.(*SavedItemArgs)
			clientID, _ := ClientIDFromContext(ctx)
			return svc.RemoveItem(ctx, clientID, a.Item)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpCatalogStats,
		Name:        "Catalog Stats",
		Description: constants.DescCatalogStats,
		HTTPMethod:  constants.HTTPMethodGET,
		HTTPPath:    constants.PathStats,
		CLIUse:      "stats",
		CLIShort:    "Show catalog statistics",
		MCPName:     "cheats_stats",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			return svc.Stats(ctx)
		},
	})

	RegisterOperation(&OperationDefinition{
		ID:          constants.OpReloadCatalog,
		Name:        "Reload Catalog",
		Description: constants.DescReloadCatalog,
		HTTPMethod:  constants.HTTPMethodPOST,
		HTTPPath:    constants.PathReload,
		CLIUse:      "reload",
		CLIShort:    "Reload the catalog and report skipped files",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		SkipMCP:     true,
		Handler: func(ctx context.Context, svc CheatsheetService, args any) (any, error) {
			return svc.Reload(ctx)
		},
	})
}

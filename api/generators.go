package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	mcp "github.com/metoro-io/mcp-golang"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	mcpserver "github.com/opsdeck/cheatsheets/mcp"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
)

// ServiceProvider builds the service lazily, once flags and config are known.
type ServiceProvider func(cmd *cobra.Command) (CheatsheetService, error)

// GenerateHTTPHandlers registers "METHOD path" routes for all operations.
func GenerateHTTPHandlers(mux *http.ServeMux, svc CheatsheetService) {
	for _, op := range sortedOperations() {
		if op.SkipHTTP {
			continue
		}
		mux.HandleFunc(op.HTTPMethod+" "+op.HTTPPath, generateHTTPHandler(op, svc))
	}
}

// generateHTTPHandler creates the HTTP handler for one operation
func generateHTTPHandler(op *OperationDefinition, svc CheatsheetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if op.HTTPHandler != nil {
			op.HTTPHandler(w, r, svc)
			return
		}

		args, err := parseHTTPArgs(r, op)
		if err != nil {
			utils.WriteHTTPError(w, fmt.Sprintf(constants.ResponseInvalidArguments, err), http.StatusBadRequest)
			return
		}

		result, err := op.Handler(r.Context(), svc, args)
		if err != nil {
			writeOperationError(w, r, op, err)
			return
		}
		if err := utils.WriteHTTPJSON(w, result); err != nil {
			utils.ErrorCtx(r.Context(), constants.LogFailedEncodeJSON, "operation", op.ID, "error", err)
		}
	}
}

// HTTPStatus maps an operation error to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidQuery),
		errors.Is(err, catalog.ErrUnknownFilter),
		errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrReloadUnsupported):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeOperationError(w http.ResponseWriter, r *http.Request, op *OperationDefinition, err error) {
	status := HTTPStatus(err)
	msg := err.Error()
	switch {
	case status == http.StatusNotFound && op.NotFound != "":
		msg = op.NotFound
	case status >= http.StatusInternalServerError:
		utils.ErrorCtx(r.Context(), "operation failed", "operation", op.ID, "error", err)
		msg = http.StatusText(status)
	}
	utils.WriteHTTPError(w, msg, status)
}

// parseHTTPArgs parses HTTP request into operation arguments
func parseHTTPArgs(r *http.Request, op *OperationDefinition) (any, error) {
	args := reflect.New(op.ArgsType).Interface()

	switch op.HTTPMethod {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if err := parseBodyArgs(r, args); err != nil {
			return nil, err
		}
	default:
		if err := parseQueryArgs(r, args); err != nil {
			return nil, err
		}
	}
	if err := parsePathArgs(r, args); err != nil {
		return nil, err
	}
	return args, nil
}

// parseQueryArgs fills fields from query parameters named by their json tag
func parseQueryArgs(r *http.Request, args any) error {
	v := reflect.ValueOf(args).Elem()
	t := v.Type()
	query := r.URL.Query()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		name := jsonName(t.Field(i))
		if !field.CanSet() || name == "" {
			continue
		}
		if value := query.Get(name); value != "" {
			if err := setFieldValue(field, value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

// parsePathArgs fills fields tagged with `path` from the matched route
func parsePathArgs(r *http.Request, args any) error {
	v := reflect.ValueOf(args).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		name := t.Field(i).Tag.Get("path")
		if !field.CanSet() || name == "" {
			continue
		}
		if value := r.PathValue(name); value != "" {
			if err := setFieldValue(field, value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

// parseBodyArgs decodes a JSON request body into args. An empty body is allowed.
func parseBodyArgs(r *http.Request, args any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if ct := r.Header.Get(constants.HeaderContentType); ct != "" && !strings.HasPrefix(ct, constants.ContentTypeJSON) {
		return fmt.Errorf("unsupported content type %q", ct)
	}
	if err := json.NewDecoder(r.Body).Decode(args); err != nil {
		return errors.New(constants.ResponseInvalidRequestBody)
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// setFieldValue sets a reflect.Value from a string
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// GenerateMCPTools creates MCP tool registrations for all operations
func GenerateMCPTools(svc CheatsheetService) []mcpserver.ToolRegistration {
	var tools []mcpserver.ToolRegistration
	for _, op := range sortedOperations() {
		if op.SkipMCP {
			continue
		}
		tools = append(tools, mcpserver.ToolRegistration{
			Name:        op.MCPName,
			Description: op.Description,
			Handler:     generateMCPHandler(op, svc),
		})
	}
	return tools
}

var (
	contextType      = reflect.TypeOf((*context.Context)(nil)).Elem()
	toolResponseType = reflect.TypeOf((*mcp.ToolResponse)(nil))
	errorType        = reflect.TypeOf((*error)(nil)).Elem()
)

// generateMCPHandler builds a func(context.Context, <ArgsType>) (*mcp.ToolResponse, error)
// so the MCP server can derive the tool's input schema from the args struct.
func generateMCPHandler(op *OperationDefinition, svc CheatsheetService) any {
	call := func(ctx context.Context, args any) (*mcp.ToolResponse, error) {
		if op.MCPHandler != nil {
			return op.MCPHandler(ctx, args)
		}
		result, err := op.Handler(ctx, svc, args)
		if err != nil {
			return nil, err
		}
		return convertToMCPResponse(result)
	}

	fnType := reflect.FuncOf([]reflect.Type{contextType, op.ArgsType}, []reflect.Type{toolResponseType, errorType}, false)
	fn := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		ctx, _ := in[0].Interface().(context.Context)
		if ctx == nil {
			ctx = context.Background()
		}
		args := reflect.New(op.ArgsType)
		args.Elem().Set(in[1])

		resp, err := call(ctx, args.Interface())
		errVal := reflect.Zero(errorType)
		if err != nil {
			errVal = reflect.ValueOf(&err).Elem()
		}
		return []reflect.Value{reflect.ValueOf(resp), errVal}
	})
	return fn.Interface()
}

// convertToMCPResponse converts operation result to MCP response
func convertToMCPResponse(result any) (*mcp.ToolResponse, error) {
	if result == nil {
		return mcp.NewToolResponse(mcp.NewTextContent("success")), nil
	}
	if str, ok := result.(string); ok {
		return mcp.NewToolResponse(mcp.NewTextContent(str)), nil
	}
	data, err := utils.MarshalJSONIndent(result)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(string(data))), nil
}

// GenerateCLICommands creates CLI commands for all operations
func GenerateCLICommands(provide ServiceProvider) []*cobra.Command {
	var commands []*cobra.Command
	for _, op := range sortedOperations() {
		if op.SkipCLI {
			continue
		}
		commands = append(commands, generateCLICommand(op, provide))
	}
	return commands
}

// generateCLICommand creates a CLI command for the given operation
func generateCLICommand(op *OperationDefinition, provide ServiceProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   op.CLIUse,
		Short: op.CLIShort,
		Long:  op.Description,
		Args:  cobra.MaximumNArgs(positionalCount(op.CLIUse)),
	}
	addCLIFlags(cmd, op.ArgsType)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		svc, err := provide(cmd)
		if err != nil {
			return err
		}
		if op.CLIHandler != nil {
			return op.CLIHandler(cmd, args, svc)
		}
		return runGeneratedCLICommand(cmd, args, op, svc)
	}
	return cmd
}

func positionalCount(use string) int {
	return strings.Count(use, "<")
}

// addCLIFlags adds flags to a CLI command based on the args type
func addCLIFlags(cmd *cobra.Command, argsType reflect.Type) {
	for i := 0; i < argsType.NumField(); i++ {
		field := argsType.Field(i)
		flagTag := field.Tag.Get("flag")
		descTag := field.Tag.Get("description")
		if flagTag == "" || flagTag == "-" {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			cmd.Flags().String(flagTag, "", descTag)
		case reflect.Bool:
			cmd.Flags().Bool(flagTag, false, descTag)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			cmd.Flags().Int(flagTag, 0, descTag)
		}
	}
}

// runGeneratedCLICommand executes a generated CLI command
func runGeneratedCLICommand(cmd *cobra.Command, args []string, op *OperationDefinition, svc CheatsheetService) error {
	opArgs, err := parseCLIArgs(cmd, args, op.ArgsType)
	if err != nil {
		return err
	}
	result, err := op.Handler(cmd.Context(), svc, opArgs)
	if err != nil {
		return err
	}
	return outputCLIResult(result)
}

// parseCLIArgs fills the leading string fields from positional arguments,
// then applies any flags that were set explicitly.
func parseCLIArgs(cmd *cobra.Command, args []string, argsType reflect.Type) (any, error) {
	target := reflect.New(argsType).Interface()
	targetVal := reflect.ValueOf(target).Elem()

	for i, arg := range args {
		if i >= targetVal.NumField() || targetVal.Field(i).Kind() != reflect.String {
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
		targetVal.Field(i).SetString(arg)
	}

	for i := 0; i < argsType.NumField(); i++ {
		field := targetVal.Field(i)
		flagTag := argsType.Field(i).Tag.Get("flag")
		if !field.CanSet() || flagTag == "" || flagTag == "-" || !cmd.Flags().Changed(flagTag) {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			value, err := cmd.Flags().GetString(flagTag)
			if err != nil {
				return nil, fmt.Errorf("failed to get string flag %s: %w", flagTag, err)
			}
			field.SetString(value)
		case reflect.Bool:
			value, err := cmd.Flags().GetBool(flagTag)
			if err != nil {
				return nil, fmt.Errorf("failed to get bool flag %s: %w", flagTag, err)
			}
			field.SetBool(value)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			value, err := cmd.Flags().GetInt(flagTag)
			if err != nil {
				return nil, fmt.Errorf("failed to get int flag %s: %w", flagTag, err)
			}
			field.SetInt(int64(value))
		}
	}
	return target, nil
}

// outputCLIResult outputs the result of a CLI operation
func outputCLIResult(result any) error {
	if result == nil {
		utils.Info("Success")
		return nil
	}
	if str, ok := result.(string); ok {
		utils.User("%s", str)
		return nil
	}
	data, err := utils.MarshalJSONIndent(result)
	if err != nil {
		return err
	}
	utils.User("%s", string(data))
	return nil
}

// AttachCLICommands adds all generated commands to root
func AttachCLICommands(root *cobra.Command, provide ServiceProvider) {
	for _, cmd := range GenerateCLICommands(provide) {
		root.AddCommand(cmd)
	}
}

package constants

// HTTP Response Messages
const (
	ResponseInvalidRequestBody   = "invalid request body"
	ResponseCheatsheetNotFound   = "Cheatsheet not found"
	ResponseCategoryNotFound     = "Category not found"
	ResponseUnknownFilter        = "unknown featured filter"
	ResponseMissingItem          = "missing item"
	ResponseRateLimited          = "rate limit exceeded"
	ResponseReloadNotSupported   = "catalog reload is not supported for this content source"
	ResponseInvalidArguments     = "Invalid arguments: %v"
	ResponsePageNotFoundTemplate = "404.html"
)

// Error Messages for Logging
const (
	LogFailedEncodeJSON       = "Failed to encode JSON response"
	LogFailedWriteText        = "Failed to write text response"
	LogFailedWriteHealthCheck = "Failed to write health check response: %v"
	LogFailedRenderPage       = "Failed to render page"
)

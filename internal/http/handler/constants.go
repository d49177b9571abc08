package handler

const (
	paramID    = "id"
	paramSlug  = "slug"
	paramState = "state"
	paramType  = "type"

	queryPage      = "page"
	queryLimit     = "limit"
	querySort      = "sort"
	queryOrder     = "order"
	queryState     = "state"
	queryType      = "type"
	querySearch    = "search"
	querySearchQ   = "q"
	queryPermanent = "permanent"
	queryExclude   = "exclude"

	orderAsc        = "asc"
	minSearchLength = 2
	multipartMemory = 32 << 20
	fileFieldSuffix = "[]"
)

const (
	msgProjectCreated     = "Project created successfully"
	msgProjectUpdated     = "Project updated successfully"
	msgProjectDeactivated = "Project deactivated successfully"
	msgProjectDeleted     = "Project deleted successfully"
	msgProjectActivated   = "Project activated successfully"

	msgInvalidProjectID        = "Invalid project ID format"
	msgSlugRequired            = "Slug is required"
	msgSearchTermTooShort      = "Search term must be at least 2 characters"
	msgInvalidPage             = "page must be a positive integer"
	msgInvalidLimit            = "limit must be a positive integer"
	msgInvalidSort             = "unsupported sort field"
	msgInvalidPermanent        = "permanent must be true or false"
	msgInvalidMultipart        = "request must be multipart/form-data"
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgIsActiveRequired        = "isActive is required"
	msgFileUnreadable          = "uploaded file could not be read"
)

package auth

const (
	ContextKeyAdminID     = "admin_id"
	ContextKeyAdminRole   = "admin_role"
	ContextKeyPermissions = "admin_permissions"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgAdminNotAuthenticated   = "admin not authenticated"
	msgPermissionDenied        = "insufficient permissions: %s required"
	msgInvalidAdminIDCtx       = "invalid admin ID in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgMissingSubject          = "token has no subject"
)

// Permission names a single admin capability carried in the token.
type Permission string

const (
	PermissionProjectsCreate Permission = "projects.create"
	PermissionProjectsUpdate Permission = "projects.update"
	PermissionProjectsDelete Permission = "projects.delete"
	PermissionAuditRead      Permission = "audit.read"
	PermissionDebugProfile   Permission = "debug.profile"
)

// RoleSuperAdmin holds every permission regardless of the token's list.
const RoleSuperAdmin = "super-admin"

package i18n

// Authentication
var (
	ErrNotAuthenticated   = NewErrorWithCode("ErrNotAuthenticated", "Not authenticated", ErrorUnauthorized)
	ErrInvalidCredentials = NewErrorWithCode("ErrInvalidCredentials", "Incorrect email or password", ErrorUnauthorized)
	ErrInvalidToken       = NewErrorWithCode("ErrInvalidToken", "Invalid token", ErrorUnauthorized)
	ErrTokenExpired       = NewErrorWithCode("ErrTokenExpired", "Token has expired", ErrorUnauthorized)
	ErrUserNotFound       = NewErrorWithCode("ErrUserNotFound", "User not found", ErrorUnauthorized)
	ErrEmailExists        = NewErrorWithCode("ErrEmailExists", "User with this email already exists", ErrorBadRequest)
)

// Request validation
var (
	ErrInvalidRequest    = NewErrorWithCode("ErrInvalidRequest", "Invalid request: {{.Reason}}", ErrorBadRequest)
	ErrInvalidDate       = NewErrorWithCode("ErrInvalidDate", "Invalid date for {{.Field}}: expected YYYY-MM-DD", ErrorBadRequest)
	ErrDateRangeRequired = NewErrorWithCode("ErrDateRangeRequired", "Both start and end dates are required", ErrorBadRequest)
	ErrDateRequired      = NewErrorWithCode("ErrDateRequired", "The date parameter is required", ErrorBadRequest)
	ErrInvalidLimit      = NewErrorWithCode("ErrInvalidLimit", "limit must be an integer between {{.Min}} and {{.Max}}", ErrorBadRequest)
	ErrInvalidID         = NewErrorWithCode("ErrInvalidID", "Invalid identifier: {{.ID}}", ErrorBadRequest)
)

// Resources
var (
	ErrPedidoNotFound = NewErrorWithCode("ErrPedidoNotFound", "Pedido not found", ErrorNotFound)
	ErrRouteNotFound  = NewErrorWithCode("ErrRouteNotFound", "Not Found", ErrorNotFound)
)

// Server side
var (
	ErrRateLimited     = NewErrorWithCode("ErrRateLimited", "Rate limit exceeded: {{.Limit}} per {{.Window}}", ErrorTooManyRequests)
	ErrInternalServer  = NewErrorWithCode("ErrInternalServer", "Internal server error", ErrorInternalServer)
	ErrDatabaseOffline = NewErrorWithCode("ErrDatabaseOffline", "Database unavailable", ErrorServiceUnavailable)
)

package cnst

// gin context keys
const (
	CtxKeyCurrentUser = "currentUser"
	CtxKeyClaims      = "claims"
	CtxKeyRequestID   = "requestID"
)

const (
	HeaderRequestID       = "X-Request-ID"
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"
	HeaderRetryAfter      = "Retry-After"

	BearerScheme = "Bearer"
	TokenType    = "bearer"
)

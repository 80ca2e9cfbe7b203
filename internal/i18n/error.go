package i18n

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents an HTTP status code
type ErrorCode int

// Standard HTTP status codes
const (
	ErrorBadRequest         ErrorCode = http.StatusBadRequest
	ErrorUnauthorized       ErrorCode = http.StatusUnauthorized
	ErrorForbidden          ErrorCode = http.StatusForbidden
	ErrorNotFound           ErrorCode = http.StatusNotFound
	ErrorConflict           ErrorCode = http.StatusConflict
	ErrorTooManyRequests    ErrorCode = http.StatusTooManyRequests
	ErrorInternalServer     ErrorCode = http.StatusInternalServerError
	ErrorServiceUnavailable ErrorCode = http.StatusServiceUnavailable
)

// ErrorWithCode is a translatable error that carries its HTTP status
type ErrorWithCode struct {
	// MessageID is the key used for translation lookup
	MessageID string
	// DefaultMessage is the English text used when no translation exists
	DefaultMessage string
	Code           ErrorCode
	// Data holds template parameters for the message
	Data map[string]any
}

// NewErrorWithCode creates a new error with a code
func NewErrorWithCode(messageID, defaultMessage string, code ErrorCode) *ErrorWithCode {
	return &ErrorWithCode{
		MessageID:      messageID,
		DefaultMessage: defaultMessage,
		Code:           code,
	}
}

// WithParam returns a copy of the error with one more template parameter,
// leaving shared package-level errors untouched.
func (e *ErrorWithCode) WithParam(key string, value any) *ErrorWithCode {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value

	cp := *e
	cp.Data = data
	return &cp
}

// WithHttpCode returns a copy of the error answering with another status
func (e *ErrorWithCode) WithHttpCode(code ErrorCode) *ErrorWithCode {
	cp := *e
	cp.Code = code
	return &cp
}

// Error renders the English message
func (e *ErrorWithCode) Error() string {
	return renderDefault(e.DefaultMessage, e.Data)
}

// Is matches errors sharing the same message ID, so copies made by WithParam
// still compare equal to the package-level error they came from.
func (e *ErrorWithCode) Is(target error) bool {
	var t *ErrorWithCode
	if !errors.As(target, &t) {
		return false
	}
	return t.MessageID == e.MessageID
}

// StatusCode returns the HTTP status as an int
func (e *ErrorWithCode) StatusCode() int {
	return int(e.Code)
}

// TranslateByContext translates the error based on the context's language preference
func (e *ErrorWithCode) TranslateByContext(c *gin.Context) string {
	return GetTranslator().Translate(e.MessageID, e.DefaultMessage, ContextLanguage(c), e.Data)
}

// AsErrorWithCode unwraps err into an ErrorWithCode if possible
func AsErrorWithCode(err error) (*ErrorWithCode, bool) {
	var withCode *ErrorWithCode
	if errors.As(err, &withCode) {
		return withCode, true
	}
	return nil, false
}

// TranslateError translates an error using the context's language preference.
// Errors outside this package are reported as internal errors.
func TranslateError(c *gin.Context, err error) string {
	if err == nil {
		return ""
	}
	if withCode, ok := AsErrorWithCode(err); ok {
		return withCode.TranslateByContext(c)
	}
	return ErrInternalServer.TranslateByContext(c)
}

func renderDefault(msg string, data map[string]any) string {
	for k, v := range data {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{{.%s}}", k), fmt.Sprintf("%v", v))
	}
	return msg
}

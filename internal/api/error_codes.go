// internal/api/error_codes.go
package api

// API error codes not already carried by an AppError
const (
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorUnauthorized  = "UNAUTHORIZED"
	ErrorInternalError = "INTERNAL_ERROR"

	ErrorPasswordRequired  = "PASSWORD_REQUIRED"
	ErrorWrongPassword     = "WRONG_PASSWORD"
	ErrorSessionInvalid    = "SESSION_INVALID"
	ErrorTooManyAttempts   = "RATE_LIMIT_EXCEEDED"
	ErrorAttemptNotLogged  = "ATTEMPT_NOT_LOGGED"
	ErrorHistoryUnreadable = "LOG_STORE_CORRUPT"
)

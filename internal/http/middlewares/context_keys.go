package middlewares

const (
	ctxUserIDKey = "auth.userID"
	ctxRoleKey   = "auth.role"

	// CtxRequestID is shared with the logging middleware and respond
	// helpers.
	CtxRequestID = "request_id"
)

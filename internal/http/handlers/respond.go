package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError is one entry of the "errors" array in the failure
// envelope: {success:false, message, errors?}.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondError(ctx *gin.Context, status int, message string, fields []FieldError) {
	body := gin.H{
		"success": false,
		"message": message,
	}

	if len(fields) > 0 {
		body["errors"] = fields
	}

	ctx.JSON(status, body)
}

func RespondValidation(ctx *gin.Context, fields []FieldError) {
	RespondError(ctx, http.StatusBadRequest, "Validation Error", fields)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message, nil)
}

// RespondInternal never leaks detail to the client; the cause is logged
// where the failure happened.
func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

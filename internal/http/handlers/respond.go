package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const prettyParam = "pretty"

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// wantsPretty reports whether ?pretty is present, with or without a value.
func wantsPretty(ctx *gin.Context) bool {
	_, ok := ctx.GetQuery(prettyParam)
	return ok
}

// RespondJSON writes payload as JSON, indented when the caller asked for it.
func RespondJSON(ctx *gin.Context, status int, payload interface{}) {
	if wantsPretty(ctx) {
		ctx.IndentedJSON(status, payload)
		return
	}
	ctx.JSON(status, payload)
}

func RespondNoContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	RespondJSON(ctx, status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

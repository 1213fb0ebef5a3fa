package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/geocoder89/subscriberhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with ctx.Error.
// Every subscriber error kind answers 500; the body carries the kind as code.
// Errors without a kind are logged and hidden behind a generic message.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if len(ctx.Errors) == 0 || ctx.Writer.Written() {
			return
		}

		err := ctx.Errors.Last().Err

		var kindErr *subscriber.Error
		if !errors.As(err, &kindErr) {
			if log != nil {
				log.ErrorContext(ctx.Request.Context(), "unhandled error", "err", err)
			}
			handlers.RespondInternal(ctx, "Internal server error")
			return
		}

		handlers.RespondError(ctx, statusFor(kindErr.Kind), string(kindErr.Kind), kindErr.Message, nil)
	}
}

// statusFor keeps the flat contract: clients only ever see 500 on failure.
func statusFor(subscriber.Kind) int {
	return http.StatusInternalServerError
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dimitrije/workspace-invites/internal/apperr"
	"github.com/dimitrije/workspace-invites/pkg/dto"
	"github.com/go-playground/validator/v10"
	"github.com/m1z23r/drift/pkg/drift"
)

var validate = validator.New()

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindNotAuthorized:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error. Upstream failures are logged with
// their cause and reach the client only as "internal error".
func writeError(c *drift.Context, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUpstream {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	_ = c.JSON(statusFor(kind), dto.ErrorResponse{Error: apperr.Message(err), Code: apperr.Code(err)})
}

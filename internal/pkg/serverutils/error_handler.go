package serverutils

import (
	"errors"

	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/lease"
	"ai-sitebuilder-be/pkg/publish"
	"ai-sitebuilder-be/pkg/storage"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error from the service layer to an HTTP status and whether the
// client may retry the same request.
func StatusFor(err error) (int, bool) {
	var fe *fiber.Error
	var ve *ValidationError

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, false
	case errors.As(err, &fe):
		return fe.Code, false
	case errors.Is(err, storage.ErrDocumentNotFound):
		return fiber.StatusNotFound, false
	case errors.Is(err, blockedit.ErrNothingToEdit), errors.Is(err, blockedit.ErrNoBlocks):
		return fiber.StatusNotFound, false
	case errors.Is(err, lease.ErrNotAcquired):
		return fiber.StatusConflict, true
	case errors.Is(err, publish.ErrNotPublished):
		return fiber.StatusConflict, false
	case errors.Is(err, publish.ErrUnknownTarget), errors.Is(err, publish.ErrInvalidDomain):
		return fiber.StatusBadRequest, false
	case errors.Is(err, publish.ErrDomainCheckerUnset):
		return fiber.StatusServiceUnavailable, false
	case errors.Is(err, blockedit.ErrCollaborator):
		return fiber.StatusBadGateway, true
	case errors.Is(err, blockedit.ErrStorage):
		return fiber.StatusInternalServerError, true
	default:
		return fiber.StatusInternalServerError, false
	}
}

// ErrorHandlerMiddleware renders handler errors as ErrorBody and logs server-side
// failures through log.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, retryable := StatusFor(err)
		body := ErrorResponse(code, err.Error(), retryable)

		var ve *ValidationError
		if errors.As(err, &ve) {
			body.Message = "Validation failed"
			body.Errors = ve.Fields
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method":    ctx.Method(),
				"path":      ctx.Path(),
				"status":    code,
				"retryable": retryable,
				"error":     err.Error(),
			})
		}

		return ctx.Status(code).JSON(body)
	}
}

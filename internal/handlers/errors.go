package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/services"
)

// StatusClientClosedRequest is returned when the caller went away before the pipeline finished.
const StatusClientClosedRequest = 499

const (
	CodeValidation        = "validation_error"
	CodeRoleRejected      = "invalid_job_role"
	CodeBackendsExhausted = "all_backends_exhausted"
	CodeRateLimited       = "rate_limited"
	CodeMalformedOutput   = "malformed_model_output"
	CodeTimeout           = "timeout"
	CodeCancelled         = "request_cancelled"
	CodeInternal          = "internal_error"
)

// respondError renders a service error as a distinguishable JSON payload.
func respondError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	entry := log.WithError(err).WithFields(log.Fields{
		"path":   c.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Error("❌ Request failed")
	} else {
		entry.Warn("⚠️ Request rejected")
	}
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, models.ErrorResponse) {
	var rejected *services.RoleRejectedError
	switch {
	case errors.As(err, &rejected):
		isValid := false
		return fiber.StatusBadRequest, models.ErrorResponse{Error: rejected.Error(), Code: CodeRoleRejected, IsValid: &isValid}
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Code: CodeValidation}
	case errors.Is(err, services.ErrAllBackendsExhausted):
		if services.ClassOf(err) == services.ClassRateLimited {
			return fiber.StatusTooManyRequests, models.ErrorResponse{
				Error: "AI service is rate limited. Please try again in a moment.",
				Code:  CodeRateLimited,
			}
		}
		return fiber.StatusServiceUnavailable, models.ErrorResponse{
			Error: "AI service is temporarily unavailable. Please try again later.",
			Code:  CodeBackendsExhausted,
		}
	case errors.Is(err, services.ErrMalformedModelOutput):
		return fiber.StatusBadGateway, models.ErrorResponse{Error: "AI service returned an unusable response", Code: CodeMalformedOutput}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, models.ErrorResponse{Error: "Request cancelled", Code: CodeCancelled}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, models.ErrorResponse{Error: "Request timed out", Code: CodeTimeout}
	default:
		return fiber.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error", Code: CodeInternal}
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msg, Code: CodeValidation})
}

// RequestTimeout bounds every downstream call of a request, including retry backoff.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

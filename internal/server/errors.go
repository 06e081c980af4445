package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stripesync/internal/checkout"
	"github.com/smallbiznis/stripesync/internal/reconcile"
	"github.com/smallbiznis/stripesync/internal/stripemodel"
	"github.com/smallbiznis/stripesync/internal/webhook"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var authErr *webhook.AuthError
	var schemaErr *stripemodel.SchemaError

	switch {
	case errors.As(err, &authErr):
		// flat 400 rejects the delivery without leaking which check failed
		return http.StatusBadRequest, errorPayload{
			Type:    "authentication_error",
			Message: "invalid webhook signature",
		}
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "schema_violation",
			Message: schemaErr.Error(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, checkout.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, reconcile.ErrUserCreationDisabled):
		// fatal on the delivery path; the provider redelivers once the
		// matching user exists
		return http.StatusInternalServerError, errorPayload{
			Type:    "user_creation_disabled",
			Message: "customer has no matching local user",
		}
	default:
		var reconcileErr *reconcile.ReconciliationError
		if errors.As(err, &reconcileErr) {
			// a 5xx makes the provider redeliver once the missing
			// dependency has been synced
			return http.StatusInternalServerError, errorPayload{
				Type:    "reconciliation_error",
				Message: reconcileErr.Error(),
			}
		}
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/middleware"
	"github.com/Subham7008/Quick-Serve/internal/service"
)

// requestTimeout bounds the store work done for a single request.
const requestTimeout = 5 * time.Second

// envelope is the body of every response.  status repeats the HTTP code
// as a string and success is "true" or "false".
type envelope struct {
	Status  string `json:"status"`
	Success string `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, envelope{
		Status:  strconv.Itoa(code),
		Success: "true",
		Message: message,
		Data:    data,
	})
}

// respondError turns err into the error envelope.  Anything that is not an
// *apperr.Error is logged and answered with a generic 500.
func respondError(c echo.Context, logger *slog.Logger, err error) error {
	ae, ok := apperr.As(err)
	if !ok {
		logger.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "err", err)
		ae = apperr.Internal(err)
	}
	code := apperr.HTTPStatus(ae.Kind)
	body := envelope{
		Status:  strconv.Itoa(code),
		Success: "false",
		Message: ae.Message,
	}
	switch ae.Kind {
	case apperr.KindValidation:
		if len(ae.Fields) > 0 {
			body.Error = ae.Fields
		}
	case apperr.KindConflict:
		body.Error = echo.Map{"field": ae.Field}
	case apperr.KindInternal:
		body.Message = "internal server error"
	}
	return c.JSON(code, body)
}

// bind decodes the request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// actor returns the caller stored by the JWT middleware.
func actor(c echo.Context) (service.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return service.Identity{}, apperr.Unauthorized("authentication required")
	}
	return id, nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}


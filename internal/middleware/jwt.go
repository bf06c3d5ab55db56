package middleware

import (
    "context"
    "log/slog"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/Subham7008/Quick-Serve/internal/apperr"
    "github.com/Subham7008/Quick-Serve/internal/service"
)

// Authenticator resolves a raw bearer token to a caller.  AuthService
// implements it.
type Authenticator interface {
    Authenticate(ctx context.Context, raw string) (service.Identity, error)
}

// Rejection body shared by every authentication failure.
const (
    unauthorizedMessage = "User Unauthorized"
    unauthorizedDetail  = "invalid or expired token"
)

// JWTAuth returns an Echo middleware that validates the Bearer token in the
// Authorization header and stores the resolved service.Identity on the
// context.  Every failure answers 403 with the same envelope; the precise
// reason is only logged.
func JWTAuth(auth Authenticator, logger *slog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            reject := func(reason any) error {
                logger.Debug("auth rejected", "reason", reason, "path", c.Path())
                return deny(c, http.StatusForbidden, unauthorizedMessage, unauthorizedDetail)
            }

            header := c.Request().Header.Get(echo.HeaderAuthorization)
            if header == "" {
                return reject("missing header")
            }
            parts := strings.Fields(header)
            if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
                return reject("malformed header")
            }

            id, err := auth.Authenticate(c.Request().Context(), parts[1])
            if err != nil {
                if ae, ok := apperr.As(err); !ok || ae.Kind != apperr.KindUnauthorized {
                    logger.Error("token verification failed", "err", err)
                }
                return reject(err)
            }

            SetIdentity(c, id)
            return next(c)
        }
    }
}

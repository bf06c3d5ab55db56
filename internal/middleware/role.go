package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/Subham7008/Quick-Serve/internal/model"
)

// RequireKind lets a request through only when the caller resolved by
// JWTAuth is one of the given identity kinds.  Profile routes use it to keep
// shop owners out of the staff user endpoints.
func RequireKind(kinds ...model.SubjectKind) echo.MiddlewareFunc {
    allowed := make(map[model.SubjectKind]bool, len(kinds))
    for _, k := range kinds {
        allowed[k] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := IdentityFrom(c)
            if !ok || !allowed[id.Kind] {
                return deny(c, http.StatusForbidden, "forbidden", "")
            }
            return next(c)
        }
    }
}

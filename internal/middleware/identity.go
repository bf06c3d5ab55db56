package middleware

// identity.go moves the authenticated caller between middleware and
// handlers.  JWTAuth stores it; handlers read it back with IdentityFrom.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/Subham7008/Quick-Serve/internal/service"
)

const identityKey = "identity"

// SetIdentity stores id on the request context.
func SetIdentity(c echo.Context, id service.Identity) {
    c.Set(identityKey, id)
}

// IdentityFrom returns the caller stored by JWTAuth.  ok is false on
// routes that are not behind the middleware.
func IdentityFrom(c echo.Context) (service.Identity, bool) {
    id, ok := c.Get(identityKey).(service.Identity)
    return id, ok
}

// subjectID returns the caller id, or "anon" when the request is
// unauthenticated.
func subjectID(c echo.Context) string {
    if id, ok := IdentityFrom(c); ok && id.ID != "" {
        return id.ID
    }
    return "anon"
}

// deny writes the error envelope and stops the chain.
func deny(c echo.Context, status int, message, detail string) error {
    body := echo.Map{
        "status":  strconv.Itoa(status),
        "success": "false",
        "message": message,
    }
    if detail != "" {
        body["error"] = detail
    }
    return c.JSON(status, body)
}

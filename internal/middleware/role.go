package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes
    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/alzablotsky/coupon-system/internal/model" // model defines the client types
)

// RequireClientType returns a middleware function that enforces that the
// authenticated principal is one of the specified client types.  The
// accepted kinds correspond to the values stored in the JWT's "kind"
// claim.  If the principal's kind is not in the allowed set, the request
// is aborted with a 403 Forbidden response.  It assumes a previous
// middleware has extracted the kind into the context under the key
// "client_type".
func RequireClientType(kinds ...model.ClientType) echo.MiddlewareFunc {
    // Build a set of allowed kinds for constant‑time lookups.  The map
    // value is a boolean and is always true when present.
    allowed := make(map[string]bool, len(kinds))
    for _, k := range kinds {
        allowed[string(k)] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Retrieve the kind from context.  It should have been
            // stored by JWTAuth middleware as a string.  If not
            // present or of wrong type, treat as missing.
            v := c.Get("client_type")
            kind, ok := v.(string)
            if !ok || !allowed[kind] {
                // If the kind is missing or not allowed, return 403
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            // Otherwise call the next handler in the chain
            return next(c)
        }
    }
}

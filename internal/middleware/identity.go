package middleware

// identity.go defines the typed authorization context placed on every
// request by Authenticate.  Handlers and templates read it through
// CurrentIdentity instead of digging through raw JWT claims.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// identityKey is the echo context key holding the Identity.
const identityKey = "identity"

// Identity describes who is making the request.  The zero value is an
// anonymous visitor.
type Identity struct {
    UserID    uint64
    Username  string
    Superuser bool
}

// Authenticated reports whether the request carries a valid token.
func (i Identity) Authenticated() bool { return i.UserID != 0 }

// IsAdmin reports whether the identity may change the catalog.
func (i Identity) IsAdmin() bool { return i.Authenticated() && i.Superuser }

// CurrentIdentity returns the identity stored by Authenticate, or the
// anonymous identity.
func CurrentIdentity(c echo.Context) Identity {
    if id, ok := c.Get(identityKey).(Identity); ok {
        return id
    }
    return Identity{}
}

// SetIdentity stores id on the request context.
func SetIdentity(c echo.Context, id Identity) { c.Set(identityKey, id) }

// userID returns the user id as a string for rate-limit keys, or "guest".
func userID(c echo.Context) string {
    id := CurrentIdentity(c)
    if !id.Authenticated() {
        return "guest"
    }
    return strconv.FormatUint(id.UserID, 10)
}

package middleware // middleware provides shared request processing for handlers

import (
    "net/http"
    "net/url"

    "github.com/labstack/echo/v4"
)

// LoginPath is where RequireAdmin sends visitors who may not edit.
const LoginPath = "/accounts/login/"

// RequireAdmin returns a middleware that lets only superusers through.
// Anybody else is redirected to the login page with the original path in
// the "next" parameter, before the wrapped handler runs.  It assumes
// Authenticate has already stored the identity.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !CurrentIdentity(c).IsAdmin() {
                return c.Redirect(http.StatusFound, LoginURL(c.Request().URL.RequestURI()))
            }
            return next(c)
        }
    }
}

// LoginURL builds the login address that returns to next afterwards.
func LoginURL(next string) string {
    if next == "" {
        return LoginPath
    }
    return LoginPath + "?next=" + url.QueryEscape(next)
}

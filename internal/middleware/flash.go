package middleware

import (
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"
)

const (
    flashCookie = "flash"
    flashKey    = "flash"
)

// Flash moves a message left by SetFlash on the previous response into
// the request context and expires the cookie so it is shown only once.
func Flash() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if ck, err := c.Cookie(flashCookie); err == nil && ck.Value != "" {
                if msg, err := url.QueryUnescape(ck.Value); err == nil {
                    c.Set(flashKey, msg)
                }
                c.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, Expires: time.Unix(0, 0)})
            }
            return next(c)
        }
    }
}

// SetFlash stores msg for the next page the browser loads.
func SetFlash(c echo.Context, msg string) {
    c.SetCookie(&http.Cookie{
        Name:     flashCookie,
        Value:    url.QueryEscape(msg),
        Path:     "/",
        MaxAge:   60,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}

// FlashMessage returns the message carried into this request, if any.
func FlashMessage(c echo.Context) string {
    s, _ := c.Get(flashKey).(string)
    return s
}

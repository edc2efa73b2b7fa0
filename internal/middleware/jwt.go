package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/logging"
    "github.com/iliyamo/film-catalog/internal/utils"
)

// Cookie names used by the login flow.
const (
    AccessCookie  = "access_token"
    RefreshCookie = "refresh_token"
)

// Refresher issues a fresh access token from a raw refresh token.  The
// auth handler implements it.
type Refresher interface {
    RefreshAccess(ctx context.Context, rawRefresh string) (utils.AccessToken, utils.Claims, error)
}

// Authenticate returns an Echo middleware that resolves the caller's
// identity.  The access token is read from the access_token cookie or
// from an "Authorization: Bearer" header.  When the access token is
// missing or expired but a refresh_token cookie is present, refresher is
// asked for a new access token which is written back as a cookie.  A
// request without valid tokens continues as anonymous; gating is left to
// RequireAdmin.
func Authenticate(secret string, refresher Refresher) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw := accessToken(c); raw != "" {
                if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
                    SetIdentity(c, identityFromClaims(claims))
                    return next(c)
                }
            }

            if refresher != nil {
                if rc, err := c.Cookie(RefreshCookie); err == nil && rc.Value != "" {
                    tok, claims, err := refresher.RefreshAccess(c.Request().Context(), rc.Value)
                    if err == nil {
                        SetAccessCookie(c, tok)
                        SetIdentity(c, identityFromClaims(claims))
                    } else {
                        logging.Debug().Err(err).Msg("refresh token rejected")
                    }
                }
            }
            return next(c)
        }
    }
}

// accessToken returns the raw token from the cookie, falling back to a
// Bearer header.
func accessToken(c echo.Context) string {
    if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
        return ck.Value
    }
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    return ""
}

func identityFromClaims(cl utils.Claims) Identity {
    id, _ := cl.UserID()
    return Identity{UserID: id, Username: cl.Username, Superuser: cl.Superuser}
}

// SetAccessCookie writes the access token cookie.
func SetAccessCookie(c echo.Context, tok utils.AccessToken) {
    c.SetCookie(&http.Cookie{
        Name:     AccessCookie,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}

// SetRefreshCookie writes the refresh token cookie.
func SetRefreshCookie(c echo.Context, tok utils.RefreshToken) {
    c.SetCookie(&http.Cookie{
        Name:     RefreshCookie,
        Value:    tok.Raw,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}

// ClearAuthCookies expires both token cookies.
func ClearAuthCookies(c echo.Context) {
    for _, name := range []string{AccessCookie, RefreshCookie} {
        c.SetCookie(&http.Cookie{
            Name:     name,
            Value:    "",
            Path:     "/",
            Expires:  time.Unix(0, 0),
            MaxAge:   -1,
            HttpOnly: true,
            SameSite: http.SameSiteLaxMode,
        })
    }
}

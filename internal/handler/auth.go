package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/config"
    "github.com/iliyamo/film-catalog/internal/logging"
    "github.com/iliyamo/film-catalog/internal/middleware"
    "github.com/iliyamo/film-catalog/internal/repository"
    "github.com/iliyamo/film-catalog/internal/utils"
    "github.com/iliyamo/film-catalog/internal/view"
)

// MsgBadCredentials is shown above the login form after a failed attempt.
const MsgBadCredentials = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."

// errInactiveUser rejects refresh tokens of disabled accounts.
var errInactiveUser = errors.New("user is inactive")

// AuthHandler bundles dependencies for the login endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// LoginForm handles GET /accounts/login/.
func (h *AuthHandler) LoginForm(c echo.Context) error {
    return renderLogin(c, safeNext(c.QueryParam("next")), "", "")
}

// Login handles POST /accounts/login/.  On success it sets the access and
// refresh cookies and redirects to next.  Wrong credentials re-render the
// form with status 200.
func (h *AuthHandler) Login(c echo.Context) error {
    username := strings.TrimSpace(c.FormValue("username"))
    password := c.FormValue("password")
    next := safeNext(c.FormValue("next"))
    if username == "" || password == "" {
        return renderLogin(c, next, username, MsgBadCredentials)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, username)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return renderLogin(c, next, username, MsgBadCredentials)
        }
        return err
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
        logging.Info().Str("username", username).Str("ip", c.RealIP()).Msg("login rejected")
        return renderLogin(c, next, username, MsgBadCredentials)
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.IsSuperuser, h.Cfg.AccessTTLMin)
    if err != nil {
        return err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return err
    }
    middleware.SetAccessCookie(c, access)
    middleware.SetRefreshCookie(c, refresh)
    logging.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("user logged in")
    return c.Redirect(http.StatusFound, next)
}

// Logout handles POST /accounts/logout/.  The refresh token of this
// browser is revoked and both cookies are cleared.
func (h *AuthHandler) Logout(c echo.Context) error {
    if rc, err := c.Cookie(middleware.RefreshCookie); err == nil && rc.Value != "" {
        ctx, cancel := reqCtx(c)
        defer cancel()
        if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(rc.Value)); err != nil {
            logging.Warn().Err(err).Msg("revoke refresh token failed")
        }
    }
    middleware.ClearAuthCookies(c)
    return c.Redirect(http.StatusFound, "/")
}

// RefreshAccess validates a refresh token and issues a new access token
// without rotating the refresh token.  It implements
// middleware.Refresher.
func (h *AuthHandler) RefreshAccess(ctx context.Context, rawRefresh string) (utils.AccessToken, utils.Claims, error) {
    userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(strings.TrimSpace(rawRefresh)))
    if err != nil {
        return utils.AccessToken{}, utils.Claims{}, err
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return utils.AccessToken{}, utils.Claims{}, err
    }
    if !u.IsActive {
        return utils.AccessToken{}, utils.Claims{}, errInactiveUser
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.IsSuperuser, h.Cfg.AccessTTLMin)
    if err != nil {
        return utils.AccessToken{}, utils.Claims{}, err
    }
    claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, access.Token)
    if err != nil {
        return utils.AccessToken{}, utils.Claims{}, err
    }
    return access, claims, nil
}

func renderLogin(c echo.Context, next, username, msg string) error {
    return render(c, "login", view.M{"next": next, "username": username, "error": msg})
}

// safeNext keeps redirects on this site: only absolute paths are
// accepted, and protocol-relative ones are not.
func safeNext(next string) string {
    if next == "" || next[0] != '/' || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
        return "/"
    }
    return next
}

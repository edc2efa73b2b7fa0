package router // package router wires handlers and middleware onto an Echo instance

import (
    "database/sql"
    "net/http"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/film-catalog/internal/handler"
    "github.com/iliyamo/film-catalog/internal/middleware"
)

// Deps is everything New needs to build the server.
type Deps struct {
    DB        *sql.DB
    Catalog   *handler.CatalogHandler
    Auth      *handler.AuthHandler
    Renderer  echo.Renderer
    JWTSecret string
    MediaRoot string

    // LoginLimiter and AdminLimiter throttle login attempts and catalog
    // mutations.  Nil means unlimited.
    LoginLimiter echo.MiddlewareFunc
    AdminLimiter echo.MiddlewareFunc

    // CSRF enables the token check on unsafe methods.  Forms carry the
    // token in the csrfmiddlewaretoken field.
    CSRF bool
}

// New returns an Echo instance with every route registered.
func New(d Deps) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Renderer = d.Renderer
    e.HTTPErrorHandler = handler.ErrorHandler

    // Django-style URLs: /films -> /films/.  Static files and the health
    // check keep their exact paths.
    e.Pre(echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
        RedirectCode: http.StatusMovedPermanently,
        Skipper: func(c echo.Context) bool {
            p := c.Request().URL.Path
            return strings.HasPrefix(p, "/media/") || p == "/healthz"
        },
    }))

    e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
    e.Use(middleware.RequestLogger())
    e.Use(echomw.Recover())
    if d.CSRF {
        e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
            TokenLookup:    "form:csrfmiddlewaretoken",
            CookieName:     "csrftoken",
            CookiePath:     "/",
            CookieHTTPOnly: true,
            CookieSameSite: http.SameSiteLaxMode,
        }))
    }
    e.Use(middleware.Flash())
    var refresher middleware.Refresher
    if d.Auth != nil {
        refresher = d.Auth
    }
    e.Use(middleware.Authenticate(d.JWTSecret, refresher))

    RegisterRoutes(e, d)
    if d.Auth != nil {
        RegisterAuth(e, d.Auth, d.LoginLimiter)
    }
    RegisterCatalog(e, d.Catalog, d.AdminLimiter)
    return e
}

// RegisterRoutes registers the health check, uploaded media and the home
// page.
func RegisterRoutes(e *echo.Echo, d Deps) {
    if d.DB != nil {
        e.GET("/healthz", handler.Health(d.DB))
    }
    if d.MediaRoot != "" {
        e.Static("/media", d.MediaRoot)
    }
    e.GET("/", d.Catalog.FilmList)
}

// RegisterAuth registers the login and logout pages.  limiter guards
// login attempts.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
    var mw []echo.MiddlewareFunc
    if limiter != nil {
        mw = append(mw, limiter)
    }
    e.GET("/accounts/login/", a.LoginForm)
    e.POST("/accounts/login/", a.Login, mw...)
    e.POST("/accounts/logout/", a.Logout)
}

// resource holds the handlers of one catalog entity.
type resource struct {
    prefix                               string
    list, detail, create, update, delete echo.HandlerFunc
}

// RegisterCatalog registers the public list and detail pages and the
// admin-only create, update and delete forms of every entity.  Each form
// answers GET with the page and POST with the action.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, limiter echo.MiddlewareFunc) {
    admin := []echo.MiddlewareFunc{middleware.RequireAdmin()}
    if limiter != nil {
        admin = append(admin, limiter)
    }
    methods := []string{http.MethodGet, http.MethodPost}

    // Autocomplete endpoints are static routes and win over /:id/.
    e.GET("/countries/autocomplete/", h.CountryAutocomplete)
    e.GET("/people/autocomplete/", h.PersonAutocomplete)

    for _, r := range []resource{
        {"/countries", h.CountryList, h.CountryDetail, h.CountryCreate, h.CountryUpdate, h.CountryDelete},
        {"/genres", h.GenreList, h.GenreDetail, h.GenreCreate, h.GenreUpdate, h.GenreDelete},
        {"/films", h.FilmList, h.FilmDetail, h.FilmCreate, h.FilmUpdate, h.FilmDelete},
        {"/people", h.PersonList, h.PersonDetail, h.PersonCreate, h.PersonUpdate, h.PersonDelete},
        {"/awards", h.AwardList, h.AwardDetail, h.AwardCreate, h.AwardUpdate, h.AwardDelete},
        {"/nominations", h.NominationList, h.NominationDetail, h.NominationCreate, h.NominationUpdate, h.NominationDelete},
        {"/results", h.ResultList, h.ResultDetail, h.ResultCreate, h.ResultUpdate, h.ResultDelete},
    } {
        e.GET(r.prefix+"/", r.list)
        e.GET(r.prefix+"/:id/", r.detail)
        e.Match(methods, r.prefix+"/create/", r.create, admin...)
        e.Match(methods, r.prefix+"/:id/update/", r.update, admin...)
        e.Match(methods, r.prefix+"/:id/delete/", r.delete, admin...)
    }
}

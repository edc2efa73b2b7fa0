package handler // handler defines http handlers

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/logging"
    "github.com/iliyamo/film-catalog/internal/media"
    "github.com/iliyamo/film-catalog/internal/middleware"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/repository"
    "github.com/iliyamo/film-catalog/internal/view"
)

// dbTimeout bounds the store calls of a single request.
const dbTimeout = 5 * time.Second

// ErrPageNotFound is rendered for unknown ids and malformed paths.
var ErrPageNotFound = echo.NewHTTPError(http.StatusNotFound, "Страница не найдена.")

// EventPublisher receives an event after every successful mutation.
type EventPublisher interface {
    Publish(ctx context.Context, event queue.CatalogChangedEvent) error
}

// CatalogHandler serves the public catalog pages and the admin-only
// create, update and delete forms of every entity.
type CatalogHandler struct {
    Countries   *repository.CountryRepo
    Genres      *repository.GenreRepo
    People      *repository.PersonRepo
    Films       *repository.FilmRepo
    Awards      *repository.AwardRepo
    Nominations *repository.NominationRepo
    Results     *repository.ResultRepo
    Media       *media.Store
    Events      EventPublisher
}

// NewCatalogHandler builds the repositories over db.  It panics on a nil
// db or store.  A nil events publisher drops events.
func NewCatalogHandler(db *sql.DB, store *media.Store, events EventPublisher) *CatalogHandler {
    if db == nil || store == nil {
        panic("nil dependency passed to NewCatalogHandler")
    }
    return &CatalogHandler{
        Countries:   repository.NewCountryRepo(db),
        Genres:      repository.NewGenreRepo(db),
        People:      repository.NewPersonRepo(db),
        Films:       repository.NewFilmRepo(db),
        Awards:      repository.NewAwardRepo(db),
        Nominations: repository.NewNominationRepo(db),
        Results:     repository.NewResultRepo(db),
        Media:       store,
        Events:      events,
    }
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// parseID reads the :id path parameter.  Anything but a positive integer
// is answered with 404, the same as an id that does not exist.
func parseID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, ErrPageNotFound
    }
    return id, nil
}

// pageParam reads ?page=.  Invalid values fall back to the first page.
func pageParam(c echo.Context) int {
    n, err := strconv.Atoi(c.QueryParam("page"))
    if err != nil {
        return 1
    }
    return n
}

// storeErr maps repository errors onto HTTP errors.
func storeErr(err error) error {
    if errors.Is(err, repository.ErrNotFound) {
        return ErrPageNotFound
    }
    return err
}

func render(c echo.Context, name string, data view.M) error {
    return c.Render(http.StatusOK, name, data)
}

// done finishes a successful POST: flash message and redirect.
func done(c echo.Context, to, msg string) error {
    middleware.SetFlash(c, msg)
    return c.Redirect(http.StatusFound, to)
}

func detailURL(kind string, id uint64) string {
    return fmt.Sprintf("/%s/%d/", kind, id)
}

// confirmDelete renders the confirmation page shown on GET of a delete
// route.
func confirmDelete(c echo.Context, kind, name, cancel string) error {
    return render(c, "confirm_delete", view.M{"kind": kind, "name": name, "cancel": cancel})
}

// publish sends a catalog event.  Failures are logged and never reach
// the user: the change itself is already committed.
func (h *CatalogHandler) publish(c echo.Context, entity, action string, id uint64, name string) {
    if h.Events == nil {
        return
    }
    who := middleware.CurrentIdentity(c)
    ev := queue.CatalogChangedEvent{
        Entity:     entity,
        Action:     action,
        ID:         id,
        Name:       name,
        UserID:     who.UserID,
        Username:   who.Username,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
    defer cancel()
    if err := h.Events.Publish(ctx, ev); err != nil {
        logging.Warn().Err(err).Str("entity", entity).Str("action", action).Uint64("id", id).Msg("catalog event not published")
    }
}

// formValues returns the submitted fields of a urlencoded or multipart
// POST.
func formValues(c echo.Context) (url.Values, error) {
    v, err := c.FormParams()
    if err != nil {
        return nil, echo.NewHTTPError(http.StatusBadRequest, "Некорректный запрос.").SetInternal(err)
    }
    return v, nil
}

// saveUpload stores the image posted as field below dir.  It returns ""
// when nothing was uploaded.  A rejected file is reported as a field
// error instead of an error.
func (h *CatalogHandler) saveUpload(c echo.Context, field, dir string, errs form.Errors) (string, error) {
    fh, err := c.FormFile(field)
    if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
        return "", nil
    }
    if err != nil {
        return "", err
    }
    rel, err := h.Media.Save(fh, dir)
    switch {
    case errors.Is(err, media.ErrNotImage):
        errs.Add(field, form.MsgImage)
        return "", nil
    case errors.Is(err, media.ErrTooLarge):
        errs.Add(field, form.MsgFileTooLarge)
        return "", nil
    case err != nil:
        return "", err
    }
    return rel, nil
}

// removeFile deletes a stored upload, logging failures.
func (h *CatalogHandler) removeFile(rel string) {
    if err := h.Media.Remove(rel); err != nil {
        logging.Warn().Err(err).Str("file", rel).Msg("could not remove upload")
    }
}

// swapFile decides the stored path after an update: a new upload wins,
// then the clear checkbox, else the old path is kept.
func swapFile(old, uploaded string, clear bool) string {
    switch {
    case uploaded != "":
        return uploaded
    case clear:
        return ""
    default:
        return old
    }
}

package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/model"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/view"
)

// GenreList handles GET /genres/.
func (h *CatalogHandler) GenreList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    genres, err := h.Genres.ListAll(ctx)
    if err != nil {
        return err
    }
    return render(c, "genre_list", view.M{"genres": genres})
}

// GenreDetail handles GET /genres/:id/ and lists the genre's
// films page by page.
func (h *CatalogHandler) GenreDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    genre, err := h.Genres.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    films, page, err := h.Films.ListByGenre(ctx, id, pageParam(c))
    if err != nil {
        return err
    }
    return render(c, "genre_detail", view.M{"genre": genre, "films": films, "page": page})
}

// GenreCreate handles GET and POST /genres/create/.
func (h *CatalogHandler) GenreCreate(c echo.Context) error {
    const heading = "Добавить жанр"
    if c.Request().Method != http.MethodPost {
        return renderNameForm(c, heading, form.New(nil, nil))
    }
    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseGenre(values)
    if !errs.Valid() {
        return renderNameForm(c, heading, form.New(values, errs))
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    var genre model.Genre
    in.Apply(&genre)
    if err := h.Genres.Create(ctx, &genre); err != nil {
        return err
    }
    h.publish(c, "genre", queue.ActionCreated, genre.ID, genre.Name)
    return done(c, detailURL("genres", genre.ID), "Жанр добавлен")
}

// GenreUpdate handles GET and POST /genres/:id/update/.
func (h *CatalogHandler) GenreUpdate(c echo.Context) error {
    const heading = "Изменить жанр"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    genre, err := h.Genres.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return renderNameForm(c, heading, form.New(form.GenreValues(genre), nil))
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseGenre(values)
    if !errs.Valid() {
        return renderNameForm(c, heading, form.New(values, errs))
    }
    in.Apply(genre)
    if err := h.Genres.Update(ctx, genre); err != nil {
        return storeErr(err)
    }
    h.publish(c, "genre", queue.ActionUpdated, genre.ID, genre.Name)
    return done(c, detailURL("genres", genre.ID), "Жанр изменён")
}

// GenreDelete handles GET (confirmation) and POST
// /genres/:id/delete/.  Films lose the genre; the films themselves
// stay.
func (h *CatalogHandler) GenreDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    genre, err := h.Genres.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "жанр", genre.Name, detailURL("genres", id))
    }
    if err := h.Genres.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.publish(c, "genre", queue.ActionDeleted, id, genre.Name)
    return done(c, "/genres/", "Жанр удалён")
}


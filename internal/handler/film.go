package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/media"
    "github.com/iliyamo/film-catalog/internal/model"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/repository"
    "github.com/iliyamo/film-catalog/internal/view"
)

// FilmList handles GET /films/?query=&page= (also served at /).
func (h *CatalogHandler) FilmList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    query := strings.TrimSpace(c.QueryParam("query"))
    films, page, err := h.Films.List(ctx, repository.FilmFilter{Query: query, Page: pageParam(c)})
    if err != nil {
        return err
    }
    return render(c, "film_list", view.M{"films": films, "page": page, "query": query})
}

// FilmDetail handles GET /films/:id/.
func (h *CatalogHandler) FilmDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    film, err := h.Films.GetDetail(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    return render(c, "film_detail", view.M{"film": film})
}

// checkFilmRefs verifies that the rows the film form points at exist.
func (h *CatalogHandler) checkFilmRefs(ctx context.Context, in form.FilmInput, errs form.Errors) error {
    if err := errs.CheckRef(ctx, "country", in.CountryID, h.Countries.Exists); err != nil {
        return err
    }
    if err := errs.CheckRef(ctx, "director", in.DirectorID, h.People.Exists); err != nil {
        return err
    }
    if err := errs.CheckRefs(ctx, "genres", in.GenreIDs, h.Genres.CountExisting); err != nil {
        return err
    }
    return errs.CheckRefs(ctx, "people", in.PeopleIDs, h.People.CountExisting)
}

// FilmCreate handles GET and POST /films/create/.
func (h *CatalogHandler) FilmCreate(c echo.Context) error {
    const heading = "Добавить фильм"
    ctx, cancel := reqCtx(c)
    defer cancel()
    if c.Request().Method != http.MethodPost {
        return h.renderFilmForm(ctx, c, heading, form.New(nil, nil), nil)
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseFilm(values)
    if err := h.checkFilmRefs(ctx, in, errs); err != nil {
        return err
    }
    var cover string
    if errs.Valid() {
        if cover, err = h.saveUpload(c, "cover", media.CoversDir, errs); err != nil {
            return err
        }
    }
    if !errs.Valid() {
        return h.renderFilmForm(ctx, c, heading, form.New(values, errs), nil)
    }

    film := model.Film{Cover: cover}
    in.Apply(&film)
    if err := h.Films.Create(ctx, &film, in.GenreIDs, in.PeopleIDs); err != nil {
        h.removeFile(cover)
        return err
    }
    h.publish(c, "film", queue.ActionCreated, film.ID, film.Name)
    return done(c, detailURL("films", film.ID), "Фильм добавлен")
}

// FilmUpdate handles GET and POST /films/:id/update/.  Genres and cast
// are replaced by the submitted selection.
func (h *CatalogHandler) FilmUpdate(c echo.Context) error {
    const heading = "Изменить фильм"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    film, err := h.Films.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        genreIDs, err := h.Films.GenreIDs(ctx, id)
        if err != nil {
            return err
        }
        castIDs, err := h.Films.CastIDs(ctx, id)
        if err != nil {
            return err
        }
        return h.renderFilmForm(ctx, c, heading, form.New(form.FilmValues(film, genreIDs, castIDs), nil), film)
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseFilm(values)
    if err := h.checkFilmRefs(ctx, in, errs); err != nil {
        return err
    }
    var uploaded string
    if errs.Valid() {
        if uploaded, err = h.saveUpload(c, "cover", media.CoversDir, errs); err != nil {
            return err
        }
    }
    if !errs.Valid() {
        return h.renderFilmForm(ctx, c, heading, form.New(values, errs), film)
    }

    old := film.Cover
    in.Apply(film)
    film.Cover = swapFile(old, uploaded, form.Checked(values, "cover-clear"))
    if err := h.Films.Update(ctx, film, in.GenreIDs, in.PeopleIDs); err != nil {
        h.removeFile(uploaded)
        return storeErr(err)
    }
    if old != film.Cover {
        h.removeFile(old)
    }
    h.publish(c, "film", queue.ActionUpdated, film.ID, film.Name)
    return done(c, detailURL("films", film.ID), "Фильм изменён")
}

// FilmDelete handles GET (confirmation) and POST /films/:id/delete/.
// Results keep existing without the film.
func (h *CatalogHandler) FilmDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    film, err := h.Films.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "фильм", film.Name, detailURL("films", id))
    }
    if err := h.Films.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.removeFile(film.Cover)
    h.publish(c, "film", queue.ActionDeleted, id, film.Name)
    return done(c, "/films/", "Фильм удалён")
}

// renderFilmForm renders the film form with every selectable country,
// genre and person.
func (h *CatalogHandler) renderFilmForm(ctx context.Context, c echo.Context, heading string, f *form.Form, obj *model.Film) error {
    countries, err := h.Countries.ListAll(ctx)
    if err != nil {
        return err
    }
    genres, err := h.Genres.ListAll(ctx)
    if err != nil {
        return err
    }
    people, err := h.People.ListAll(ctx)
    if err != nil {
        return err
    }
    data := view.M{"heading": heading, "form": f, "countries": countries, "genres": genres, "people": people}
    if obj != nil {
        data["object"] = obj
    }
    return render(c, "film_form", data)
}

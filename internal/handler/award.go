package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/model"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/repository"
    "github.com/iliyamo/film-catalog/internal/view"
)

// AwardList handles GET /awards/?query=&year=.  The year filter applies
// only when the parameter is all digits; anything else is ignored.
func (h *CatalogHandler) AwardList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    f := repository.AwardFilter{
        Query: strings.TrimSpace(c.QueryParam("query")),
        Year:  c.QueryParam("year"),
    }
    awards, err := h.Awards.List(ctx, f)
    if err != nil {
        return err
    }
    return render(c, "award_list", view.M{"awards": awards, "query": f.Query, "year": f.Year})
}

// AwardDetail handles GET /awards/:id/ with every nomination and its
// results.
func (h *CatalogHandler) AwardDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    award, err := h.Awards.GetDetail(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    return render(c, "award_detail", view.M{"award": award})
}

// AwardCreate handles GET and POST /awards/create/.
func (h *CatalogHandler) AwardCreate(c echo.Context) error {
    const heading = "Добавить премию"
    if c.Request().Method != http.MethodPost {
        return renderAwardForm(c, heading, form.New(nil, nil))
    }
    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseAward(values)
    if !errs.Valid() {
        return renderAwardForm(c, heading, form.New(values, errs))
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    var award model.Award
    in.Apply(&award)
    if err := h.Awards.Create(ctx, &award); err != nil {
        return err
    }
    h.publish(c, "award", queue.ActionCreated, award.ID, award.Name)
    return done(c, detailURL("awards", award.ID), "Премия добавлена")
}

// AwardUpdate handles GET and POST /awards/:id/update/.
func (h *CatalogHandler) AwardUpdate(c echo.Context) error {
    const heading = "Изменить премию"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    award, err := h.Awards.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return renderAwardForm(c, heading, form.New(form.AwardValues(award), nil))
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseAward(values)
    if !errs.Valid() {
        return renderAwardForm(c, heading, form.New(values, errs))
    }
    in.Apply(award)
    if err := h.Awards.Update(ctx, award); err != nil {
        return storeErr(err)
    }
    h.publish(c, "award", queue.ActionUpdated, award.ID, award.Name)
    return done(c, detailURL("awards", award.ID), "Премия изменена")
}

// AwardDelete handles GET (confirmation) and POST /awards/:id/delete/.
// Nominations of the award and their results go with it.
func (h *CatalogHandler) AwardDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    award, err := h.Awards.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "премию", award.Name, detailURL("awards", id))
    }
    if err := h.Awards.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.publish(c, "award", queue.ActionDeleted, id, award.Name)
    return done(c, "/awards/", "Премия удалена")
}

func renderAwardForm(c echo.Context, heading string, f *form.Form) error {
    return render(c, "award_form", view.M{"heading": heading, "form": f})
}

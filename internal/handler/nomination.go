package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/model"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/view"
)

// NominationList handles GET /nominations/.
func (h *CatalogHandler) NominationList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    nominations, err := h.Nominations.ListAll(ctx)
    if err != nil {
        return err
    }
    return render(c, "nomination_list", view.M{"nominations": nominations})
}

// NominationDetail handles GET /nominations/:id/.
func (h *CatalogHandler) NominationDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    nomination, err := h.Nominations.GetDetail(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    return render(c, "nomination_detail", view.M{"nomination": nomination})
}

// NominationCreate handles GET and POST /nominations/create/.
func (h *CatalogHandler) NominationCreate(c echo.Context) error {
    const heading = "Добавить номинацию"
    ctx, cancel := reqCtx(c)
    defer cancel()
    if c.Request().Method != http.MethodPost {
        return h.renderNominationForm(ctx, c, heading, form.New(nil, nil))
    }
    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseNomination(values)
    if err := errs.CheckRef(ctx, "award", in.AwardID, h.Awards.Exists); err != nil {
        return err
    }
    if !errs.Valid() {
        return h.renderNominationForm(ctx, c, heading, form.New(values, errs))
    }

    var nomination model.Nomination
    in.Apply(&nomination)
    if err := h.Nominations.Create(ctx, &nomination); err != nil {
        return err
    }
    h.publish(c, "nomination", queue.ActionCreated, nomination.ID, nomination.Name)
    return done(c, detailURL("nominations", nomination.ID), "Номинация добавлена")
}

// NominationUpdate handles GET and POST /nominations/:id/update/.
func (h *CatalogHandler) NominationUpdate(c echo.Context) error {
    const heading = "Изменить номинацию"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    nomination, err := h.Nominations.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return h.renderNominationForm(ctx, c, heading, form.New(form.NominationValues(nomination), nil))
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseNomination(values)
    if err := errs.CheckRef(ctx, "award", in.AwardID, h.Awards.Exists); err != nil {
        return err
    }
    if !errs.Valid() {
        return h.renderNominationForm(ctx, c, heading, form.New(values, errs))
    }
    in.Apply(nomination)
    if err := h.Nominations.Update(ctx, nomination); err != nil {
        return storeErr(err)
    }
    h.publish(c, "nomination", queue.ActionUpdated, nomination.ID, nomination.Name)
    return done(c, detailURL("nominations", nomination.ID), "Номинация изменена")
}

// NominationDelete handles GET (confirmation) and POST
// /nominations/:id/delete/.  Results of the nomination are deleted too.
func (h *CatalogHandler) NominationDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    nomination, err := h.Nominations.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "номинацию", nomination.Name, detailURL("nominations", id))
    }
    if err := h.Nominations.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.publish(c, "nomination", queue.ActionDeleted, id, nomination.Name)
    return done(c, "/nominations/", "Номинация удалена")
}

func (h *CatalogHandler) renderNominationForm(ctx context.Context, c echo.Context, heading string, f *form.Form) error {
    awards, err := h.Awards.ListAll(ctx)
    if err != nil {
        return err
    }
    return render(c, "nomination_form", view.M{"heading": heading, "form": f, "awards": awards})
}

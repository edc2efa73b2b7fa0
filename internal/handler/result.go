package handler

import (
    "context"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/model"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/view"
)

// ResultList handles GET /results/.
func (h *CatalogHandler) ResultList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    results, err := h.Results.ListAll(ctx)
    if err != nil {
        return err
    }
    return render(c, "result_list", view.M{"results": results})
}

// ResultDetail handles GET /results/:id/.
func (h *CatalogHandler) ResultDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    result, err := h.Results.GetDetail(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    return render(c, "result_detail", view.M{"result": result})
}

// checkResultRefs verifies the nomination, person and film of a result.
// Whether the film or person belongs to the nomination's award is not
// checked.
func (h *CatalogHandler) checkResultRefs(ctx context.Context, in form.ResultInput, errs form.Errors) error {
    if err := errs.CheckRef(ctx, "nomination", in.NominationID, h.Nominations.Exists); err != nil {
        return err
    }
    if err := errs.CheckRef(ctx, "person", in.PersonID, h.People.Exists); err != nil {
        return err
    }
    return errs.CheckRef(ctx, "film", in.FilmID, h.Films.Exists)
}

// ResultCreate handles GET and POST /results/create/.
func (h *CatalogHandler) ResultCreate(c echo.Context) error {
    const heading = "Добавить результат"
    ctx, cancel := reqCtx(c)
    defer cancel()
    if c.Request().Method != http.MethodPost {
        return h.renderResultForm(ctx, c, heading, form.New(nil, nil))
    }
    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseResult(values)
    if err := h.checkResultRefs(ctx, in, errs); err != nil {
        return err
    }
    if !errs.Valid() {
        return h.renderResultForm(ctx, c, heading, form.New(values, errs))
    }

    var result model.Result
    in.Apply(&result)
    if err := h.Results.Create(ctx, &result); err != nil {
        return err
    }
    h.publish(c, "result", queue.ActionCreated, result.ID, resultName(result.ID))
    return done(c, detailURL("results", result.ID), "Результат добавлен")
}

// ResultUpdate handles GET and POST /results/:id/update/.
func (h *CatalogHandler) ResultUpdate(c echo.Context) error {
    const heading = "Изменить результат"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    result, err := h.Results.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return h.renderResultForm(ctx, c, heading, form.New(form.ResultValues(result), nil))
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseResult(values)
    if err := h.checkResultRefs(ctx, in, errs); err != nil {
        return err
    }
    if !errs.Valid() {
        return h.renderResultForm(ctx, c, heading, form.New(values, errs))
    }
    in.Apply(result)
    if err := h.Results.Update(ctx, result); err != nil {
        return storeErr(err)
    }
    h.publish(c, "result", queue.ActionUpdated, result.ID, resultName(result.ID))
    return done(c, detailURL("results", result.ID), "Результат изменён")
}

// ResultDelete handles GET (confirmation) and POST /results/:id/delete/.
func (h *CatalogHandler) ResultDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    entry, err := h.Results.GetDetail(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "результат", entry.Nomination.Name, detailURL("results", id))
    }
    if err := h.Results.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.publish(c, "result", queue.ActionDeleted, id, resultName(id))
    return done(c, "/results/", "Результат удален")
}

func resultName(id uint64) string { return fmt.Sprintf("Результат #%d", id) }

func (h *CatalogHandler) renderResultForm(ctx context.Context, c echo.Context, heading string, f *form.Form) error {
    nominations, err := h.Nominations.ListAll(ctx)
    if err != nil {
        return err
    }
    people, err := h.People.ListAll(ctx)
    if err != nil {
        return err
    }
    films, err := h.Films.ListAll(ctx)
    if err != nil {
        return err
    }
    return render(c, "result_form", view.M{
        "heading":     heading,
        "form":        f,
        "nominations": nominations,
        "people":      people,
        "films":       films,
    })
}

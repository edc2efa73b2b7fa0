package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/film-catalog/internal/form"
    "github.com/iliyamo/film-catalog/internal/model"
    "github.com/iliyamo/film-catalog/internal/queue"
    "github.com/iliyamo/film-catalog/internal/view"
)

// CountryList handles GET /countries/.
func (h *CatalogHandler) CountryList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    countries, err := h.Countries.ListAll(ctx)
    if err != nil {
        return err
    }
    return render(c, "country_list", view.M{"countries": countries})
}

// CountryDetail handles GET /countries/:id/ and lists the country's
// films page by page.
func (h *CatalogHandler) CountryDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    country, err := h.Countries.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    films, page, err := h.Films.ListByCountry(ctx, id, pageParam(c))
    if err != nil {
        return err
    }
    return render(c, "country_detail", view.M{"country": country, "films": films, "page": page})
}

// CountryCreate handles GET and POST /countries/create/.
func (h *CatalogHandler) CountryCreate(c echo.Context) error {
    const heading = "Добавить страну"
    if c.Request().Method != http.MethodPost {
        return renderNameForm(c, heading, form.New(nil, nil))
    }
    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseCountry(values)
    if !errs.Valid() {
        return renderNameForm(c, heading, form.New(values, errs))
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    var country model.Country
    in.Apply(&country)
    if err := h.Countries.Create(ctx, &country); err != nil {
        return err
    }
    h.publish(c, "country", queue.ActionCreated, country.ID, country.Name)
    return done(c, detailURL("countries", country.ID), "Страна добавлена")
}

// CountryUpdate handles GET and POST /countries/:id/update/.
func (h *CatalogHandler) CountryUpdate(c echo.Context) error {
    const heading = "Изменить страну"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    country, err := h.Countries.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return renderNameForm(c, heading, form.New(form.CountryValues(country), nil))
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParseCountry(values)
    if !errs.Valid() {
        return renderNameForm(c, heading, form.New(values, errs))
    }
    in.Apply(country)
    if err := h.Countries.Update(ctx, country); err != nil {
        return storeErr(err)
    }
    h.publish(c, "country", queue.ActionUpdated, country.ID, country.Name)
    return done(c, detailURL("countries", country.ID), "Страна изменена")
}

// CountryDelete handles GET (confirmation) and POST
// /countries/:id/delete/.  Films of the country keep existing without
// a country.
func (h *CatalogHandler) CountryDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    country, err := h.Countries.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "страну", country.Name, detailURL("countries", id))
    }
    if err := h.Countries.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.publish(c, "country", queue.ActionDeleted, id, country.Name)
    return done(c, "/countries/", "Страна удалена")
}

// renderNameForm renders the single-field form shared by countries and
// genres.
func renderNameForm(c echo.Context, heading string, f *form.Form) error {
    return render(c, "name_form", view.M{"heading": heading, "form": f})
}

package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
)

// select2Item is one option in a Select2 ajax response.
type select2Item struct {
    ID           string `json:"id"`
    Text         string `json:"text"`
    SelectedText string `json:"selected_text"`
}

type select2Response struct {
    Results    []select2Item `json:"results"`
    Pagination struct {
        More bool `json:"more"`
    } `json:"pagination"`
}

func newSelect2(n int) select2Response {
    return select2Response{Results: make([]select2Item, 0, n)}
}

func (r *select2Response) add(id uint64, name string) {
    r.Results = append(r.Results, select2Item{ID: strconv.FormatUint(id, 10), Text: name, SelectedText: name})
}

// CountryAutocomplete handles GET /countries/autocomplete/?q=.  Names
// starting with q, ignoring case; an empty q returns every country.
func (h *CatalogHandler) CountryAutocomplete(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    countries, err := h.Countries.Autocomplete(ctx, strings.TrimSpace(c.QueryParam("q")))
    if err != nil {
        return err
    }
    resp := newSelect2(len(countries))
    for _, x := range countries {
        resp.add(x.ID, x.Name)
    }
    return c.JSON(http.StatusOK, resp)
}

// PersonAutocomplete handles GET /people/autocomplete/?q=.
func (h *CatalogHandler) PersonAutocomplete(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    people, err := h.People.Autocomplete(ctx, strings.TrimSpace(c.QueryParam("q")))
    if err != nil {
        return err
    }
    resp := newSelect2(len(people))
    for _, p := range people {
        resp.add(p.ID, p.Name)
    }
    return c.JSON(http.StatusOK, resp)
}

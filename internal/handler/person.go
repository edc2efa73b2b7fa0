package handler

import (
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

// PersonList handles GET /people/?query=&page=.
func (h *CatalogHandler) PersonList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    query := strings.TrimSpace(c.QueryParam("query"))
    people, page, err := h.People.List(ctx, repository.PersonFilter{Query: query, Page: pageParam(c)})
    if err != nil {
        return err
    }
    return render(c, "person_list", view.M{"people": people, "page": page, "query": query})
}

// PersonDetail handles GET /people/:id/ with the films the person
// directed or acted in and their award results.
func (h *CatalogHandler) PersonDetail(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    person, err := h.People.GetDetail(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    return render(c, "person_detail", view.M{"person": person})
}

// PersonCreate handles GET and POST /people/create/.
func (h *CatalogHandler) PersonCreate(c echo.Context) error {
    const heading = "Добавить персону"
    if c.Request().Method != http.MethodPost {
        return renderPersonForm(c, heading, form.New(nil, nil), nil)
    }
    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParsePerson(values)
    var photo string
    if errs.Valid() {
        if photo, err = h.saveUpload(c, "photo", media.PhotosDir, errs); err != nil {
            return err
        }
    }
    if !errs.Valid() {
        return renderPersonForm(c, heading, form.New(values, errs), nil)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    person := model.Person{Photo: photo}
    in.Apply(&person)
    if err := h.People.Create(ctx, &person); err != nil {
        h.removeFile(photo)
        return err
    }
    h.publish(c, "person", queue.ActionCreated, person.ID, person.Name)
    return done(c, detailURL("people", person.ID), "Персона добавлена")
}

// PersonUpdate handles GET and POST /people/:id/update/.  A new photo
// replaces the stored one; photo-clear drops it.
func (h *CatalogHandler) PersonUpdate(c echo.Context) error {
    const heading = "Изменить персону"
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    person, err := h.People.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return renderPersonForm(c, heading, form.New(form.PersonValues(person), nil), person)
    }

    values, err := formValues(c)
    if err != nil {
        return err
    }
    in, errs := form.ParsePerson(values)
    var uploaded string
    if errs.Valid() {
        if uploaded, err = h.saveUpload(c, "photo", media.PhotosDir, errs); err != nil {
            return err
        }
    }
    if !errs.Valid() {
        return renderPersonForm(c, heading, form.New(values, errs), person)
    }

    old := person.Photo
    in.Apply(person)
    person.Photo = swapFile(old, uploaded, form.Checked(values, "photo-clear"))
    if err := h.People.Update(ctx, person); err != nil {
        h.removeFile(uploaded)
        return storeErr(err)
    }
    if old != person.Photo {
        h.removeFile(old)
    }
    h.publish(c, "person", queue.ActionUpdated, person.ID, person.Name)
    return done(c, detailURL("people", person.ID), "Персона изменена")
}

// PersonDelete handles GET (confirmation) and POST /people/:id/delete/.
// Films the person directed lose their director, results lose their
// person and the cast links are removed.
func (h *CatalogHandler) PersonDelete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    person, err := h.People.GetByID(ctx, id)
    if err != nil {
        return storeErr(err)
    }
    if c.Request().Method != http.MethodPost {
        return confirmDelete(c, "персону", person.Name, detailURL("people", id))
    }
    if err := h.People.Delete(ctx, id); err != nil {
        return storeErr(err)
    }
    h.removeFile(person.Photo)
    h.publish(c, "person", queue.ActionDeleted, id, person.Name)
    return done(c, "/people/", "Персона удалена")
}

func renderPersonForm(c echo.Context, heading string, f *form.Form, obj *model.Person) error {
    data := view.M{"heading": heading, "form": f}
    if obj != nil {
        data["object"] = obj
    }
    return render(c, "person_form", data)
}

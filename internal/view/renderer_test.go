package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/form"
	"github.com/iliyamo/film-catalog/internal/middleware"
	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/repository"
)

func sampleData() map[string]M {
	year, length := 1999, 136
	country := model.Country{ID: 1, Name: "США"}
	genre := model.Genre{ID: 2, Name: "Фантастика"}
	bday := time.Date(1964, 9, 2, 0, 0, 0, 0, time.UTC)
	person := model.Person{ID: 3, Name: "Киану Ривз", Birthday: &bday, Photo: "photos/k.png"}
	film := model.Film{ID: 4, Name: "Матрица", Year: &year, Length: &length, Cover: "covers/m.png",
		CountryID: &country.ID, DirectorID: &person.ID}
	award := model.Award{ID: 5, Name: "Оскар", Year: 2000}
	nom := model.Nomination{ID: 6, Name: "Лучший монтаж", AwardID: award.ID}
	entry := model.ResultEntry{
		Result:     model.Result{ID: 7, NominationID: nom.ID, PersonID: &person.ID, FilmID: &film.ID, IsWon: true},
		Nomination: nom, Award: award, Person: &person, Film: &film,
	}
	page := repository.Paginate(25, 2, repository.PageSize)
	films := []model.Film{film}

	return map[string]M{
		"film_list":   {"films": films, "page": page, "query": "мат"},
		"film_detail": {"film": &model.FilmDetail{Film: film, Country: &country, Genres: []model.Genre{genre}, Director: &person, Cast: []model.Person{person}, Results: []model.ResultEntry{entry}}},
		"film_form": {"heading": "Изменить фильм", "object": &film,
			"form":      form.New(form.FilmValues(&film, []uint64{genre.ID}, []uint64{person.ID}), form.Errors{"name": form.MsgRequired}),
			"countries": []model.Country{country}, "genres": []model.Genre{genre}, "people": []model.Person{person}},
		"person_list":       {"people": []model.Person{person}, "page": page, "query": ""},
		"person_detail":     {"person": &model.PersonDetail{Person: person, Directed: films, ActedIn: nil, Results: []model.ResultEntry{entry}}},
		"person_form":       {"heading": "Добавить персону", "form": form.New(nil, nil)},
		"country_list":      {"countries": []model.Country{country}},
		"country_detail":    {"country": &country, "films": films, "page": page},
		"name_form":         {"heading": "Добавить страну", "form": form.New(nil, form.Errors{"name": form.MsgRequired})},
		"genre_list":        {"genres": []model.Genre{genre}},
		"genre_detail":      {"genre": &genre, "films": []model.Film{}, "page": repository.Paginate(0, 1, 10)},
		"award_list":        {"awards": []model.Award{award}, "query": "", "year": "2000"},
		"award_detail":      {"award": &model.AwardDetail{Award: award, Nominations: []model.NominationResults{{Nomination: nom, Results: []model.ResultEntry{entry}}}}},
		"award_form":        {"heading": "Добавить премию", "form": form.New(nil, form.Errors{"year": form.MsgAwardYear})},
		"nomination_list":   {"nominations": []model.NominationEntry{{Nomination: nom, Award: award}}},
		"nomination_detail": {"nomination": &model.NominationDetail{NominationEntry: model.NominationEntry{Nomination: nom, Award: award}, Results: []model.ResultEntry{entry}}},
		"nomination_form":   {"heading": "Добавить номинацию", "form": form.New(form.NominationValues(&nom), nil), "awards": []model.Award{award}},
		"result_list":       {"results": []model.ResultEntry{entry}},
		"result_detail":     {"result": &entry},
		"result_form": {"heading": "Добавить результат", "form": form.New(form.ResultValues(&entry.Result), nil),
			"nominations": []model.NominationEntry{{Nomination: nom, Award: award}}, "people": []model.Person{person}, "films": films},
		"confirm_delete": {"kind": "фильм", "name": "Матрица", "cancel": "/films/4/"},
		"login":          {"next": "/films/create/", "username": "admin", "error": "Неверный пароль"},
		"error":          {"status": 404, "message": "Страница не найдена"},
	}
}

func TestRenderer_AllPages(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := echo.New()
	data := sampleData()
	for name := range r.pages {
		if _, ok := data[name]; !ok {
			t.Errorf("page %s has no sample data", name)
		}
	}
	for name, d := range data {
		t.Run(name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x/", nil), httptest.NewRecorder())
			middleware.SetIdentity(c, middleware.Identity{UserID: 1, Username: "admin", Superuser: true})
			c.Set("csrf", "tok")
			var buf bytes.Buffer
			if err := r.Render(&buf, name, d, c); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(buf.String(), "</html>") {
				t.Fatalf("layout not applied")
			}
		})
	}
}

func TestRenderer_AdminControlsHiddenForVisitors(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/films/", nil), httptest.NewRecorder())
	var buf bytes.Buffer
	if err := r.Render(&buf, "film_list", sampleData()["film_list"], c); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "/films/create/") {
		t.Fatal("create link shown to anonymous visitor")
	}
	if !strings.Contains(buf.String(), "Матрица") {
		t.Fatal("film name missing")
	}
}

func TestRenderer_FormKeepsValuesAndErrors(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/awards/create/", nil), httptest.NewRecorder())
	f := form.New(map[string][]string{"name": {"Оскар"}, "year": {"1899"}}, form.Errors{"year": form.MsgAwardYear})
	var buf bytes.Buffer
	if err := r.Render(&buf, "award_form", M{"heading": "Добавить премию", "form": f}, c); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`value="1899"`, form.MsgAwardYear, `value="Оскар"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q", want)
		}
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(&bytes.Buffer{}, "nope", nil, nil); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

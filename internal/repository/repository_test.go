package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func ptr[T any](v T) *T { return &v }

func mustPerson(t *testing.T, db *sql.DB, name string) model.Person {
	t.Helper()
	p := model.Person{Name: name}
	if err := NewPersonRepo(db).Create(context.Background(), &p); err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func mustFilm(t *testing.T, db *sql.DB, f model.Film, genres, cast []uint64) model.Film {
	t.Helper()
	if err := NewFilmRepo(db).Create(context.Background(), &f, genres, cast); err != nil {
		t.Fatalf("create film: %v", err)
	}
	return f
}

func TestFilmList_QueryFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, name := range []string{"The Matrix", "Matrix Reloaded", "Inception"} {
		mustFilm(t, db, model.Film{Name: name}, nil, nil)
	}
	repo := NewFilmRepo(db)

	cases := []struct {
		query string
		want  int
	}{
		{"Matrix", 2},
		{"matrix", 2},
		{"MATRIX", 2},
		{"", 3},
		{"ince", 1},
		{"%", 0},
		{"zzz", 0},
	}
	for _, tc := range cases {
		t.Run("q="+tc.query, func(t *testing.T) {
			films, page, err := repo.List(ctx, FilmFilter{Query: tc.query, Page: 1})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(films) != tc.want || page.Total != tc.want {
				t.Fatalf("got %d films (total %d), want %d", len(films), page.Total, tc.want)
			}
		})
	}
}

func TestFilmList_Pagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i := 0; i < 23; i++ {
		mustFilm(t, db, model.Film{Name: "Film"}, nil, nil)
	}
	repo := NewFilmRepo(db)

	cases := []struct {
		page     int
		wantPage int
		wantLen  int
	}{
		{0, 1, 10},
		{1, 1, 10},
		{3, 3, 3},
		{99, 3, 3},
		{-4, 1, 10},
	}
	for _, tc := range cases {
		films, page, err := repo.List(ctx, FilmFilter{Page: tc.page})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if page.Number != tc.wantPage || len(films) != tc.wantLen || page.NumPages != 3 {
			t.Errorf("page %d: got number=%d len=%d pages=%d", tc.page, page.Number, len(films), page.NumPages)
		}
	}
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		total, number   int
		wantNum, wantPg int
	}{
		{0, 1, 1, 1},
		{0, 5, 1, 1},
		{10, 2, 1, 1},
		{11, 2, 2, 2},
		{11, 0, 1, 2},
	}
	for _, tc := range cases {
		p := Paginate(tc.total, tc.number, PageSize)
		if p.Number != tc.wantNum || p.NumPages != tc.wantPg {
			t.Errorf("Paginate(%d,%d) = %+v", tc.total, tc.number, p)
		}
	}
	p := Paginate(25, 2, PageSize)
	if !p.HasPrev() || !p.HasNext() || p.Prev() != 1 || p.Next() != 3 || p.Offset() != 10 {
		t.Errorf("navigation wrong for %+v", p)
	}
}

func TestFilm_RoundTripRelations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	country := model.Country{Name: "США"}
	if err := NewCountryRepo(db).Create(ctx, &country); err != nil {
		t.Fatal(err)
	}
	g1, g2 := model.Genre{Name: "Фантастика"}, model.Genre{Name: "Боевик"}
	genres := NewGenreRepo(db)
	if err := genres.Create(ctx, &g1); err != nil {
		t.Fatal(err)
	}
	if err := genres.Create(ctx, &g2); err != nil {
		t.Fatal(err)
	}
	director := mustPerson(t, db, "Лана Вачовски")
	actor := mustPerson(t, db, "Киану Ривз")

	f := mustFilm(t, db, model.Film{
		Name: "Матрица", Year: ptr(1999), Length: ptr(136),
		CountryID: &country.ID, DirectorID: &director.ID,
	}, []uint64{g1.ID, g2.ID, g1.ID}, []uint64{actor.ID})

	repo := NewFilmRepo(db)
	d, err := repo.GetDetail(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if d.Country == nil || d.Country.Name != "США" {
		t.Fatalf("country = %+v", d.Country)
	}
	if d.Director == nil || d.Director.ID != director.ID {
		t.Fatalf("director = %+v", d.Director)
	}
	if len(d.Genres) != 2 || len(d.Cast) != 1 || d.Cast[0].ID != actor.ID {
		t.Fatalf("genres %v cast %v", d.Genres, d.Cast)
	}
	if *d.Year != 1999 || *d.Length != 136 {
		t.Fatalf("year/length = %v/%v", *d.Year, *d.Length)
	}

	// Update replaces the links.
	f.Name = "The Matrix"
	if err := repo.Update(ctx, &f, []uint64{g2.ID}, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	gids, _ := repo.GenreIDs(ctx, f.ID)
	cids, _ := repo.CastIDs(ctx, f.ID)
	if len(gids) != 1 || gids[0] != g2.ID || len(cids) != 0 {
		t.Fatalf("after update genres=%v cast=%v", gids, cids)
	}

	byGenre, _, err := repo.ListByGenre(ctx, g2.ID, 1)
	if err != nil || len(byGenre) != 1 {
		t.Fatalf("ListByGenre = %v, %v", byGenre, err)
	}
	byCountry, _, err := repo.ListByCountry(ctx, country.ID, 1)
	if err != nil || len(byCountry) != 1 {
		t.Fatalf("ListByCountry = %v, %v", byCountry, err)
	}

	// Deleting the director and country nullifies the film's references.
	if err := NewPersonRepo(db).Delete(ctx, director.ID); err != nil {
		t.Fatal(err)
	}
	if err := NewCountryRepo(db).Delete(ctx, country.ID); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DirectorID != nil || got.CountryID != nil {
		t.Fatalf("references not nulled: %+v", got)
	}
}

func TestFilm_UpdateUnknownRollsBack(t *testing.T) {
	db := newTestDB(t)
	f := model.Film{ID: 404, Name: "Ghost"}
	if err := NewFilmRepo(db).Update(context.Background(), &f, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAwardList_YearFilterAndOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAwardRepo(db)
	for _, a := range []model.Award{
		{Name: "Оскар", Year: 1999},
		{Name: "BAFTA", Year: 1999},
		{Name: "Ника", Year: 2000},
		{Name: "Золотой глобус", Year: 1998},
	} {
		if err := repo.Create(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.List(ctx, AwardFilter{Year: "1999"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "BAFTA" || got[1].Name != "Оскар" {
		t.Fatalf("year=1999 -> %+v", got)
	}

	all, err := repo.List(ctx, AwardFilter{Year: "19x9"})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"Ника", "BAFTA", "Оскар", "Золотой глобус"}
	if len(all) != len(wantOrder) {
		t.Fatalf("non-digit year should not filter, got %d", len(all))
	}
	for i, name := range wantOrder {
		if all[i].Name != name {
			t.Fatalf("order[%d] = %q, want %q", i, all[i].Name, name)
		}
	}

	byName, err := repo.List(ctx, AwardFilter{Query: "baft", Year: " 1999 "})
	if err != nil || len(byName) != 1 {
		t.Fatalf("query+year -> %v, %v", byName, err)
	}
}

func TestNominationDelete_CascadesResults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	award := model.Award{Name: "Оскар", Year: 2000}
	if err := NewAwardRepo(db).Create(ctx, &award); err != nil {
		t.Fatal(err)
	}
	noms := NewNominationRepo(db)
	n := model.Nomination{Name: "Лучший фильм", AwardID: award.ID}
	if err := noms.Create(ctx, &n); err != nil {
		t.Fatal(err)
	}
	f := mustFilm(t, db, model.Film{Name: "Гладиатор"}, nil, nil)
	results := NewResultRepo(db)
	r := model.Result{NominationID: n.ID, FilmID: &f.ID, IsWon: true}
	if err := results.Create(ctx, &r); err != nil {
		t.Fatal(err)
	}

	d, err := noms.GetDetail(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Award.ID != award.ID || len(d.Results) != 1 || d.Results[0].Film == nil || d.Results[0].Film.Name != "Гладиатор" {
		t.Fatalf("nomination detail = %+v", d)
	}

	if err := noms.Delete(ctx, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := results.GetDetail(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("result after nomination delete: err = %v", err)
	}
	if _, err := noms.GetDetail(ctx, n.ID); !errors.Is(err, ErrNominationNotFound) {
		t.Fatalf("nomination after delete: err = %v", err)
	}
	if err := noms.Delete(ctx, n.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: err = %v", err)
	}
}

func TestAwardDetail_GroupsResults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	award := model.Award{Name: "Ника", Year: 2005}
	if err := NewAwardRepo(db).Create(ctx, &award); err != nil {
		t.Fatal(err)
	}
	noms := NewNominationRepo(db)
	n1 := model.Nomination{Name: "Фильм", AwardID: award.ID}
	n2 := model.Nomination{Name: "Режиссёр", AwardID: award.ID}
	_ = noms.Create(ctx, &n1)
	_ = noms.Create(ctx, &n2)
	p := mustPerson(t, db, "Никита Михалков")
	results := NewResultRepo(db)
	_ = results.Create(ctx, &model.Result{NominationID: n2.ID, PersonID: &p.ID})

	d, err := NewAwardRepo(db).GetDetail(ctx, award.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nominations) != 2 || len(d.Nominations[0].Results) != 0 || len(d.Nominations[1].Results) != 1 {
		t.Fatalf("award detail = %+v", d)
	}
	if d.Nominations[1].Results[0].Person.Name != "Никита Михалков" {
		t.Fatalf("person not joined: %+v", d.Nominations[1].Results[0])
	}

	pd, err := NewPersonRepo(db).GetDetail(ctx, p.ID)
	if err != nil || len(pd.Results) != 1 || pd.Results[0].Award.Name != "Ника" {
		t.Fatalf("person detail = %+v, %v", pd, err)
	}

	// Deleting the person keeps the result with an empty participant.
	if err := NewPersonRepo(db).Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	e, err := results.GetDetail(ctx, pd.Results[0].ID)
	if err != nil || e.Person != nil || e.Result.PersonID != nil {
		t.Fatalf("result after person delete = %+v, %v", e, err)
	}
}

func TestAutocomplete_Prefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	countries := NewCountryRepo(db)
	for _, name := range []string{"France", "Finland", "Germany"} {
		c := model.Country{Name: name}
		if err := countries.Create(ctx, &c); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"Keanu Reeves", "Keira Knightley", "Al Pacino"} {
		mustPerson(t, db, name)
	}

	cases := []struct {
		q    string
		want int
	}{
		{"f", 2},
		{"FR", 1},
		{"rance", 0},
		{"", 3},
	}
	for _, tc := range cases {
		got, err := countries.Autocomplete(ctx, tc.q)
		if err != nil || len(got) != tc.want {
			t.Errorf("countries %q -> %d (%v), want %d", tc.q, len(got), err, tc.want)
		}
	}
	people, err := NewPersonRepo(db).Autocomplete(ctx, "ke")
	if err != nil || len(people) != 2 {
		t.Fatalf("people \"ke\" -> %d, %v", len(people), err)
	}
}

func TestSearch_CyrillicIgnoresCase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	countries := NewCountryRepo(db)
	for _, name := range []string{"Россия", "Франция"} {
		c := model.Country{Name: name}
		if err := countries.Create(ctx, &c); err != nil {
			t.Fatal(err)
		}
	}
	mustPerson(t, db, "Андрей Тарковский")
	mustPerson(t, db, "Никита Михалков")
	mustFilm(t, db, model.Film{Name: "Москва слезам не верит", Year: ptr(1979)}, nil, nil)
	mustFilm(t, db, model.Film{Name: "Сталкер", Year: ptr(1979)}, nil, nil)

	people := NewPersonRepo(db)
	films := NewFilmRepo(db)
	for _, q := range []string{"Москва", "москва", "СЛЕЗАМ"} {
		got, _, err := films.List(ctx, FilmFilter{Query: q, Page: 1})
		if err != nil || len(got) != 1 || got[0].Name != "Москва слезам не верит" {
			t.Errorf("films %q -> %+v, %v", q, got, err)
		}
	}
	for _, q := range []string{"Тарков", "тарков"} {
		got, _, err := people.List(ctx, PersonFilter{Query: q, Page: 1})
		if err != nil || len(got) != 1 {
			t.Errorf("people list %q -> %d, %v", q, len(got), err)
		}
	}
	for _, q := range []string{"Андрей", "анД"} {
		got, err := people.Autocomplete(ctx, q)
		if err != nil || len(got) != 1 || got[0].Name != "Андрей Тарковский" {
			t.Errorf("people autocomplete %q -> %+v, %v", q, got, err)
		}
	}
	for _, q := range []string{"Рос", "рОС"} {
		got, err := countries.Autocomplete(ctx, q)
		if err != nil || len(got) != 1 || got[0].Name != "Россия" {
			t.Errorf("countries autocomplete %q -> %+v, %v", q, got, err)
		}
	}

	awards := NewAwardRepo(db)
	a := model.Award{Name: "Ника", Year: 1988}
	if err := awards.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	if got, err := awards.List(ctx, AwardFilter{Query: "НИК"}); err != nil || len(got) != 1 {
		t.Errorf("awards \"НИК\" -> %d, %v", len(got), err)
	}
}

func TestNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	checks := map[string]error{}
	_, checks["country"] = NewCountryRepo(db).GetByID(ctx, 1)
	_, checks["genre"] = NewGenreRepo(db).GetByID(ctx, 1)
	_, checks["person"] = NewPersonRepo(db).GetDetail(ctx, 1)
	_, checks["film"] = NewFilmRepo(db).GetDetail(ctx, 1)
	_, checks["award"] = NewAwardRepo(db).GetDetail(ctx, 1)
	_, checks["nomination"] = NewNominationRepo(db).GetDetail(ctx, 1)
	_, checks["result"] = NewResultRepo(db).GetDetail(ctx, 1)
	checks["update"] = NewCountryRepo(db).Update(ctx, &model.Country{ID: 9, Name: "x"})
	for name, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestUsersAndTokens(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	id, err := users.Create(ctx, " admin ", "s3cret", true, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := users.Create(ctx, "admin", "other", false, 4); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("duplicate: err = %v", err)
	}
	u, err := users.GetByUsername(ctx, "admin")
	if err != nil || u.ID != id || !u.IsSuperuser || !u.IsActive {
		t.Fatalf("GetByUsername = %+v, %v", u, err)
	}
	if _, err := users.GetByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetByID unknown: err = %v", err)
	}

	tokens := NewTokenRepo(db)
	if err := tokens.StoreRefresh(ctx, id, "hash-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := tokens.StoreRefresh(ctx, id, "hash-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if got, err := tokens.ValidateRefresh(ctx, "hash-1"); err != nil || got != id {
		t.Fatalf("ValidateRefresh = %d, %v", got, err)
	}
	if _, err := tokens.ValidateRefresh(ctx, "hash-old"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired token: err = %v", err)
	}
	if err := tokens.RevokeByHash(ctx, "hash-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tokens.ValidateRefresh(ctx, "hash-1"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("revoked token: err = %v", err)
	}
}

package form

import (
	"context"
	"net/url"
	"testing"

	"github.com/iliyamo/film-catalog/internal/model"
)

func TestParseAward_YearBounds(t *testing.T) {
	cases := []struct {
		year    string
		wantErr string
	}{
		{"1899", MsgAwardYear},
		{"1900", ""},
		{"1999", ""},
		{"2026", ""},
		{"2027", MsgAwardYear},
		{"-5", MsgAwardYear},
		{"", MsgRequired},
		{"19x9", MsgInteger},
	}
	for _, tc := range cases {
		t.Run("year="+tc.year, func(t *testing.T) {
			in, errs := ParseAward(url.Values{"name": {"Оскар"}, "year": {tc.year}})
			if got := errs.Get("year"); got != tc.wantErr {
				t.Fatalf("year error = %q, want %q", got, tc.wantErr)
			}
			if tc.wantErr == "" {
				if !errs.Valid() {
					t.Fatalf("unexpected errors %v", errs)
				}
				var a model.Award
				in.Apply(&a)
				if a.Name != "Оскар" || a.Year == 0 {
					t.Fatalf("Apply = %+v", a)
				}
			}
		})
	}
}

func TestParseCountry_NameRules(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"plain", "Франция", true},
		{"trimmed blank", "   ", false},
		{"too long", string(long), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := ParseCountry(url.Values{"name": {tc.value}})
			if errs.Valid() != tc.ok {
				t.Fatalf("Valid() = %v, errors %v", errs.Valid(), errs)
			}
		})
	}
}

func TestParseFilm(t *testing.T) {
	v := url.Values{
		"name":        {"Матрица"},
		"length":      {"136"},
		"year":        {"1999"},
		"trailer_url": {"https://example.com/t"},
		"country":     {"3"},
		"director":    {"7"},
		"genres":      {"1", "2", "1", ""},
		"people":      {"8"},
	}
	in, errs := ParseFilm(v)
	if !errs.Valid() {
		t.Fatalf("unexpected errors %v", errs)
	}
	if *in.Length != 136 || *in.Year != 1999 || *in.CountryID != 3 || *in.DirectorID != 7 {
		t.Fatalf("parsed %+v", in)
	}
	if len(in.GenreIDs) != 2 || len(in.PeopleIDs) != 1 {
		t.Fatalf("genres %v people %v", in.GenreIDs, in.PeopleIDs)
	}
}

func TestParseFilm_Errors(t *testing.T) {
	_, errs := ParseFilm(url.Values{
		"name":        {""},
		"length":      {"long"},
		"trailer_url": {"not a url"},
		"genres":      {"x"},
	})
	want := map[string]string{
		"name":     MsgRequired,
		"length":   MsgInteger,
		"director": MsgRequired,
		"genres":   MsgInvalidChoice,
	}
	for field, msg := range want {
		if got := errs.Get(field); got != msg {
			t.Errorf("%s error = %q, want %q", field, got, msg)
		}
	}
	if !errs.Has("trailer_url") {
		t.Error("trailer_url accepted an invalid URL")
	}
}

func TestParsePerson_Birthday(t *testing.T) {
	in, errs := ParsePerson(url.Values{"name": {"Киану Ривз"}, "birthday": {"1964-09-02"}})
	if !errs.Valid() || in.Birthday == nil || in.Birthday.Year() != 1964 {
		t.Fatalf("in %+v errs %v", in, errs)
	}
	_, errs = ParsePerson(url.Values{"name": {"X"}, "birthday": {"02.09.1964"}})
	if errs.Get("birthday") != MsgDate {
		t.Fatalf("birthday error = %q", errs.Get("birthday"))
	}
}

func TestParseResult(t *testing.T) {
	in, errs := ParseResult(url.Values{"nomination": {"4"}, "film": {"2"}, "is_won": {"on"}})
	if !errs.Valid() {
		t.Fatalf("unexpected errors %v", errs)
	}
	var r model.Result
	in.Apply(&r)
	if r.NominationID != 4 || r.PersonID != nil || *r.FilmID != 2 || !r.IsWon {
		t.Fatalf("Apply = %+v", r)
	}

	_, errs = ParseResult(url.Values{})
	if errs.Get("nomination") != MsgRequired {
		t.Fatalf("nomination error = %q", errs.Get("nomination"))
	}
}

func TestCheckRef(t *testing.T) {
	existing := map[uint64]bool{1: true}
	exists := func(_ context.Context, id uint64) (bool, error) { return existing[id], nil }
	count := func(_ context.Context, ids []uint64) (int, error) {
		n := 0
		for _, id := range ids {
			if existing[id] {
				n++
			}
		}
		return n, nil
	}

	errs := Errors{}
	one, two := uint64(1), uint64(2)
	_ = errs.CheckRef(context.Background(), "country", &one, exists)
	_ = errs.CheckRef(context.Background(), "director", &two, exists)
	_ = errs.CheckRef(context.Background(), "award", nil, exists)
	_ = errs.CheckRefs(context.Background(), "genres", []uint64{1, 2}, count)

	if errs.Has("country") || errs.Has("award") {
		t.Fatalf("valid refs flagged: %v", errs)
	}
	if errs.Get("director") != MsgInvalidChoice || errs.Get("genres") != MsgInvalidChoice {
		t.Fatalf("missing refs not flagged: %v", errs)
	}
}

func TestFormHelpers(t *testing.T) {
	f := New(FilmValues(&model.Film{Name: "Матрица"}, []uint64{3, 5}, nil), nil)
	if f.Value("name") != "Матрица" || !f.Selected("genres", 5) || f.Selected("genres", 4) {
		t.Fatalf("form helpers wrong: %v", f.Values)
	}
	r := New(ResultValues(&model.Result{NominationID: 1, IsWon: true}), nil)
	if !r.Checked("is_won") {
		t.Fatal("is_won not checked")
	}
}

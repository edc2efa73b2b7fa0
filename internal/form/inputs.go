package form

import (
	"net/url"
	"time"

	"github.com/iliyamo/film-catalog/internal/model"
)

// CountryInput is the country form.
type CountryInput struct {
	Name string `form:"name" validate:"required,max=255"`
}

// ParseCountry reads and validates a country form.
func ParseCountry(v url.Values) (CountryInput, Errors) {
	errs := Errors{}
	in := CountryInput{Name: str(v, "name")}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto c.
func (in CountryInput) Apply(c *model.Country) { c.Name = in.Name }

// GenreInput is the genre form.
type GenreInput struct {
	Name string `form:"name" validate:"required,max=255"`
}

// ParseGenre reads and validates a genre form.
func ParseGenre(v url.Values) (GenreInput, Errors) {
	errs := Errors{}
	in := GenreInput{Name: str(v, "name")}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto g.
func (in GenreInput) Apply(g *model.Genre) { g.Name = in.Name }

// PersonInput is the person form.  The photo upload is handled apart
// from the text fields.
type PersonInput struct {
	Name       string     `form:"name" validate:"required,max=255"`
	OriginName string     `form:"origin_name" validate:"max=255"`
	Birthday   *time.Time `form:"birthday"`
}

// ParsePerson reads and validates a person form.
func ParsePerson(v url.Values) (PersonInput, Errors) {
	errs := Errors{}
	in := PersonInput{
		Name:       str(v, "name"),
		OriginName: str(v, "origin_name"),
		Birthday:   optDate(v, "birthday", errs),
	}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto p, leaving the photo untouched.
func (in PersonInput) Apply(p *model.Person) {
	p.Name = in.Name
	p.OriginName = in.OriginName
	p.Birthday = in.Birthday
}

// FilmInput is the film form.  Genres and People are the many-to-many
// selections; the cover upload is handled apart from the text fields.
type FilmInput struct {
	Name        string   `form:"name" validate:"required,max=255"`
	OriginName  string   `form:"origin_name" validate:"max=255"`
	Slogan      string   `form:"slogan" validate:"max=255"`
	Length      *int     `form:"length" validate:"omitempty,gte=0"`
	Year        *int     `form:"year" validate:"omitempty,gte=0"`
	TrailerURL  string   `form:"trailer_url" validate:"omitempty,url,max=200"`
	Description string   `form:"description"`
	CountryID   *uint64  `form:"country"`
	DirectorID  *uint64  `form:"director" validate:"required"`
	GenreIDs    []uint64 `form:"genres"`
	PeopleIDs   []uint64 `form:"people"`
}

// ParseFilm reads and validates a film form.  Referenced ids are only
// checked for shape here; their existence is checked against the store
// by the caller.
func ParseFilm(v url.Values) (FilmInput, Errors) {
	errs := Errors{}
	in := FilmInput{
		Name:        str(v, "name"),
		OriginName:  str(v, "origin_name"),
		Slogan:      str(v, "slogan"),
		Length:      optInt(v, "length", errs),
		Year:        optInt(v, "year", errs),
		TrailerURL:  str(v, "trailer_url"),
		Description: str(v, "description"),
		CountryID:   optID(v, "country", errs),
		DirectorID:  optID(v, "director", errs),
		GenreIDs:    ids(v, "genres", errs),
		PeopleIDs:   ids(v, "people", errs),
	}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto f, leaving the cover untouched.
func (in FilmInput) Apply(f *model.Film) {
	f.Name = in.Name
	f.OriginName = in.OriginName
	f.Slogan = in.Slogan
	f.Length = in.Length
	f.Year = in.Year
	f.TrailerURL = in.TrailerURL
	f.Description = in.Description
	f.CountryID = in.CountryID
	f.DirectorID = in.DirectorID
}

// AwardInput is the award form.  Year must lie in
// [MinAwardYear, MaxAwardYear].
type AwardInput struct {
	Name string `form:"name" validate:"required,max=255"`
	Year int    `form:"year" validate:"award_year"`
}

// ParseAward reads and validates an award form.
func ParseAward(v url.Values) (AwardInput, Errors) {
	errs := Errors{}
	in := AwardInput{
		Name: str(v, "name"),
		Year: reqInt(v, "year", errs),
	}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto a.
func (in AwardInput) Apply(a *model.Award) {
	a.Name = in.Name
	a.Year = in.Year
}

// NominationInput is the nomination form.
type NominationInput struct {
	Name    string  `form:"name" validate:"required,max=255"`
	AwardID *uint64 `form:"award" validate:"required"`
}

// ParseNomination reads and validates a nomination form.
func ParseNomination(v url.Values) (NominationInput, Errors) {
	errs := Errors{}
	in := NominationInput{
		Name:    str(v, "name"),
		AwardID: optID(v, "award", errs),
	}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto n.  Call it only on valid input.
func (in NominationInput) Apply(n *model.Nomination) {
	n.Name = in.Name
	if in.AwardID != nil {
		n.AwardID = *in.AwardID
	}
}

// ResultInput is the result form.  Person and film are optional.
type ResultInput struct {
	NominationID *uint64 `form:"nomination" validate:"required"`
	PersonID     *uint64 `form:"person"`
	FilmID       *uint64 `form:"film"`
	IsWon        bool    `form:"is_won"`
}

// ParseResult reads and validates a result form.
func ParseResult(v url.Values) (ResultInput, Errors) {
	errs := Errors{}
	in := ResultInput{
		NominationID: optID(v, "nomination", errs),
		PersonID:     optID(v, "person", errs),
		FilmID:       optID(v, "film", errs),
		IsWon:        parseBool(v.Get("is_won")),
	}
	check(&in, errs)
	return in, errs
}

// Apply copies the input onto r.  Call it only on valid input.
func (in ResultInput) Apply(r *model.Result) {
	if in.NominationID != nil {
		r.NominationID = *in.NominationID
	}
	r.PersonID = in.PersonID
	r.FilmID = in.FilmID
	r.IsWon = in.IsWon
}

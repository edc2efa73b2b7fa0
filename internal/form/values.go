package form

import (
	"net/url"
	"strconv"

	"github.com/iliyamo/film-catalog/internal/model"
)

// The *Values functions prefill update forms from stored records.

func CountryValues(c *model.Country) url.Values {
	return url.Values{"name": {c.Name}}
}

func GenreValues(g *model.Genre) url.Values {
	return url.Values{"name": {g.Name}}
}

func PersonValues(p *model.Person) url.Values {
	v := url.Values{"name": {p.Name}, "origin_name": {p.OriginName}}
	if p.Birthday != nil {
		v.Set("birthday", p.Birthday.Format(DateLayout))
	}
	return v
}

func FilmValues(f *model.Film, genreIDs, peopleIDs []uint64) url.Values {
	v := url.Values{
		"name":        {f.Name},
		"origin_name": {f.OriginName},
		"slogan":      {f.Slogan},
		"trailer_url": {f.TrailerURL},
		"description": {f.Description},
	}
	setInt(v, "length", f.Length)
	setInt(v, "year", f.Year)
	setID(v, "country", f.CountryID)
	setID(v, "director", f.DirectorID)
	for _, id := range genreIDs {
		v.Add("genres", strconv.FormatUint(id, 10))
	}
	for _, id := range peopleIDs {
		v.Add("people", strconv.FormatUint(id, 10))
	}
	return v
}

func AwardValues(a *model.Award) url.Values {
	return url.Values{"name": {a.Name}, "year": {strconv.Itoa(a.Year)}}
}

func NominationValues(n *model.Nomination) url.Values {
	return url.Values{"name": {n.Name}, "award": {strconv.FormatUint(n.AwardID, 10)}}
}

func ResultValues(r *model.Result) url.Values {
	v := url.Values{"nomination": {strconv.FormatUint(r.NominationID, 10)}}
	setID(v, "person", r.PersonID)
	setID(v, "film", r.FilmID)
	if r.IsWon {
		v.Set("is_won", "on")
	}
	return v
}

func setInt(v url.Values, name string, n *int) {
	if n != nil {
		v.Set(name, strconv.Itoa(*n))
	}
}

func setID(v url.Values, name string, id *uint64) {
	if id != nil {
		v.Set(name, strconv.FormatUint(*id, 10))
	}
}

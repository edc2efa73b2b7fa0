package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/film-catalog/internal/model"
)

const filmColumns = "f.id, f.name, f.origin_name, f.slogan, f.length, f.year, f.trailer_url, f.cover, f.description, f.country_id, f.director_id"

// FilmFilter defines filters & pagination for the film list.
type FilmFilter struct {
	Query string // case-insensitive substring of the name; empty matches all
	Page  int
}

// FilmRepo encapsulates all database queries related to films and their
// genre and cast join tables.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the provided DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

func scanFilm(s scanner) (model.Film, error) {
	var (
		f                     model.Film
		length, year          sql.NullInt64
		countryID, directorID sql.NullInt64
	)
	err := s.Scan(&f.ID, &f.Name, &f.OriginName, &f.Slogan, &length, &year,
		&f.TrailerURL, &f.Cover, &f.Description, &countryID, &directorID)
	if err != nil {
		return f, err
	}
	f.Length = intPtr(length)
	f.Year = intPtr(year)
	f.CountryID = idPtr(countryID)
	f.DirectorID = idPtr(directorID)
	return f, nil
}

// queryFilms runs a SELECT of filmColumns and collects the rows.
func queryFilms(ctx context.Context, db *sql.DB, q string, args ...any) ([]model.Film, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a film together with its genre and cast links inside a
// single transaction.  On success the film's ID is populated.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film, genreIDs, castIDs []uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO films (name, origin_name, slogan, length, year, trailer_url, cover, description, country_id, director_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.OriginName, f.Slogan, nullInt(f.Length), nullInt(f.Year), f.TrailerURL, f.Cover,
		f.Description, nullID(f.CountryID), nullID(f.DirectorID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return replaceLinks(ctx, tx, f.ID, genreIDs, castIDs)
}

// Update overwrites the film row and replaces its genre and cast links.
func (r *FilmRepo) Update(ctx context.Context, f *model.Film, genreIDs, castIDs []uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var n int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM films WHERE id = ?", f.ID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrFilmNotFound
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE films SET name = ?, origin_name = ?, slogan = ?, length = ?, year = ?, trailer_url = ?,
		        cover = ?, description = ?, country_id = ?, director_id = ?
		 WHERE id = ?`,
		f.Name, f.OriginName, f.Slogan, nullInt(f.Length), nullInt(f.Year), f.TrailerURL, f.Cover,
		f.Description, nullID(f.CountryID), nullID(f.DirectorID), f.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM film_genres WHERE film_id = ?", f.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM film_people WHERE film_id = ?", f.ID); err != nil {
		return err
	}
	return replaceLinks(ctx, tx, f.ID, genreIDs, castIDs)
}

// replaceLinks inserts the join rows of a film.  Duplicated ids are
// skipped so a repeated form value does not break the primary key.
func replaceLinks(ctx context.Context, tx *sql.Tx, filmID uint64, genreIDs, castIDs []uint64) error {
	seen := map[uint64]bool{}
	for _, gid := range genreIDs {
		if seen[gid] {
			continue
		}
		seen[gid] = true
		if _, err := tx.ExecContext(ctx, "INSERT INTO film_genres (film_id, genre_id) VALUES (?, ?)", filmID, gid); err != nil {
			return err
		}
	}
	seen = map[uint64]bool{}
	for _, pid := range castIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if _, err := tx.ExecContext(ctx, "INSERT INTO film_people (film_id, person_id) VALUES (?, ?)", filmID, pid); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a film row without relations or returns ErrFilmNotFound.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	f, err := scanFilm(r.db.QueryRowContext(ctx, "SELECT "+filmColumns+" FROM films f WHERE f.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Exists reports whether a film with the given ID exists.
func (r *FilmRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "films", id)
}

// ListAll returns every film ordered by id.  It feeds the select box of
// the result form.
func (r *FilmRepo) ListAll(ctx context.Context) ([]model.Film, error) {
	return queryFilms(ctx, r.db, "SELECT "+filmColumns+" FROM films f ORDER BY f.id")
}

// List returns one page of films optionally filtered by name.
func (r *FilmRepo) List(ctx context.Context, f FilmFilter) ([]model.Film, Page, error) {
	if f.Query == "" {
		return r.listPage(ctx, "FROM films f", "1=1", nil, f.Page)
	}
	return r.listPage(ctx, "FROM films f", "LOWER(f.name) LIKE ? ESCAPE '!'", []any{containsPattern(f.Query)}, f.Page)
}

// ListByCountry returns one page of the films of a country.
func (r *FilmRepo) ListByCountry(ctx context.Context, countryID uint64, page int) ([]model.Film, Page, error) {
	return r.listPage(ctx, "FROM films f", "f.country_id = ?", []any{countryID}, page)
}

// ListByGenre returns one page of the films tagged with a genre.
func (r *FilmRepo) ListByGenre(ctx context.Context, genreID uint64, page int) ([]model.Film, Page, error) {
	return r.listPage(ctx, "FROM films f JOIN film_genres fg ON fg.film_id = f.id", "fg.genre_id = ?", []any{genreID}, page)
}

func (r *FilmRepo) listPage(ctx context.Context, from, cond string, args []any, number int) ([]model.Film, Page, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from+" WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, Page{}, err
	}
	page := Paginate(total, number, PageSize)

	argsData := append(append([]any{}, args...), page.Size, page.Offset())
	items, err := queryFilms(ctx, r.db, "SELECT "+filmColumns+" "+from+" WHERE "+cond+" ORDER BY f.id LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, Page{}, err
	}
	return items, page, nil
}

// GenreIDs returns the ids of the genres linked to a film.
func (r *FilmRepo) GenreIDs(ctx context.Context, filmID uint64) ([]uint64, error) {
	return r.ids(ctx, "SELECT genre_id FROM film_genres WHERE film_id = ? ORDER BY genre_id", filmID)
}

// CastIDs returns the ids of the people in a film's cast.
func (r *FilmRepo) CastIDs(ctx context.Context, filmID uint64) ([]uint64, error) {
	return r.ids(ctx, "SELECT person_id FROM film_people WHERE film_id = ? ORDER BY person_id", filmID)
}

func (r *FilmRepo) ids(ctx context.Context, q string, filmID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetDetail loads a film with its country, genres, director, cast and
// award results (each with nomination and award).
func (r *FilmRepo) GetDetail(ctx context.Context, id uint64) (*model.FilmDetail, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &model.FilmDetail{Film: *f}

	if f.CountryID != nil {
		var c model.Country
		err := r.db.QueryRowContext(ctx, "SELECT id, name FROM countries WHERE id = ?", *f.CountryID).Scan(&c.ID, &c.Name)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			d.Country = &c
		}
	}
	if f.DirectorID != nil {
		p, err := scanPerson(r.db.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people p WHERE p.id = ?", *f.DirectorID))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			d.Director = &p
		}
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT g.id, g.name FROM genres g JOIN film_genres fg ON fg.genre_id = g.id WHERE fg.film_id = ? ORDER BY g.id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	d.Genres = []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		d.Genres = append(d.Genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cast, err := (&PersonRepo{db: r.db}).query(ctx,
		"SELECT "+personColumns+" FROM people p JOIN film_people fp ON fp.person_id = p.id WHERE fp.film_id = ? ORDER BY p.id", id)
	if err != nil {
		return nil, err
	}
	d.Cast = cast

	if d.Results, err = queryResultEntries(ctx, r.db, "r.film_id = ?", id); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a film.  Genre and cast links cascade; results keep
// existing with a NULL film.
func (r *FilmRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM films WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFilmNotFound
	}
	return nil
}

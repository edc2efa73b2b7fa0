package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/film-catalog/internal/model"
)

const personColumns = "p.id, p.name, p.origin_name, p.birthday, p.photo"

// PersonFilter defines filters & pagination for the people list.
type PersonFilter struct {
	Query string // case-insensitive substring of the name; empty matches all
	Page  int
}

// PersonRepo encapsulates all database queries related to people.
type PersonRepo struct {
	db *sql.DB
}

// NewPersonRepo constructs a PersonRepo with the provided DB handle.
func NewPersonRepo(db *sql.DB) *PersonRepo {
	return &PersonRepo{db: db}
}

func scanPerson(s scanner) (model.Person, error) {
	var (
		p        model.Person
		birthday sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &p.OriginName, &birthday, &p.Photo); err != nil {
		return p, err
	}
	p.Birthday = timePtr(birthday)
	return p, nil
}

func (r *PersonRepo) query(ctx context.Context, q string, args ...any) ([]model.Person, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new person and populates its ID.
func (r *PersonRepo) Create(ctx context.Context, p *model.Person) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO people (name, origin_name, birthday, photo) VALUES (?, ?, ?, ?)",
		p.Name, p.OriginName, nullDate(p.Birthday), p.Photo)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a person by ID or returns ErrPersonNotFound.
func (r *PersonRepo) GetByID(ctx context.Context, id uint64) (*model.Person, error) {
	p, err := scanPerson(r.db.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people p WHERE p.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Exists reports whether a person with the given ID exists.
func (r *PersonRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "people", id)
}

// CountExisting returns how many of ids refer to existing people.
func (r *PersonRepo) CountExisting(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	marks, args := inClause(ids)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM people WHERE id IN ("+marks+")", args...).Scan(&n)
	return n, err
}

// ListAll returns every person ordered by id.  It feeds the select boxes
// of the result form.
func (r *PersonRepo) ListAll(ctx context.Context) ([]model.Person, error) {
	return r.query(ctx, "SELECT "+personColumns+" FROM people p ORDER BY p.id")
}

// List returns one page of people optionally filtered by name.
func (r *PersonRepo) List(ctx context.Context, f PersonFilter) ([]model.Person, Page, error) {
	cond, args := "1=1", []any{}
	if f.Query != "" {
		cond = "LOWER(p.name) LIKE ? ESCAPE '!'"
		args = append(args, containsPattern(f.Query))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people p WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, Page{}, err
	}
	page := Paginate(total, f.Page, PageSize)

	argsData := append(append([]any{}, args...), page.Size, page.Offset())
	items, err := r.query(ctx, "SELECT "+personColumns+" FROM people p WHERE "+cond+" ORDER BY p.id LIMIT ? OFFSET ?", argsData...)
	if err != nil {
		return nil, Page{}, err
	}
	return items, page, nil
}

// Autocomplete returns people whose name starts with q, ignoring case.
// An empty q returns everybody.
func (r *PersonRepo) Autocomplete(ctx context.Context, q string) ([]model.Person, error) {
	if q == "" {
		return r.ListAll(ctx)
	}
	return r.query(ctx, "SELECT "+personColumns+" FROM people p WHERE LOWER(p.name) LIKE ? ESCAPE '!' ORDER BY p.id", prefixPattern(q))
}

// GetDetail loads a person with the films they directed, the films they
// acted in and their award results.
func (r *PersonRepo) GetDetail(ctx context.Context, id uint64) (*model.PersonDetail, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &model.PersonDetail{Person: *p}

	if d.Directed, err = queryFilms(ctx, r.db,
		"SELECT "+filmColumns+" FROM films f WHERE f.director_id = ? ORDER BY f.id", id); err != nil {
		return nil, err
	}
	if d.ActedIn, err = queryFilms(ctx, r.db,
		"SELECT "+filmColumns+" FROM films f JOIN film_people fp ON fp.film_id = f.id WHERE fp.person_id = ? ORDER BY f.id", id); err != nil {
		return nil, err
	}
	if d.Results, err = queryResultEntries(ctx, r.db, "r.person_id = ?", id); err != nil {
		return nil, err
	}
	return d, nil
}

// Update overwrites every column of the person.
func (r *PersonRepo) Update(ctx context.Context, p *model.Person) error {
	ok, err := r.Exists(ctx, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPersonNotFound
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE people SET name = ?, origin_name = ?, birthday = ?, photo = ? WHERE id = ?",
		p.Name, p.OriginName, nullDate(p.Birthday), p.Photo, p.ID)
	return err
}

// Delete removes a person.  Directed films and results keep existing
// with a NULL reference; cast links are removed.
func (r *PersonRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPersonNotFound
	}
	return nil
}

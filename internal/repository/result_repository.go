package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/film-catalog/internal/model"
)

// resultEntrySelect joins a result with its nomination and award.  The
// person and film are optional and only their id and name are loaded.
const resultEntrySelect = `SELECT r.id, r.nomination_id, r.person_id, r.film_id, r.is_won,
       n.id, n.name, n.award_id, a.id, a.name, a.year, p.name, f.name
FROM results r
JOIN nominations n ON n.id = r.nomination_id
JOIN awards a ON a.id = n.award_id
LEFT JOIN people p ON p.id = r.person_id
LEFT JOIN films f ON f.id = r.film_id`

// ResultRepo encapsulates all database queries related to award results.
type ResultRepo struct {
	db *sql.DB
}

// NewResultRepo constructs a ResultRepo with the provided DB handle.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

func scanResultEntry(s scanner) (model.ResultEntry, error) {
	var (
		e                  model.ResultEntry
		personID, filmID   sql.NullInt64
		personName, filmNm sql.NullString
	)
	err := s.Scan(&e.Result.ID, &e.Result.NominationID, &personID, &filmID, &e.Result.IsWon,
		&e.Nomination.ID, &e.Nomination.Name, &e.Nomination.AwardID,
		&e.Award.ID, &e.Award.Name, &e.Award.Year, &personName, &filmNm)
	if err != nil {
		return e, err
	}
	e.Result.PersonID = idPtr(personID)
	e.Result.FilmID = idPtr(filmID)
	if e.Result.PersonID != nil && personName.Valid {
		e.Person = &model.Person{ID: *e.Result.PersonID, Name: personName.String}
	}
	if e.Result.FilmID != nil && filmNm.Valid {
		e.Film = &model.Film{ID: *e.Result.FilmID, Name: filmNm.String}
	}
	return e, nil
}

// queryResultEntries returns the result entries matching where, in id order.
func queryResultEntries(ctx context.Context, db *sql.DB, where string, args ...any) ([]model.ResultEntry, error) {
	q := resultEntrySelect
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY r.id"

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ResultEntry{}
	for rows.Next() {
		e, err := scanResultEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a result and populates its ID.
func (r *ResultRepo) Create(ctx context.Context, res *model.Result) error {
	out, err := r.db.ExecContext(ctx,
		"INSERT INTO results (nomination_id, person_id, film_id, is_won) VALUES (?, ?, ?, ?)",
		res.NominationID, nullID(res.PersonID), nullID(res.FilmID), res.IsWon)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID fetches a bare result row or returns ErrResultNotFound.
func (r *ResultRepo) GetByID(ctx context.Context, id uint64) (*model.Result, error) {
	var (
		res              model.Result
		personID, filmID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, nomination_id, person_id, film_id, is_won FROM results WHERE id = ?", id).
		Scan(&res.ID, &res.NominationID, &personID, &filmID, &res.IsWon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	res.PersonID = idPtr(personID)
	res.FilmID = idPtr(filmID)
	return &res, nil
}

// ListAll returns every result with its nomination, award, person and film.
func (r *ResultRepo) ListAll(ctx context.Context) ([]model.ResultEntry, error) {
	return queryResultEntries(ctx, r.db, "")
}

// GetDetail loads a result with its nomination, award, person and film.
func (r *ResultRepo) GetDetail(ctx context.Context, id uint64) (*model.ResultEntry, error) {
	entries, err := queryResultEntries(ctx, r.db, "r.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrResultNotFound
	}
	return &entries[0], nil
}

// Update overwrites every column of the result.
func (r *ResultRepo) Update(ctx context.Context, res *model.Result) error {
	ok, err := exists(ctx, r.db, "results", res.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResultNotFound
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE results SET nomination_id = ?, person_id = ?, film_id = ?, is_won = ? WHERE id = ?",
		res.NominationID, nullID(res.PersonID), nullID(res.FilmID), res.IsWon, res.ID)
	return err
}

// Delete removes a result.
func (r *ResultRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM results WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResultNotFound
	}
	return nil
}

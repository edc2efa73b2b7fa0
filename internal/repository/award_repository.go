package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/film-catalog/internal/model"
)

// AwardFilter defines the filters of the award list.  Year holds the raw
// query parameter; it is applied only when it consists of digits.
type AwardFilter struct {
	Query string
	Year  string
}

// yearValue returns the exact year to filter by, if any.
func (f AwardFilter) yearValue() (int, bool) {
	y := strings.TrimSpace(f.Year)
	if y == "" {
		return 0, false
	}
	for _, ch := range y {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AwardRepo encapsulates all database queries related to awards.
type AwardRepo struct {
	db *sql.DB
}

// NewAwardRepo constructs an AwardRepo with the provided DB handle.
func NewAwardRepo(db *sql.DB) *AwardRepo {
	return &AwardRepo{db: db}
}

func (r *AwardRepo) query(ctx context.Context, q string, args ...any) ([]model.Award, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Award{}
	for rows.Next() {
		var a model.Award
		if err := rows.Scan(&a.ID, &a.Name, &a.Year); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new award and populates its ID.
func (r *AwardRepo) Create(ctx context.Context, a *model.Award) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO awards (name, year) VALUES (?, ?)", a.Name, a.Year)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an award or returns ErrAwardNotFound.
func (r *AwardRepo) GetByID(ctx context.Context, id uint64) (*model.Award, error) {
	var a model.Award
	err := r.db.QueryRowContext(ctx, "SELECT id, name, year FROM awards WHERE id = ?", id).Scan(&a.ID, &a.Name, &a.Year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAwardNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Exists reports whether an award with the given ID exists.
func (r *AwardRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "awards", id)
}

// ListAll returns every award ordered by id.  It feeds the select box of
// the nomination form.
func (r *AwardRepo) ListAll(ctx context.Context) ([]model.Award, error) {
	return r.query(ctx, "SELECT id, name, year FROM awards ORDER BY id")
}

// List returns awards filtered by name substring and exact year, newest
// year first and alphabetically within a year.
func (r *AwardRepo) List(ctx context.Context, f AwardFilter) ([]model.Award, error) {
	var (
		where []string
		args  []any
	)
	if f.Query != "" {
		where = append(where, "LOWER(name) LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(f.Query))
	}
	if y, ok := f.yearValue(); ok {
		where = append(where, "year = ?")
		args = append(args, y)
	}
	q := "SELECT id, name, year FROM awards"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY year DESC, name ASC, id ASC"
	return r.query(ctx, q, args...)
}

// GetDetail loads an award with its nominations, each carrying its
// results.
func (r *AwardRepo) GetDetail(ctx context.Context, id uint64) (*model.AwardDetail, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &model.AwardDetail{Award: *a, Nominations: []model.NominationResults{}}

	noms, err := queryNominations(ctx, r.db, "WHERE award_id = ? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	entries, err := queryResultEntries(ctx, r.db, "n.award_id = ?", id)
	if err != nil {
		return nil, err
	}
	byNomination := make(map[uint64][]model.ResultEntry, len(noms))
	for _, e := range entries {
		byNomination[e.Result.NominationID] = append(byNomination[e.Result.NominationID], e)
	}
	for _, n := range noms {
		results := byNomination[n.ID]
		if results == nil {
			results = []model.ResultEntry{}
		}
		d.Nominations = append(d.Nominations, model.NominationResults{Nomination: n, Results: results})
	}
	return d, nil
}

// Update overwrites name and year of the award.
func (r *AwardRepo) Update(ctx context.Context, a *model.Award) error {
	ok, err := r.Exists(ctx, a.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAwardNotFound
	}
	_, err = r.db.ExecContext(ctx, "UPDATE awards SET name = ?, year = ? WHERE id = ?", a.Name, a.Year, a.ID)
	return err
}

// Delete removes an award.  Its nominations and their results cascade.
func (r *AwardRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM awards WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAwardNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/film-catalog/internal/model"
)

// NominationRepo encapsulates all database queries related to nominations.
type NominationRepo struct {
	db *sql.DB
}

// NewNominationRepo constructs a NominationRepo with the provided DB handle.
func NewNominationRepo(db *sql.DB) *NominationRepo {
	return &NominationRepo{db: db}
}

// queryNominations selects bare nomination rows; tail is appended to the
// SELECT (WHERE/ORDER BY clauses).
func queryNominations(ctx context.Context, db *sql.DB, tail string, args ...any) ([]model.Nomination, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, award_id FROM nominations "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Nomination{}
	for rows.Next() {
		var n model.Nomination
		if err := rows.Scan(&n.ID, &n.Name, &n.AwardID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NominationRepo) queryEntries(ctx context.Context, where string, args ...any) ([]model.NominationEntry, error) {
	q := `SELECT n.id, n.name, n.award_id, a.id, a.name, a.year
FROM nominations n
JOIN awards a ON a.id = n.award_id`
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY n.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.NominationEntry{}
	for rows.Next() {
		var e model.NominationEntry
		if err := rows.Scan(&e.Nomination.ID, &e.Nomination.Name, &e.Nomination.AwardID,
			&e.Award.ID, &e.Award.Name, &e.Award.Year); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new nomination and populates its ID.
func (r *NominationRepo) Create(ctx context.Context, n *model.Nomination) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO nominations (name, award_id) VALUES (?, ?)", n.Name, n.AwardID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// GetByID fetches a bare nomination or returns ErrNominationNotFound.
func (r *NominationRepo) GetByID(ctx context.Context, id uint64) (*model.Nomination, error) {
	items, err := queryNominations(ctx, r.db, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNominationNotFound
	}
	return &items[0], nil
}

// Exists reports whether a nomination with the given ID exists.
func (r *NominationRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "nominations", id)
}

// ListAll returns every nomination with its award, ordered by id.
func (r *NominationRepo) ListAll(ctx context.Context) ([]model.NominationEntry, error) {
	return r.queryEntries(ctx, "")
}

// GetDetail loads a nomination with its award and its results.
func (r *NominationRepo) GetDetail(ctx context.Context, id uint64) (*model.NominationDetail, error) {
	entries, err := r.queryEntries(ctx, "n.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNominationNotFound
	}
	d := &model.NominationDetail{NominationEntry: entries[0]}
	if d.Results, err = queryResultEntries(ctx, r.db, "r.nomination_id = ?", id); err != nil {
		return nil, err
	}
	return d, nil
}

// Update overwrites name and award of the nomination.
func (r *NominationRepo) Update(ctx context.Context, n *model.Nomination) error {
	ok, err := r.Exists(ctx, n.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNominationNotFound
	}
	_, err = r.db.ExecContext(ctx, "UPDATE nominations SET name = ?, award_id = ? WHERE id = ?", n.Name, n.AwardID, n.ID)
	return err
}

// Delete removes a nomination together with its results.
func (r *NominationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM nominations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNominationNotFound
	}
	return nil
}

// Package repository contains data access logic separated from HTTP handlers.
// This file defines the country repository: CRUD plus the prefix lookup
// used by the country autocomplete widget.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/film-catalog/internal/model"
)

// CountryRepo encapsulates all database queries related to countries.
type CountryRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCountryRepo constructs a CountryRepo with the provided DB handle.
func NewCountryRepo(db *sql.DB) *CountryRepo {
	return &CountryRepo{db: db}
}

// Create inserts a new country and populates its ID.
func (r *CountryRepo) Create(ctx context.Context, c *model.Country) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO countries (name) VALUES (?)", c.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a country by its ID.  It returns ErrCountryNotFound if
// no row is found.
func (r *CountryRepo) GetByID(ctx context.Context, id uint64) (*model.Country, error) {
	var c model.Country
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM countries WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Exists reports whether a country with the given ID exists.
func (r *CountryRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "countries", id)
}

// ListAll returns every country ordered by id.
func (r *CountryRepo) ListAll(ctx context.Context) ([]model.Country, error) {
	return r.query(ctx, "SELECT id, name FROM countries ORDER BY id")
}

// Autocomplete returns countries whose name starts with q, ignoring case.
// An empty q returns every country.
func (r *CountryRepo) Autocomplete(ctx context.Context, q string) ([]model.Country, error) {
	if q == "" {
		return r.ListAll(ctx)
	}
	return r.query(ctx, "SELECT id, name FROM countries WHERE LOWER(name) LIKE ? ESCAPE '!' ORDER BY id", prefixPattern(q))
}

// Update overwrites the country name.  Last write wins.
func (r *CountryRepo) Update(ctx context.Context, c *model.Country) error {
	ok, err := r.Exists(ctx, c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCountryNotFound
	}
	_, err = r.db.ExecContext(ctx, "UPDATE countries SET name = ? WHERE id = ?", c.Name, c.ID)
	return err
}

// Delete removes a country.  Films keep existing with a NULL country.
func (r *CountryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM countries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCountryNotFound
	}
	return nil
}

func (r *CountryRepo) query(ctx context.Context, q string, args ...any) ([]model.Country, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Country{}
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

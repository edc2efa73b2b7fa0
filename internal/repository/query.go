package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// likeEscape is the escape character used by every LIKE pattern built in
// this package.  '!' behaves the same in MySQL and SQLite string literals.
const likeEscape = "!"

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

// containsPattern builds a case-insensitive "contains" pattern for
// `LOWER(col) LIKE ? ESCAPE '!'`.
func containsPattern(q string) string {
	return "%" + escapeLike(strings.ToLower(q)) + "%"
}

// prefixPattern builds a case-insensitive "starts with" pattern.
func prefixPattern(q string) string {
	return escapeLike(strings.ToLower(q)) + "%"
}

// exists reports whether table has a row with the given id.  table is
// always a constant supplied by this package.
func exists(ctx context.Context, db *sql.DB, table string, id uint64) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table+" WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// nullID converts an optional foreign key to a driver value.
func nullID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// nullInt converts an optional integer to a driver value.
func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullDate converts an optional date to a driver value stored as YYYY-MM-DD.
func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// idPtr converts a scanned nullable id to a pointer.
func idPtr(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	id := uint64(v.Int64)
	return &id
}

// intPtr converts a scanned nullable integer to a pointer.
func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// timePtr converts a scanned nullable time to a pointer.
func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// inClause returns "?, ?, ?" for n placeholders together with the args.
func inClause(ids []uint64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

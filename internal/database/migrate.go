package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate creates every table used by the catalog if it does not exist
// yet.  The schema file is picked by driver name.  Statements are run one
// by one so the MySQL DSN does not need multiStatements.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	file := "migrations/mysql.sql"
	if driver == DriverSQLite {
		file = "migrations/sqlite.sql"
	}
	b, err := migrations.ReadFile(file)
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(string(b)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", file, err)
		}
	}
	return nil
}

// splitStatements breaks a schema file on semicolons.  The schema files
// contain no string literals with semicolons.
func splitStatements(schema string) []string {
	var out []string
	for _, part := range strings.Split(schema, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// Supported values of DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// sqliteDriver is go-sqlite3 with LOWER replaced by a Unicode-aware
// version; the builtin only folds ASCII, which breaks case-insensitive
// search over Cyrillic names.
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// Options carries the connection settings read from the environment.
type Options struct {
	Driver string // mysql | sqlite3
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string // sqlite database file
}

// Open connects to the configured database and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	switch o.Driver {
	case "", DriverMySQL:
		return OpenMySQL(o.User, o.Pass, o.Host, o.Port, o.Name)
	case DriverSQLite:
		return OpenSQLite(o.Path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", o.Driver)
	}
}

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database file with foreign keys enabled.
// SQLite serialises writers, so the pool is limited to one connection.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = "catalog.db"
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping checks the connection with a timeout.
func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

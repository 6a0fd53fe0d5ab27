package migrations

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects where the database lives. A non-empty Url opens a remote
// libsql database, otherwise File is opened with the local sqlite driver.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

func openRemote(rawUrl, authToken string) (*sql.DB, error) {
	dbUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	if !strings.HasPrefix(dbUrl.Scheme, "libsql") && !strings.HasPrefix(dbUrl.Scheme, "http") {
		return nil, wrapOpenDB(fmt.Errorf("unsupported database url scheme '%s'", dbUrl.Scheme))
	}
	if authToken != "" {
		query := dbUrl.Query()
		query.Set("authToken", authToken)
		dbUrl.RawQuery = query.Encode()
	}

	db, err := sql.Open("libsql", dbUrl.String())
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func (c Config) Open() (*sql.DB, error) {
	if c.Url != "" {
		return openRemote(c.Url, c.AuthToken)
	}
	if c.File == "" {
		return nil, wrapOpenDB(fmt.Errorf("neither a file nor a url was specified"))
	}
	return OpenDB(c.File)
}

func wrapOpenAndMigrate(err error) error {
	return fmt.Errorf("open and migrate db: %w", err)
}

// OpenAndMigrateDB opens the configured database and applies the schema. The
// schema must only contain idempotent statements.
func OpenAndMigrateDB(schema string, config Config) (*sql.DB, error) {
	db, err := config.Open()
	if err != nil {
		return nil, wrapOpenAndMigrate(err)
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenAndMigrate(err)
	}
	return db, nil
}

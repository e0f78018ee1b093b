package dbclient

import (
	"github.com/Skino1337/PyPoE/internal/domain"

	_ "modernc.org/sqlite"
)

// newSQLiteConnector opens an exported SQLite file read-only, with a busy
// timeout so a concurrent writer does not fail the export.
func newSQLiteConnector(conn *domain.DatabaseConnection) (*sqlConnector, error) {
	dsn := "file:" + conn.Host + "?mode=ro&_pragma=busy_timeout(5000)"
	return newSQLConnector("sqlite", dsn)
}

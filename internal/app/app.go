package app

import (
	"fmt"
	"strings"

	"github.com/bgunnarsson/binbackup/internal/db"
	"github.com/bgunnarsson/binbackup/internal/db/mssql"
	"github.com/bgunnarsson/binbackup/internal/db/mysql"
	"github.com/bgunnarsson/binbackup/internal/db/postgres"
	"github.com/bgunnarsson/binbackup/internal/db/sqlite"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMssql    Driver = "mssql"
	DriverMysql    Driver = "mysql"
)

// DriverFromURL picks the driver from the URL scheme. SQLAlchemy-style
// "dialect+driver" schemes are accepted. A value without a scheme is
// treated as a sqlite file path.
func DriverFromURL(url string) (Driver, error) {
	if url == "" {
		return "", fmt.Errorf("empty database URL")
	}
	i := strings.Index(url, "://")
	if i == -1 {
		return DriverSqlite, nil
	}

	scheme := strings.ToLower(url[:i])
	if plus := strings.Index(scheme, "+"); plus != -1 {
		scheme = scheme[:plus]
	}

	switch scheme {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "mysql", "mariadb":
		return DriverMysql, nil
	case "sqlserver", "mssql":
		return DriverMssql, nil
	case "sqlite":
		return DriverSqlite, nil
	default:
		return "", fmt.Errorf("unsupported database URL scheme %q", scheme)
	}
}

// central factory
func openDB(driver Driver, dsn string) (db.DB, error) {
	switch driver {
	case "", DriverSqlite:
		return sqlite.Open(dsn)
	case DriverPostgres:
		return postgres.Open(dsn)
	case DriverMssql:
		return mssql.Open(dsn)
	case DriverMysql:
		return mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

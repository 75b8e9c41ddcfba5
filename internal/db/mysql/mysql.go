package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/binbackup/internal/db"
)

type MysqlDB struct {
	db *sql.DB
}

func Open(dsn string) (*MysqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mysql DSN")
	}

	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	sqldb := sql.OpenDB(connector)

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return &MysqlDB{db: sqldb}, nil
}

// ParseDSN accepts either a mysql:// URL or a native driver DSN
// (user:pass@tcp(host:3306)/db). DATETIME columns are always parsed
// into time.Time.
func ParseDSN(dsn string) (*driver.Config, error) {
	if i := strings.Index(dsn, "://"); i != -1 {
		scheme := dsn[:i]
		if plus := strings.Index(scheme, "+"); plus != -1 {
			scheme = scheme[:plus]
		}
		if scheme != "mysql" && scheme != "mariadb" {
			return nil, fmt.Errorf("unsupported mysql scheme %q", scheme)
		}
		return fromURL("mysql" + dsn[i:])
	}

	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	return cfg, nil
}

func fromURL(raw string) (*driver.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	cfg := driver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.ParseTime = true

	for k, vs := range u.Query() {
		if len(vs) == 0 {
			continue
		}
		switch k {
		case "ssl-mode", "sslmode":
			if strings.EqualFold(vs[0], "required") {
				cfg.TLSConfig = "true"
			}
		case "tls":
			cfg.TLSConfig = vs[0]
		default:
			if cfg.Params == nil {
				cfg.Params = map[string]string{}
			}
			cfg.Params[k] = vs[0]
		}
	}

	return cfg, nil
}

func (m *MysqlDB) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *MysqlDB) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (m *MysqlDB) Query(ctx context.Context, sqlQuery string, args ...any) (*db.Rows, error) {
	rows, err := m.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// MySQL returns TEXT/VARCHAR as []byte
	return db.Collect(rows, db.BytesToString)
}

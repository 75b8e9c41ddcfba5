package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/bgunnarsson/binbackup/internal/db"
)

type MssqlDB struct {
	db *sql.DB
}

// Open opens a MSSQL connection.
// If the DSN contains "fedauth=", we use the Azure AD driver (azuresql)
// so things like ActiveDirectoryInteractive / AzCli work.
func Open(dsn string) (*MssqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mssql DSN")
	}

	sqldb, err := sql.Open(DriverName(dsn), normalizeScheme(dsn))
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return &MssqlDB{db: sqldb}, nil
}

// DriverName picks the database/sql driver registered for dsn.
func DriverName(dsn string) string {
	if strings.Contains(strings.ToLower(dsn), "fedauth=") {
		return azuread.DriverName // "azuresql"
	}
	return "sqlserver"
}

// go-mssqldb only parses sqlserver:// URLs.
func normalizeScheme(dsn string) string {
	for _, prefix := range []string{"mssql://", "mssql+pyodbc://", "mssql+pymssql://"} {
		if strings.HasPrefix(strings.ToLower(dsn), prefix) {
			return "sqlserver://" + dsn[len(prefix):]
		}
	}
	return dsn
}

func (m *MssqlDB) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *MssqlDB) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (m *MssqlDB) Query(ctx context.Context, sqlQuery string, args ...any) (*db.Rows, error) {
	rows, err := m.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.Collect(rows, convertValue)
}

func convertValue(col db.Column, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}

	// NEVER string() binary; it wrecks the sheet.
	switch col.Type {
	case "uniqueidentifier":
		return formatUniqueIdentifier(b)
	case "char", "varchar", "text", "nchar", "nvarchar", "ntext", "decimal", "numeric", "money", "smallmoney":
		return string(b)
	default:
		// safe hex representation for any other binary
		return fmt.Sprintf("0x%x", b)
	}
}

// SQL Server stores the first three GUID groups little-endian.
func formatUniqueIdentifier(b []byte) string {
	if len(b) != 16 {
		return fmt.Sprintf("%x", b)
	}

	var id uuid.UUID
	copy(id[:], b)
	id[0], id[1], id[2], id[3] = b[3], b[2], b[1], b[0]
	id[4], id[5] = b[5], b[4]
	id[6], id[7] = b[7], b[6]
	return id.String()
}

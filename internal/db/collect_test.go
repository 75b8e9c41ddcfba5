package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqldb.Close() }()

	created := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("id").OfType("INT4", int64(0)),
		mock.NewColumn("name").OfType("TEXT", ""),
		mock.NewColumn("createdAt").OfType("TIMESTAMPTZ", time.Time{}),
	).
		AddRow(int64(1), []byte("Bu Sari"), created).
		AddRow(int64(2), []byte("Pak Budi"), nil)
	mock.ExpectQuery(`SELECT \* FROM "Teacher"`).WillReturnRows(rows)

	sqlRows, err := sqldb.Query(`SELECT * FROM "Teacher"`)
	require.NoError(t, err)
	defer func() { _ = sqlRows.Close() }()

	got, err := Collect(sqlRows, BytesToString)
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "id", Type: "int4"},
		{Name: "name", Type: "text"},
		{Name: "createdAt", Type: "timestamptz"},
	}, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, Row{int64(1), "Bu Sari", created}, got.Data[0])
	assert.Equal(t, Row{int64(2), "Pak Budi", nil}, got.Data[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollect_EmptyResult(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqldb.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(mock.NewRowsWithColumnDefinition(
		mock.NewColumn("id").OfType("INT4", int64(0)),
	))

	sqlRows, err := sqldb.Query("SELECT id FROM empty")
	require.NoError(t, err)
	defer func() { _ = sqlRows.Close() }()

	got, err := Collect(sqlRows, nil)
	require.NoError(t, err)
	assert.Len(t, got.Columns, 1)
	assert.NotNil(t, got.Data)
	assert.Equal(t, 0, got.Len())
}

func TestCollect_RowError(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqldb.Close() }()

	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("id").OfType("INT4", int64(0)),
	).
		AddRow(int64(1)).
		AddRow(int64(2)).
		RowError(1, assert.AnError)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	sqlRows, err := sqldb.Query("SELECT id FROM broken")
	require.NoError(t, err)
	defer func() { _ = sqlRows.Close() }()

	_, err = Collect(sqlRows, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestColumn_HasTimezone(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"timestamptz", true},
		{"TIMESTAMPTZ", true},
		{"timestamp with time zone", true},
		{"datetimeoffset", true},
		{"timestamp", false},
		{"datetime2", false},
		{"text", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, Column{Name: "c", Type: tt.typ}.HasTimezone())
		})
	}
}

func TestRows_Len(t *testing.T) {
	var nilRows *Rows
	assert.Equal(t, 0, nilRows.Len())
	assert.Equal(t, 2, (&Rows{Data: []Row{{1}, {2}}}).Len())
}

package db

import (
	"database/sql"
	"strings"
)

// ValueFunc converts one scanned driver value for the given column.
type ValueFunc func(col Column, v any) any

// Collect drains rows into memory. Column types are the lower-cased
// database type names reported by the driver. rows is not closed.
func Collect(rows *sql.Rows, conv ValueFunc) (*Rows, error) {
	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	header := make([]Column, len(colNames))
	for i, name := range colNames {
		typ := ""
		if i < len(colTypes) && colTypes[i] != nil {
			typ = strings.ToLower(colTypes[i].DatabaseTypeName())
		}
		header[i] = Column{
			Name: name,
			Type: typ,
		}
	}

	data := []Row{}
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		if conv != nil {
			for i, v := range values {
				values[i] = conv(header[i], v)
			}
		}

		data = append(data, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Rows{
		Columns: header,
		Data:    data,
	}, nil
}

// BytesToString is the common ValueFunc for drivers that return text as []byte.
func BytesToString(_ Column, v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

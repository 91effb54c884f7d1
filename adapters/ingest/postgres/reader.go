// Package postgres reads a database table into a dataset, making Postgres an
// ingestion source alongside CSV and xlsx uploads.
package postgres

import (
	"context"
	"fmt"
	"time"

	"hypolab/domain/dataset"
	apperrors "hypolab/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Reader pulls tables out of a Postgres database
type Reader struct {
	db *sqlx.DB
}

// NewReader connects to the database and verifies the connection
func NewReader(databaseURL string) (*Reader, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, apperrors.IngestError("failed to connect to postgres", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Reader{db: db}, nil
}

// Close releases the connection pool
func (r *Reader) Close() error {
	return r.db.Close()
}

// ReadDataset loads every row of the table into a Dataset. Column types come
// from the caller's declarations; undeclared columns default to qualitative,
// the safe reading for arbitrary SQL values.
func (r *Reader) ReadDataset(ctx context.Context, table string, declared map[string]dataset.VarType) (*dataset.Dataset, error) {
	query := fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(table))
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, apperrors.IngestError(fmt.Sprintf("failed to read table %q", table), err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, apperrors.IngestError("failed to read column names", err)
	}

	raw := make([][]string, len(names))
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, apperrors.IngestError("failed to scan row", err)
		}
		for j, v := range values {
			raw[j] = append(raw[j], cellString(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.IngestError("failed while iterating rows", err)
	}

	columns := make([]dataset.Column, len(names))
	for j, name := range names {
		varType, ok := declared[name]
		if !ok {
			varType = dataset.TypeQualitative
		}
		columns[j] = dataset.Column{Name: name, Type: varType, Raw: raw[j]}
	}

	ds, err := dataset.New(columns)
	if err != nil {
		return nil, apperrors.IngestError(fmt.Sprintf("table %q has an invalid shape", table), err)
	}
	return ds, nil
}

// cellString renders a scanned SQL value as a dataset cell, with NULL as the
// missing marker.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}

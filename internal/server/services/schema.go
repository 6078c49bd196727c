package services

import (
	"context"
	"fmt"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
)

const schemaQuery = `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, COLUMN_KEY
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME, ORDINAL_POSITION`

type (
	SchemaColumn = api.SchemaColumn
	TableSchema  = api.TableSchema
)

// Schema maps table names to their columns in ordinal order.
type Schema map[string]*TableSchema

// SchemaService reads table structure from INFORMATION_SCHEMA.
type SchemaService struct {
	db     dbx.DBTX
	logger logging.Logger
}

func NewSchemaService(db dbx.DBTX, logger logging.Logger) *SchemaService {
	return &SchemaService{db: db, logger: logger.With("module", "schema")}
}

// Describe returns every table of dbName. An unknown or empty database
// yields an empty Schema.
func (s *SchemaService) Describe(ctx context.Context, dbName string) (Schema, error) {
	if dbName == "" {
		return nil, fmt.Errorf("%w: dbName is required", common.ErrorValidation)
	}
	if err := sqlid.Validate(dbName); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, schemaQuery, dbName)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	schema := Schema{}
	for rows.Next() {
		var table, key string
		var col SchemaColumn
		if err := rows.Scan(&table, &col.Name, &col.Type, &key); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		col.IsPrimary = key == "PRI"

		t, ok := schema[table]
		if !ok {
			t = &TableSchema{}
			schema[table] = t
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.logger.Debug(ctx, "schema read", "db", dbName, "tables", len(schema))
	return schema, nil
}

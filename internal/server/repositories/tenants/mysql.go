package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
)

type MySQLRepository struct {
	db dbx.DBTX
}

func NewMySQLRepository(db dbx.DBTX) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Reserve(ctx context.Context, username string) (int64, error) {
	query := `INSERT INTO user_databases (username) VALUES (?)`

	res, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		if dbx.IsDuplicateEntry(err) {
			return 0, common.ErrorAlreadyExists
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *MySQLRepository) SetDatabaseName(ctx context.Context, id int64, dbName string) error {
	query := `UPDATE user_databases SET db_name = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, dbName, id); err != nil {
		if dbx.IsDuplicateEntry(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByUsername returns common.ErrorNotFound when the user has no database
// yet, including a row reserved by a provisioning still in flight.
func (r *MySQLRepository) GetByUsername(ctx context.Context, username string) (*models.TenantDatabase, error) {
	query :=
		`SELECT id, username, db_name FROM user_databases
		 WHERE username = ?`

	t := &models.TenantDatabase{}
	var name sql.NullString
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&t.ID, &t.Username, &name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !name.Valid || name.String == "" {
		return nil, common.ErrorNotFound
	}
	t.DBName = name.String

	return t, nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM user_databases WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MySQLRepository) CreateDatabase(ctx context.Context, dbName string) error {
	name, err := sqlid.QuoteValid(dbName)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
)

type MySQLRepository struct {
	db dbx.DBTX
}

func NewMySQLRepository(db dbx.DBTX) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO login_credentials (username, password)
		 VALUES (?, ?)`

	res, err := r.db.ExecContext(ctx, query, c.Username, c.PasswordHash)
	if err != nil {
		if dbx.IsDuplicateEntry(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.ID = id

	return c, nil
}

func (r *MySQLRepository) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {
	query :=
		`SELECT id, username, password FROM login_credentials
		 WHERE username = ?`

	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&c.ID, &c.Username, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

// Package repomanager provides the MySQL RepositoryManager: repository
// constructors bound to a DBTX and the goose migrations of the control
// database.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/migrations"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/credentials"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/refreshtokens"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/tenants"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

type MySQLRepositoryManager struct{}

func (m *MySQLRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewMySQLRepository(db)
}

func (m *MySQLRepositoryManager) Tenants(db dbx.DBTX) tenants.Repository {
	return tenants.NewMySQLRepository(db)
}

func (m *MySQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewMySQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

var gooseSetDialect = goose.SetDialect

// RunMigrations applies the embedded migrations to the control database.
func (m *MySQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := gooseSetDialect("mysql"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewMySQLRepositoryManager() *MySQLRepositoryManager {
	return &MySQLRepositoryManager{}
}

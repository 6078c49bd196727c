package repomanager

import (
	"context"
	"database/sql"

	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/credentials"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/refreshtokens"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/tenants"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Tenants(db dbx.DBTX) tenants.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

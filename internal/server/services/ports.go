package services

import (
	"context"

	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
)

// The interfaces below are what the transports depend on; each is
// satisfied by the service of the same role in this package.

type Accounts interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Authorize(ctx context.Context, username, dbName string) error
}

type RawExecutor interface {
	Execute(ctx context.Context, statement, dbName string) (*sqlexec.Result, error)
}

type BlockExecutor interface {
	Execute(ctx context.Context, req *BlockRequest) (*sqlexec.Result, error)
}

type SchemaReader interface {
	Describe(ctx context.Context, dbName string) (Schema, error)
}

type Exporter interface {
	Export(ctx context.Context, dbName, table string) (*ExportResult, error)
}

var (
	_ Accounts      = (*AccountService)(nil)
	_ RawExecutor   = (*RawSQLService)(nil)
	_ BlockExecutor = (*BlockSQLService)(nil)
	_ SchemaReader  = (*SchemaService)(nil)
	_ Exporter      = (*ExportService)(nil)
)

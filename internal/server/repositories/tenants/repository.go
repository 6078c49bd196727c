// Package tenants maps usernames to their provisioned databases and creates
// those databases.
package tenants

import (
	"context"

	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
)

type Repository interface {
	// Reserve inserts a mapping row without a database name and returns
	// its auto-increment id. A username that already has a row yields
	// common.ErrorAlreadyExists.
	Reserve(ctx context.Context, username string) (int64, error)
	SetDatabaseName(ctx context.Context, id int64, dbName string) error
	GetByUsername(ctx context.Context, username string) (*models.TenantDatabase, error)
	Delete(ctx context.Context, id int64) error

	// CreateDatabase creates the physical database if it is missing.
	CreateDatabase(ctx context.Context, dbName string) error
}

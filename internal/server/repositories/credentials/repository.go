// Package credentials stores login credentials in the control database.
package credentials

import (
	"context"

	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
)

type Repository interface {
	// Create inserts a credential row. A taken username yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
}

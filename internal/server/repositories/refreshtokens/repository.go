// Package refreshtokens declares the repository contract for refresh tokens
// issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for username with an expiry of now+validity.
	Create(ctx context.Context, username string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error
}

// Package services contains the server-side business logic shared by the
// REST and gRPC transports: accounts and tenant provisioning, raw and block
// SQL dispatch, schema introspection and table export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/auth"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/config"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService owns login credentials and the tokens issued for them.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	hashCost                     int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		hashCost:                     bcrypt.DefaultCost,
	}
}

// Register stores a credential with a bcrypt hash of password. A taken
// username yields common.ErrorAlreadyExists, also when a concurrent
// registration wins the race past CheckUsername.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.Credential, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrorValidation)
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Credentials(s.db)
	c, err := repo.Create(ctx, &models.Credential{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return c, nil
}

// CheckUsername reports whether a credential exists for username.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.repomanager.Credentials(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, common.ErrorInternal
	}
	return true, nil
}

// CheckLogin reports whether password matches the stored hash. Unknown
// usernames are compared against a dummy hash so both paths cost the same.
func (s *AuthService) CheckLogin(ctx context.Context, username, password string) (bool, error) {
	c, err := s.repomanager.Credentials(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.getDummyHash(), []byte(password))
			return false, nil
		}
		return false, common.ErrorInternal
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil, nil
}

// IssueTokens mints an access token and stores a new refresh token.
func (s *AuthService) IssueTokens(ctx context.Context, username string) (*TokenPair, error) {
	return s.generateTokenPair(ctx, username, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.Username, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// AccessTokenValidity is used by transports to report token lifetimes.
func (s *AuthService) AccessTokenValidity() time.Duration {
	return s.accessTokenValidityDuration
}

func (s *AuthService) getDummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-password"), s.hashCost)
	})
	return s.dummyHash
}

func (s *AuthService) generateTokenPair(ctx context.Context, username string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(username, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, username, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

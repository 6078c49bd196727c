package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
)

// LoginResult is what a successful login hands back to a client.
type LoginResult struct {
	Username string
	DBName   string
	Tokens   *TokenPair
}

// AccountService strings together the auth and tenant services into the
// flows the clients see: register, login and token refresh.
type AccountService struct {
	auth    *AuthService
	tenants *TenantService
	logger  logging.Logger
}

func NewAccountService(a *AuthService, t *TenantService, logger logging.Logger) *AccountService {
	return &AccountService{auth: a, tenants: t, logger: logger.With("module", "accounts")}
}

// Register creates the credential and the user's database and returns the
// database name.
func (s *AccountService) Register(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	exists, err := s.auth.CheckUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", common.ErrorAlreadyExists
	}

	if _, err := s.auth.Register(ctx, username, password); err != nil {
		return "", err
	}

	dbName, err := s.tenants.CreateUserDatabase(ctx, username)
	if err != nil {
		// the database is provisioned again on the next login
		s.logger.Error(ctx, "registration without database", "username", username, "error", err)
		return "", err
	}

	s.logger.Info(ctx, "user registered", "username", username, "db", dbName)
	return dbName, nil
}

// Login checks the password, provisions the database if the user has none
// and issues a token pair. Bad credentials yield common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, common.ErrorUnauthorized
	}

	ok, err := s.auth.CheckLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	dbName, err := s.tenants.EnsureUserDatabase(ctx, username)
	if err != nil {
		return nil, err
	}

	tokens, err := s.auth.IssueTokens(ctx, username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Username: username, DBName: dbName, Tokens: tokens}, nil
}

func (s *AccountService) CheckUsername(ctx context.Context, username string) (bool, error) {
	return s.auth.CheckUsername(ctx, username)
}

func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.auth.RefreshToken(ctx, refreshToken)
}

// Authorize checks that dbName is the caller's own database.
func (s *AccountService) Authorize(ctx context.Context, username, dbName string) error {
	ok, err := s.tenants.Owns(ctx, username, dbName)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorForbidden
	}
	return nil
}

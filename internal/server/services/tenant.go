package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/config"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/repomanager"
	"github.com/patrickmn/go-cache"
)

// TenantService provisions one database per user and answers which
// database belongs to whom. A mapping never changes once written, so found
// mappings are cached.
type TenantService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	prefix      string
	cache       *cache.Cache
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewTenantService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, mx *metrics.Metrics) *TenantService {
	prefix := cfg.TenantDBPrefix
	if prefix == "" {
		prefix = common.DefaultTenantPrefix
	}
	return &TenantService{
		db:          db,
		repomanager: m,
		prefix:      prefix,
		cache:       cache.New(cfg.TenantCacheTTL, 2*cfg.TenantCacheTTL),
		logger:      logger.With("module", "tenants"),
		metrics:     mx,
	}
}

// DatabaseName is the name of the database provisioned for mapping row id.
func DatabaseName(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

// CreateUserDatabase reserves a mapping row, names the database after the
// row's auto-increment id and creates it. If the database cannot be created
// the reservation is removed again. A user that already has a mapping
// yields common.ErrorAlreadyExists.
func (s *TenantService) CreateUserDatabase(ctx context.Context, username string) (string, error) {
	var (
		id   int64
		name string
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tenants(tx)

		var err error
		id, err = repo.Reserve(ctx, username)
		if err != nil {
			return err
		}
		name = DatabaseName(s.prefix, id)
		return repo.SetDatabaseName(ctx, id, name)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error reserving tenant database: %w", err)
	}

	repo := s.repomanager.Tenants(s.db)
	if err := repo.CreateDatabase(ctx, name); err != nil {
		if delErr := repo.Delete(ctx, id); delErr != nil {
			s.logger.Error(ctx, "tenant reservation left behind", "username", username, "db", name, "error", delErr)
		}
		return "", fmt.Errorf("error creating database %s: %w", name, err)
	}

	s.cache.Set(username, name, cache.DefaultExpiration)
	s.metrics.TenantProvisioned()
	s.logger.Info(ctx, "tenant database created", "username", username, "db", name)

	return name, nil
}

// GetUserDatabase returns the user's database name or common.ErrorNotFound.
func (s *TenantService) GetUserDatabase(ctx context.Context, username string) (string, error) {
	if v, ok := s.cache.Get(username); ok {
		return v.(string), nil
	}

	t, err := s.repomanager.Tenants(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error reading tenant database: %w", err)
	}

	s.cache.Set(username, t.DBName, cache.DefaultExpiration)
	return t.DBName, nil
}

// EnsureUserDatabase returns the user's database, provisioning it when the
// user has none. An existing mapping gets its database recreated if it went
// missing.
func (s *TenantService) EnsureUserDatabase(ctx context.Context, username string) (string, error) {
	name, err := s.GetUserDatabase(ctx, username)
	switch {
	case err == nil:
		if err := s.repomanager.Tenants(s.db).CreateDatabase(ctx, name); err != nil {
			return "", fmt.Errorf("error creating database %s: %w", name, err)
		}
		return name, nil
	case !errors.Is(err, common.ErrorNotFound):
		return "", err
	}

	name, err = s.CreateUserDatabase(ctx, username)
	if errors.Is(err, common.ErrorAlreadyExists) {
		// lost a race against a concurrent login
		return s.GetUserDatabase(ctx, username)
	}
	return name, err
}

// Owns reports whether dbName is the database provisioned for username.
func (s *TenantService) Owns(ctx context.Context, username, dbName string) (bool, error) {
	name, err := s.GetUserDatabase(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return name == dbName, nil
}

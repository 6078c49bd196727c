package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/config"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/models"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/credentials"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/refreshtokens"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/tenants"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- in-memory repositories ---

type memStore struct {
	mu sync.Mutex

	creds   map[string]*models.Credential
	credSeq int64

	tenants   map[int64]*models.TenantDatabase
	tenantSeq int64
	databases map[string]bool
	createErr error
	deleted   []int64

	tokens map[string]*models.RefreshToken
}

func newMemStore() *memStore {
	return &memStore{
		creds:     map[string]*models.Credential{},
		tenants:   map[int64]*models.TenantDatabase{},
		databases: map[string]bool{},
		tokens:    map[string]*models.RefreshToken{},
	}
}

type memCredentials struct{ s *memStore }

func (r memCredentials) Create(_ context.Context, c *models.Credential) (*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.creds[c.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	r.s.credSeq++
	out := *c
	out.ID = r.s.credSeq
	out.CreatedAt = time.Now()
	r.s.creds[c.Username] = &out
	return &out, nil
}

func (r memCredentials) GetByUsername(_ context.Context, username string) (*models.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.creds[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

type memTenants struct{ s *memStore }

func (r memTenants) Reserve(_ context.Context, username string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if t.Username == username {
			return 0, common.ErrorAlreadyExists
		}
	}
	r.s.tenantSeq++
	r.s.tenants[r.s.tenantSeq] = &models.TenantDatabase{ID: r.s.tenantSeq, Username: username}
	return r.s.tenantSeq, nil
}

func (r memTenants) SetDatabaseName(_ context.Context, id int64, dbName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return common.ErrorNotFound
	}
	t.DBName = dbName
	return nil
}

func (r memTenants) GetByUsername(_ context.Context, username string) (*models.TenantDatabase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if t.Username == username && t.DBName != "" {
			out := *t
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memTenants) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tenants, id)
	r.s.deleted = append(r.s.deleted, id)
	return nil
}

func (r memTenants) CreateDatabase(_ context.Context, dbName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	r.s.databases[dbName] = true
	return nil
}

type memRefreshTokens struct{ s *memStore }

func (r memRefreshTokens) Create(_ context.Context, username, token string, validity time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[token] = &models.RefreshToken{Username: username, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r memRefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r memRefreshTokens) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, token)
	return nil
}

type memRepoManager struct{ s *memStore }

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Credentials(dbx.DBTX) credentials.Repository   { return memCredentials{m.s} }
func (m *memRepoManager) Tenants(dbx.DBTX) tenants.Repository           { return memTenants{m.s} }
func (m *memRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return memRefreshTokens{m.s}
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		TenantDBPrefix:               "user_db_",
		TenantCacheTTL:               time.Minute,
	}
}

type accountFixture struct {
	store    *memStore
	auth     *AuthService
	tenants  *TenantService
	accounts *AccountService
	mock     sqlmock.Sqlmock
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	rm := &memRepoManager{s: store}
	cfg := testConfig()

	a := NewAuthService(db, rm, cfg)
	a.hashCost = bcrypt.MinCost
	ts := NewTenantService(db, rm, cfg, logging.Nop(), nil)

	return &accountFixture{
		store:    store,
		auth:     a,
		tenants:  ts,
		accounts: NewAccountService(a, ts, logging.Nop()),
		mock:     mock,
	}
}

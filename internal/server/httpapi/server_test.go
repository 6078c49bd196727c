package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/auth"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/services"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "k"

// ---- fakes ----

type fakeAccounts struct {
	registerErr error
	loginErr    error
	refreshErr  error
	owned       map[string]string
}

func (f *fakeAccounts) Register(context.Context, string, string) (string, error) {
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return "user_db_1", nil
}

func (f *fakeAccounts) Login(_ context.Context, username, _ string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.LoginResult{
		Username: username,
		DBName:   "user_db_1",
		Tokens:   &services.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}, nil
}

func (f *fakeAccounts) CheckUsername(context.Context, string) (bool, error) { return false, nil }

func (f *fakeAccounts) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (f *fakeAccounts) Authorize(_ context.Context, username, dbName string) error {
	if f.owned[username] != dbName {
		return common.ErrorForbidden
	}
	return nil
}

type fakeRaw struct {
	res    *sqlexec.Result
	err    error
	called bool
}

func (f *fakeRaw) Execute(context.Context, string, string) (*sqlexec.Result, error) {
	f.called = true
	return f.res, f.err
}

type fakeBlock struct {
	got *services.BlockRequest
	res *sqlexec.Result
	err error
}

func (f *fakeBlock) Execute(_ context.Context, req *services.BlockRequest) (*sqlexec.Result, error) {
	f.got = req
	return f.res, f.err
}

type fakeSchema struct {
	schema services.Schema
	err    error
}

func (f *fakeSchema) Describe(context.Context, string) (services.Schema, error) {
	return f.schema, f.err
}

type fakeExport struct{ err error }

func (f *fakeExport) Export(context.Context, string, string) (*services.ExportResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.ExportResult{Key: "k", URL: "http://x/k", Rows: 2}, nil
}

// ---- helpers ----

type fixture struct {
	accounts *fakeAccounts
	raw      *fakeRaw
	block    *fakeBlock
	schema   *fakeSchema
	export   *fakeExport
	metrics  *metrics.Metrics
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts: &fakeAccounts{owned: map[string]string{"alice": "user_db_1"}},
		raw:      &fakeRaw{},
		block:    &fakeBlock{},
		schema:   &fakeSchema{},
		export:   &fakeExport{},
		metrics:  metrics.New("test"),
	}
	s := NewServer(":0", logging.Nop(), Backend{
		Accounts: f.accounts,
		Raw:      f.raw,
		Block:    f.block,
		Schema:   f.schema,
		Export:   f.export,
	}, f.metrics, secret, []string{"http://localhost:3000"})
	f.handler = s.Handler()
	return f
}

func token(t *testing.T, username string) string {
	t.Helper()
	tok, err := auth.GenerateToken(username, []byte(secret), time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path string, body any, tok string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error
}

// ---- tests ----

func TestRegister(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/register", api.Credentials{Username: "alice", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Registered successfully","dbName":"user_db_1"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/register", api.Credentials{Username: "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing username or password", errorOf(t, rec))

	f.accounts.registerErr = common.ErrorAlreadyExists
	rec = f.do(t, http.MethodPost, "/api/register", api.Credentials{Username: "alice", Password: "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already exists", errorOf(t, rec))

	f.accounts.registerErr = errors.New("db down")
	rec = f.do(t, http.MethodPost, "/api/register", api.Credentials{Username: "alice", Password: "pw"}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/login", api.Credentials{Username: "alice", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "user_db_1", resp.DBName)
	assert.Equal(t, "a", resp.AccessToken)

	f.accounts.loginErr = common.ErrorUnauthorized
	rec = f.do(t, http.MethodPost, "/api/login", api.Credentials{Username: "alice", Password: "no"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, rec))
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/token/refresh", api.RefreshTokenRequest{RefreshToken: "r"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accessToken":"a2","refreshToken":"r2"}`, rec.Body.String())

	f.accounts.refreshErr = common.ErrRefreshTokenExpired
	rec = f.do(t, http.MethodPost, "/api/token/refresh", api.RefreshTokenRequest{RefreshToken: "r"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRaw_RowSetKeepsColumnOrder(t *testing.T) {
	f := newFixture(t)
	f.raw.res = &sqlexec.Result{Set: &sqlexec.ResultSet{
		Columns: []string{"name", "id"},
		Rows:    [][]any{{"Ann", int64(1)}},
	}}

	rec := f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "SELECT name, id FROM t", DBName: "user_db_1"}, token(t, "alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"name":"Ann","id":1}]`+"\n", rec.Body.String())
}

func TestRaw_Message(t *testing.T) {
	f := newFixture(t)
	f.raw.res = &sqlexec.Result{Message: "Query OK, 1 row(s) affected.", RowsAffected: 1}

	rec := f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "DELETE FROM t", DBName: "user_db_1"}, token(t, "alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Query OK, 1 row(s) affected.","rowsAffected":1}`, rec.Body.String())
}

func TestRaw_Errors(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "SELECT 1"}, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "dbName is required", errorOf(t, rec))

	rec = f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "SELECT 1", DBName: "user_db_1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "SELECT 1", DBName: "user_db_1"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "SELECT 1", DBName: "user_db_2"}, tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, f.raw.called)

	f.raw.err = errors.New("You have an error in your SQL syntax")
	rec = f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "SELEC 1", DBName: "user_db_1"}, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "SQL Error: You have an error in your SQL syntax", errorOf(t, rec))
}

func TestRaw_UseOnlyOwnedDatabase(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "USE scratch", DBName: "user_db_1"}, tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access to database scratch denied", errorOf(t, rec))
	assert.False(t, f.raw.called)

	f.raw.res = &sqlexec.Result{Message: "Database changed.", Database: "user_db_1"}
	rec = f.do(t, http.MethodPost, "/api/sql/raw", api.RawRequest{SQL: "USE user_db_1", DBName: "user_db_1"}, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Database changed.","rowsAffected":0,"database":"user_db_1"}`, rec.Body.String())
}

func TestBlock(t *testing.T) {
	f := newFixture(t)
	f.block.res = &sqlexec.Result{Message: "Inserted 1 row(s).", RowsAffected: 1}

	body := map[string]any{
		"dbName": "user_db_1",
		"type":   "insert",
		"table":  "people",
		"values": []map[string]any{{"col": "name", "val": "Ann"}, {"col": "age", "val": 30}},
	}
	rec := f.do(t, http.MethodPost, "/api/sql/block", body, token(t, "alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Inserted 1 row(s).","rowsAffected":1}`, rec.Body.String())

	require.NotNil(t, f.block.got)
	assert.Equal(t, api.BlockInsert, f.block.got.Type)
	assert.Equal(t, "30", f.block.got.Values[1].Val.Text)

	f.block.err = common.ErrorInvalidArgument
	rec = f.do(t, http.MethodPost, "/api/sql/block", body, token(t, "alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Block execution error: invalid argument", errorOf(t, rec))
}

func TestSchema(t *testing.T) {
	f := newFixture(t)
	f.schema.schema = services.Schema{"people": {Columns: []api.SchemaColumn{{Name: "id", Type: "int", IsPrimary: true}}}}

	rec := f.do(t, http.MethodGet, "/api/schema?dbName=user_db_1", nil, token(t, "alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"people":{"columns":[{"name":"id","type":"int","isPrimary":true}]}}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/schema", nil, token(t, "alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.schema.err = errors.New("boom")
	rec = f.do(t, http.MethodGet, "/api/schema?dbName=user_db_1", nil, token(t, "alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Failed to fetch schema: boom", errorOf(t, rec))
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/sql/export", api.ExportRequest{DBName: "user_db_1", Table: "t"}, token(t, "alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"k","url":"http://x/k","rows":2}`, rec.Body.String())

	f.export.err = common.ErrorExportUnavailable
	rec = f.do(t, http.MethodPost, "/api/sql/export", api.ExportRequest{DBName: "user_db_1", Table: "t"}, token(t, "alice"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = f.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/sql/raw", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_Shutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0", logging.Nop(), Backend{}, nil, secret, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

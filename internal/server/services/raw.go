package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
)

// StatementKind is the dispatch class of a raw statement.
type StatementKind string

const (
	KindUse       StatementKind = "use"
	KindDatabase  StatementKind = "database"
	KindShow      StatementKind = "show"
	KindDescribe  StatementKind = "describe"
	KindSelect    StatementKind = "select"
	KindStatement StatementKind = "statement"
)

// ClassifyStatement looks only at the leading keywords of the trimmed,
// upper-cased statement.
func ClassifyStatement(statement string) StatementKind {
	s := strings.ToUpper(strings.TrimSpace(statement))

	switch {
	case strings.HasPrefix(s, "USE "):
		return KindUse
	case strings.HasPrefix(s, "CREATE DATABASE"), strings.HasPrefix(s, "DROP DATABASE"):
		return KindDatabase
	case strings.HasPrefix(s, "SHOW "):
		return KindShow
	case strings.HasPrefix(s, "DESCRIBE "), strings.HasPrefix(s, "DESC "):
		return KindDescribe
	case strings.HasPrefix(s, "SELECT"):
		return KindSelect
	default:
		return KindStatement
	}
}

// needsDatabase reports whether the tenant database has to be selected
// before running a statement of kind.
func needsDatabase(kind StatementKind, statement, dbName string) bool {
	if dbName == "" {
		return false
	}
	switch kind {
	case KindUse, KindDatabase:
		return false
	case KindShow:
		return strings.Contains(strings.ToUpper(statement), "TABLES")
	default:
		return true
	}
}

// returnsRows reports whether statements of kind produce a row set.
func (k StatementKind) returnsRows() bool {
	return k == KindShow || k == KindDescribe || k == KindSelect
}

// UseTarget returns the database a USE statement selects. ok is false for
// any other statement.
func UseTarget(statement string) (name string, ok bool) {
	if ClassifyStatement(statement) != KindUse {
		return "", false
	}
	s := strings.TrimSpace(statement)
	s = strings.TrimSpace(s[len("USE"):])
	s = strings.TrimSpace(strings.TrimRight(s, "; \t\r\n"))
	return sqlid.Unquote(s), true
}

// RawSQLService runs caller-supplied statements verbatim against the
// tenant database. Nothing beyond the leading keyword is inspected.
type RawSQLService struct {
	sessions Sessions
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewRawSQLService(sessions Sessions, logger logging.Logger, mx *metrics.Metrics) *RawSQLService {
	return &RawSQLService{sessions: sessions, logger: logger.With("module", "raw"), metrics: mx}
}

// Execute runs statement. dbName, when given, is selected first for the
// kinds that need it. A USE statement only affects this call; the selected
// name is reported in Result.Database so the caller can pass it next time.
// The session is always discarded afterwards since the statement may have
// left transactions, locks or variables on the connection.
func (s *RawSQLService) Execute(ctx context.Context, statement, dbName string) (res *sqlexec.Result, err error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, fmt.Errorf("%w: statement is empty", common.ErrorValidation)
	}
	if dbName != "" {
		if err := sqlid.Validate(dbName); err != nil {
			return nil, err
		}
	}

	kind := ClassifyStatement(statement)
	defer func() { s.metrics.ObserveStatement("raw", string(kind), err) }()

	sess, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	sess.Discard()
	defer closeSession(ctx, sess, s.logger)

	if needsDatabase(kind, statement, dbName) {
		if err := sess.Use(ctx, dbName); err != nil {
			return nil, err
		}
	}

	s.logger.Debug(ctx, "raw statement", "kind", kind, "db", dbName)

	switch {
	case kind == KindUse:
		sess.MarkSwitched()
		if _, err := sess.Exec(ctx, statement); err != nil {
			return nil, err
		}
		target, _ := UseTarget(statement)
		return &sqlexec.Result{Message: "Database changed.", Database: target}, nil

	case kind == KindDatabase:
		n, err := sess.Exec(ctx, statement)
		if err != nil {
			return nil, err
		}
		return &sqlexec.Result{Message: "Command executed successfully.", RowsAffected: n}, nil

	case kind.returnsRows():
		rs, err := sess.Query(ctx, statement)
		if err != nil {
			return nil, err
		}
		return &sqlexec.Result{Set: rs}, nil

	default:
		n, err := sess.Exec(ctx, statement)
		if err != nil {
			return nil, err
		}
		return &sqlexec.Result{Message: fmt.Sprintf("Query OK, %d row(s) affected.", n), RowsAffected: n}, nil
	}
}

// Package sqlexec runs tenant statements on pinned pool connections.
//
// Every operation takes its own Session. A Session owns one *sql.Conn for
// its lifetime, selects the tenant database on it when asked and puts the
// pool's home database back before the connection is returned. A connection
// whose selection cannot be restored is discarded, and so is any connection
// a caller marked with Discard because it ran arbitrary statements.
package sqlexec

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
)

const restoreTimeout = 5 * time.Second

type Engine struct {
	db     *sql.DB
	homeDB string
	logger logging.Logger
}

// NewEngine returns an engine over db whose idle connections have homeDB
// selected.
func NewEngine(db *sql.DB, homeDB string, logger logging.Logger) *Engine {
	return &Engine{db: db, homeDB: homeDB, logger: logger.With("module", "sqlexec")}
}

// Session pins a connection. The caller must Close it.
func (e *Engine) Session(ctx context.Context) (*Session, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, homeDB: e.homeDB, logger: e.logger}, nil
}

type Session struct {
	conn     *sql.Conn
	homeDB   string
	switched bool
	discard  bool
	logger   logging.Logger
}

// Use selects dbName for the rest of the session.
func (s *Session) Use(ctx context.Context, dbName string) error {
	name, err := sqlid.QuoteValid(dbName)
	if err != nil {
		return err
	}
	s.switched = true
	if _, err := s.conn.ExecContext(ctx, "USE "+name); err != nil {
		return err
	}
	return nil
}

// MarkSwitched records that a statement outside Use changed the selected
// database, so Close must restore it.
func (s *Session) MarkSwitched() {
	s.switched = true
}

// Discard makes Close drop the connection instead of returning it to the
// pool. Sessions that ran caller supplied SQL may hold transactions, locks,
// variables or temporary tables that must not reach the next user.
func (s *Session) Discard() {
	s.discard = true
}

func (s *Session) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec runs a statement and returns the number of affected rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// not every statement reports a count
		return 0, nil
	}
	return n, nil
}

// Close restores the home database if needed and releases the connection.
// A discarded session closes the underlying driver connection instead.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil

	if s.discard {
		return dropConn(conn)
	}

	if !s.switched {
		return conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if _, err := conn.ExecContext(ctx, "USE "+sqlid.Quote(s.homeDB)); err != nil {
		s.logger.Warn(ctx, "discarding connection, home database not restored", "home", s.homeDB, "error", err)
		_ = dropConn(conn)
		return fmt.Errorf("restore home database: %w", err)
	}

	return conn.Close()
}

// dropConn closes the driver connection behind conn so the pool never hands
// it out again.
func dropConn(conn *sql.Conn) error {
	err := conn.Raw(func(any) error { return driver.ErrBadConn })
	if errors.Is(err, driver.ErrBadConn) {
		// the pool already closed it
		return nil
	}
	return conn.Close()
}

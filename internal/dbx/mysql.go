package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
	"github.com/go-sql-driver/mysql"
)

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

var sqlOpen = sql.Open

// MySQLTarget is a parsed DSN split into the pool DSN (with the control
// database selected) and a bootstrap DSN without any database.
type MySQLTarget struct {
	DSN          string
	BootstrapDSN string
	Database     string
}

// ParseMySQLDSN validates dsn and prepares it for the pool. The DSN must name
// the control database, which becomes the pool's home database.
func ParseMySQLDSN(dsn string) (*MySQLTarget, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, errors.New("mysql dsn must name the control database")
	}
	if err := sqlid.Validate(cfg.DBName); err != nil {
		return nil, fmt.Errorf("control database: %w", err)
	}

	cfg.ParseTime = true
	cfg.MultiStatements = false

	boot := cfg.Clone()
	boot.DBName = ""

	return &MySQLTarget{
		DSN:          cfg.FormatDSN(),
		BootstrapDSN: boot.FormatDSN(),
		Database:     cfg.DBName,
	}, nil
}

// OpenMySQL creates the control database when it is missing and returns a
// pool whose connections start in it.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, *MySQLTarget, error) {
	target, err := ParseMySQLDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	boot, err := sqlOpen("mysql", target.BootstrapDSN)
	if err != nil {
		return nil, nil, err
	}
	_, err = boot.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+sqlid.Quote(target.Database))
	_ = boot.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("create control database: %w", err)
	}

	db, err := sqlOpen("mysql", target.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxOpenConns(32)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, target, nil
}

// IsDuplicateEntry reports whether err is a MySQL unique-key violation.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

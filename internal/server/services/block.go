package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
)

type (
	BlockType    = api.BlockType
	BlockRequest = api.BlockRequest
	ColumnDef    = api.ColumnDef
	ColumnValue  = api.ColumnValue
	Literal      = api.Literal
)

const (
	BlockCreateTable = api.BlockCreateTable
	BlockInsert      = api.BlockInsert
	BlockSelect      = api.BlockSelect
	BlockUpdate      = api.BlockUpdate
	BlockDelete      = api.BlockDelete
)

// BlockStatement is the SQL generated for a BlockRequest. Identifiers are
// quoted in Query; every value travels in Args.
type BlockStatement struct {
	Query       string
	Args        []any
	ReturnsRows bool

	message func(n int64) string
}

// Message renders the confirmation for n affected rows.
func (st *BlockStatement) Message(n int64) string {
	if st.message == nil {
		return ""
	}
	return st.message(n)
}

var errEmptyBlockRequest = fmt.Errorf("%w: block request is empty", common.ErrorInvalidArgument)

// BuildBlockStatement validates req and translates it to SQL. It never
// touches the database.
func BuildBlockStatement(req *BlockRequest) (*BlockStatement, error) {
	if req == nil {
		return nil, errEmptyBlockRequest
	}
	switch req.Type {
	case BlockCreateTable, BlockInsert, BlockSelect, BlockUpdate, BlockDelete:
	default:
		return nil, fmt.Errorf("%w: unknown block type %q", common.ErrorInvalidArgument, req.Type)
	}

	table, err := sqlid.QuoteValid(req.Table)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	switch req.Type {
	case BlockCreateTable:
		return buildCreateTable(req, table)
	case BlockInsert:
		return buildInsert(req, table)
	case BlockSelect:
		return buildSelect(req, table)
	case BlockUpdate:
		return buildUpdate(req, table)
	default:
		return buildDelete(req, table)
	}
}

func buildCreateTable(req *BlockRequest, table string) (*BlockStatement, error) {
	if len(req.Columns) == 0 {
		return nil, fmt.Errorf("%w: at least one column is required", common.ErrorValidation)
	}

	defs := make([]string, 0, len(req.Columns)+1)
	defs = append(defs, "id INT AUTO_INCREMENT PRIMARY KEY")
	for _, c := range req.Columns {
		name, err := sqlid.QuoteValid(c.Name)
		if err != nil {
			return nil, fmt.Errorf("column: %w", err)
		}
		if err := sqlid.ValidateType(c.Type); err != nil {
			return nil, err
		}
		defs = append(defs, name+" "+strings.TrimSpace(c.Type))
	}

	tableName := req.Table
	return &BlockStatement{
		Query:   fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", ")),
		message: func(int64) string { return fmt.Sprintf("Table '%s' created.", tableName) },
	}, nil
}

func buildInsert(req *BlockRequest, table string) (*BlockStatement, error) {
	if len(req.Values) == 0 {
		return nil, fmt.Errorf("%w: at least one value is required", common.ErrorValidation)
	}

	names := make([]string, len(req.Values))
	args := make([]any, len(req.Values))
	for i, v := range req.Values {
		names[i] = v.Col
		args[i] = v.Val.Arg()
	}
	cols, err := sqlid.JoinQuoted(names)
	if err != nil {
		return nil, fmt.Errorf("column: %w", err)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	return &BlockStatement{
		Query:   fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, marks),
		Args:    args,
		message: func(n int64) string { return fmt.Sprintf("Inserted %d row(s).", n) },
	}, nil
}

func buildSelect(req *BlockRequest, table string) (*BlockStatement, error) {
	if strings.TrimSpace(req.FilterCol) == "" {
		return &BlockStatement{Query: "SELECT * FROM " + table, ReturnsRows: true}, nil
	}

	col, err := sqlid.QuoteValid(req.FilterCol)
	if err != nil {
		return nil, fmt.Errorf("filter column: %w", err)
	}
	return &BlockStatement{
		Query:       fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, col),
		Args:        []any{req.FilterVal.Arg()},
		ReturnsRows: true,
	}, nil
}

func buildUpdate(req *BlockRequest, table string) (*BlockStatement, error) {
	col, err := sqlid.QuoteValid(req.Col)
	if err != nil {
		return nil, fmt.Errorf("column: %w", err)
	}
	filter, err := sqlid.QuoteValid(req.FilterCol)
	if err != nil {
		return nil, fmt.Errorf("filter column: %w", err)
	}
	return &BlockStatement{
		Query:   fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", table, col, filter),
		Args:    []any{req.Val.Arg(), req.FilterVal.Arg()},
		message: func(n int64) string { return fmt.Sprintf("Updated %d row(s).", n) },
	}, nil
}

func buildDelete(req *BlockRequest, table string) (*BlockStatement, error) {
	filter, err := sqlid.QuoteValid(req.FilterCol)
	if err != nil {
		return nil, fmt.Errorf("filter column: %w", err)
	}
	return &BlockStatement{
		Query:   fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, filter),
		Args:    []any{req.FilterVal.Arg()},
		message: func(n int64) string { return fmt.Sprintf("Deleted %d row(s).", n) },
	}, nil
}

// BlockSQLService executes structured CRUD requests against the tenant
// database named in the request.
type BlockSQLService struct {
	sessions Sessions
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewBlockSQLService(sessions Sessions, logger logging.Logger, mx *metrics.Metrics) *BlockSQLService {
	return &BlockSQLService{sessions: sessions, logger: logger.With("module", "block"), metrics: mx}
}

// Execute validates and builds the statement before any connection is
// taken, so a malformed request never reaches the database.
func (s *BlockSQLService) Execute(ctx context.Context, req *BlockRequest) (res *sqlexec.Result, err error) {
	if req == nil {
		return nil, errEmptyBlockRequest
	}
	defer func() { s.metrics.ObserveStatement("block", string(req.Type), err) }()

	if req.DBName == "" {
		return nil, fmt.Errorf("%w: dbName is required", common.ErrorValidation)
	}
	if err := sqlid.Validate(req.DBName); err != nil {
		return nil, err
	}

	st, err := BuildBlockStatement(req)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(ctx, sess, s.logger)

	if err := sess.Use(ctx, req.DBName); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "block statement", "type", req.Type, "db", req.DBName, "table", req.Table)

	if st.ReturnsRows {
		rs, err := sess.Query(ctx, st.Query, st.Args...)
		if err != nil {
			return nil, err
		}
		return &sqlexec.Result{Set: rs}, nil
	}

	n, err := sess.Exec(ctx, st.Query, st.Args...)
	if err != nil {
		return nil, err
	}
	return &sqlexec.Result{Message: st.Message(n), RowsAffected: n}, nil
}

package sqlexec

import (
	"bytes"
	"database/sql"
	"encoding/json"
)

// ResultSet is a tabular query result. Rows hold driver values with []byte
// already converted to string.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// MarshalJSON encodes the set as an array of objects whose keys keep the
// column order. When a name repeats, the key stays at its first position
// and carries the last value.
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("[]"), nil
	}

	order := make([]string, 0, len(rs.Columns))
	last := make(map[string]int, len(rs.Columns))
	for i, c := range rs.Columns {
		if _, seen := last[c]; !seen {
			order = append(order, c)
		}
		last[c] = i
	}

	keys := make([][]byte, len(order))
	for i, c := range order {
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for r, row := range rs.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, c := range order {
			if i > 0 {
				buf.WriteByte(',')
			}
			v, err := json.Marshal(row[last[c]])
			if err != nil {
				return nil, err
			}
			buf.Write(keys[i])
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// Result is the outcome of one raw or block operation: either a row set or a
// message with the affected row count.
type Result struct {
	Message      string
	RowsAffected int64
	// Database is set when the operation selected a database (raw USE).
	Database string
	Set      *ResultSet
}

func (r *Result) HasRows() bool {
	return r != nil && r.Set != nil
}

func scanRows(rows *sql.Rows) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

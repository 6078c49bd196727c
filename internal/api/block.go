package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type BlockType string

const (
	BlockCreateTable BlockType = "create_table"
	BlockInsert      BlockType = "insert"
	BlockSelect      BlockType = "select"
	BlockUpdate      BlockType = "update"
	BlockDelete      BlockType = "delete"
)

// Literal is a value typed into a block form. JSON strings, numbers and
// booleans all arrive as text. JSON null and a value left out of the
// request both bind SQL NULL.
type Literal struct {
	Text string
	Null bool
	// Set is true once a non-null value was given.
	Set bool
}

// Text returns a non-null literal.
func Text(s string) Literal {
	return Literal{Text: s, Set: true}
}

// Arg is the value bound for the literal.
func (l Literal) Arg() any {
	if l.Null || !l.Set {
		return nil
	}
	return l.Text
}

func (l Literal) MarshalJSON() ([]byte, error) {
	if l.Null || !l.Set {
		return []byte("null"), nil
	}
	return json.Marshal(l.Text)
}

func (l *Literal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = Literal{Null: true}
	case bytes.Equal(b, []byte("true")):
		*l = Text("1")
	case bytes.Equal(b, []byte("false")):
		*l = Text("0")
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("value must be a string, number, boolean or null")
		}
		*l = Text(n.String())
	}
	return nil
}

type ColumnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ColumnValue struct {
	Col string  `json:"col"`
	Val Literal `json:"val"`
}

// BlockRequest describes one structured CRUD action.
type BlockRequest struct {
	DBName    string        `json:"dbName"`
	Type      BlockType     `json:"type"`
	Table     string        `json:"table"`
	Columns   []ColumnDef   `json:"columns,omitempty"`
	Values    []ColumnValue `json:"values,omitempty"`
	Col       string        `json:"col,omitempty"`
	Val       Literal       `json:"val"`
	FilterCol string        `json:"filterCol,omitempty"`
	FilterVal Literal       `json:"filterVal"`
}

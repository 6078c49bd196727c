package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Literal
	}{
		{`"Ann"`, Text("Ann")},
		{`""`, Text("")},
		{`30`, Text("30")},
		{`1.5e3`, Text("1.5e3")},
		{`true`, Text("1")},
		{`false`, Text("0")},
		{`null`, Literal{Null: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var l Literal
			require.NoError(t, json.Unmarshal([]byte(tt.in), &l))
			assert.Equal(t, tt.want, l)
		})
	}

	var l Literal
	require.Error(t, json.Unmarshal([]byte(`{"a":1}`), &l))
}

func TestLiteral_MarshalJSON(t *testing.T) {
	b, err := json.Marshal([]Literal{Text("30"), Text(""), {Null: true}, {}})
	require.NoError(t, err)
	assert.JSONEq(t, `["30", "", null, null]`, string(b))
}

func TestLiteral_Arg(t *testing.T) {
	assert.Equal(t, "x", Text("x").Arg())
	assert.Equal(t, "", Text("").Arg())
	assert.Nil(t, Literal{Null: true}.Arg())
	assert.Nil(t, Literal{}.Arg())
}

func TestBlockRequest_OmittedValuesAreNull(t *testing.T) {
	var req BlockRequest
	require.NoError(t, json.Unmarshal([]byte(`{"dbName":"user_db_1","type":"update","table":"people","col":"age","filterCol":"name"}`), &req))

	assert.False(t, req.Val.Set)
	assert.False(t, req.FilterVal.Set)
	assert.Nil(t, req.Val.Arg())
	assert.Nil(t, req.FilterVal.Arg())

	require.NoError(t, json.Unmarshal([]byte(`{"type":"delete","table":"people","filterCol":"name","filterVal":""}`), &req))
	assert.Equal(t, "", req.FilterVal.Arg())
}

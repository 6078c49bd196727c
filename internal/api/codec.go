// Package api holds the wire types shared by the playground server and its
// clients, and the gRPC plumbing that carries them: a JSON codec and a
// hand-written service descriptor.
package api

import (
	"bytes"
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the playground service speaks.
const CodecName = "json"

// Codec encodes messages as JSON. Numbers decode as json.Number so large
// integers in result rows keep their precision.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	return d.Decode(v)
}

func init() {
	encoding.RegisterCodec(Codec{})
}

package pb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName deliberately does not collide with "proto", grpc-go's
// built-in codec name, so the server can be pointed at either transport
// depending on which codec a given grpc.ServerOption registers.
const jsonCodecName = "nerrf-json"

// jsonCodec implements google.golang.org/grpc/encoding.Codec over the
// plain structs in this package. Hand-authored protoc-gen-go output
// would normally fill this role; see the package doc in event.go for
// why this module uses a JSON wire format instead.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CodecName is the content-subtype a client passes (e.g. with
// grpc.CallContentSubtype) to select this codec; the server picks a
// registered codec by the request's content-subtype, and cmd/probed sets
// no codec option of its own.
const CodecName = jsonCodecName

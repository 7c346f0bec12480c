package relay

import (
	"github.com/goccy/go-json"
)

// Codec encodes request bodies and decodes response bodies
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// JSONCodec is the default Codec
type JSONCodec struct{}

// Marshal encodes v as JSON
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the media type of encoded bodies
func (JSONCodec) ContentType() string {
	return "application/json"
}

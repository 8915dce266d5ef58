package schema

import (
	"bytes"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"spc/internal/models"
)

var errTrailingData = errors.New("schema: decode json: trailing data")

// Codec moves SpcQueryResponse documents of one schema version between JSON
// bytes and typed values.
type Codec interface {
	Decode(data []byte) (*models.SpcQueryResponse, error)
	Encode(v *models.SpcQueryResponse) ([]byte, error)
	Version() models.SchemaVersion
}

type jsonCodec struct {
	version models.SchemaVersion
}

func NewCodec(version models.SchemaVersion) (Codec, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("schema: unsupported version %s", version)
	}
	return &jsonCodec{version: version}, nil
}

func (c *jsonCodec) Decode(data []byte) (*models.SpcQueryResponse, error) {
	return Decode(data, c.version)
}

func (c *jsonCodec) Encode(v *models.SpcQueryResponse) ([]byte, error) {
	if v != nil && v.Version != c.version {
		return nil, fmt.Errorf("schema: codec for version %s cannot encode a version %s response", c.version, v.Version)
	}
	return Encode(v)
}

func (c *jsonCodec) Version() models.SchemaVersion {
	return c.version
}

// Decode parses JSON bytes holding exactly one value and validates it with
// ParseResponse. Numbers are decoded as literals so that 1.5 is never
// mistaken for an integer.
func Decode(data []byte, version models.SchemaVersion) (*models.SpcQueryResponse, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("schema: decode json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return ParseResponse(raw, version)
}

// Encode checks v and marshals its serialized form.
func Encode(v *models.SpcQueryResponse) ([]byte, error) {
	if err := Check(v); err != nil {
		return nil, err
	}
	return json.Marshal(SerializeResponse(v))
}

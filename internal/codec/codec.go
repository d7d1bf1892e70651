package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ergo/ergo/api/internal/domain"
	"github.com/ergo/ergo/api/internal/validator"
)

// Decoder turns a request body into a Counter
type Decoder interface {
	// Name identifies the codec in error messages, e.g. "YAML"
	Name() string
	Decode(body []byte) (*domain.Counter, error)
}

// Encoder turns a Counter into a response body
type Encoder interface {
	ContentType() string
	Encode(counter *domain.Counter) []byte
}

// YAMLDecoder decodes `count: N` documents
type YAMLDecoder struct{}

// NewYAMLDecoder creates a YAML decoder
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

// Name implements Decoder
func (d *YAMLDecoder) Name() string {
	return "YAML"
}

// yamlDocument is the raw request document
type yamlDocument struct {
	Count *yamlCount `yaml:"count"`
}

// yamlCount accepts integer scalars only. Decoding straight into an
// unsigned field would truncate floats such as 7.9 or -1.0.
type yamlCount struct {
	value uint64
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *yamlCount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" {
		return fmt.Errorf("line %d: count must be a non-negative integer, got %q", node.Line, node.Value)
	}
	return node.Decode(&c.value)
}

// Decode implements Decoder. Unknown fields are ignored; a missing,
// negative or non-integer count is an error.
func (d *YAMLDecoder) Decode(body []byte) (*domain.Counter, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	var input domain.CounterInput
	if doc.Count != nil {
		input.Count = &doc.Count.value
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	return input.Counter(), nil
}

// JSONEncoder encodes counters as `{"count":N}`
type JSONEncoder struct{}

// NewJSONEncoder creates a JSON encoder
func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{}
}

// ContentType implements Encoder
func (e *JSONEncoder) ContentType() string {
	return "application/json"
}

// Encode implements Encoder. A Counter always marshals, so failures are not
// reported to the caller.
func (e *JSONEncoder) Encode(counter *domain.Counter) []byte {
	if counter == nil {
		counter = &domain.Counter{}
	}
	b, err := json.Marshal(counter)
	if err != nil {
		return []byte(fmt.Sprintf(`{"count":%d}`, counter.Count))
	}
	return b
}

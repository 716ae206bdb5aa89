// Package emit re-emits decoded records as self-describing structured
// values for downstream tooling.
package emit

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/isabella232/pglockanalyze/internal/dump"
)

// JSON writes each record as one JSON object per line, in arrival order.
// It implements dump.Handler.
type JSON struct {
	enc *json.Encoder
}

// NewJSON returns a JSON emitter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// HandleRecord encodes one record.
func (e *JSON) HandleRecord(rec dump.Record) error {
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record as JSON: %w", err)
	}
	return nil
}

// YAML writes each record as its own YAML document. It implements
// dump.Handler; callers must Close it to flush the stream.
type YAML struct {
	enc *yaml.Encoder
}

// NewYAML returns a YAML emitter writing to w.
func NewYAML(w io.Writer) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{enc: enc}
}

// HandleRecord encodes one record.
func (e *YAML) HandleRecord(rec dump.Record) error {
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record as YAML: %w", err)
	}
	return nil
}

// Close flushes the YAML stream.
func (e *YAML) Close() error {
	return e.enc.Close()
}

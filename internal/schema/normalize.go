// internal/schema/normalize.go
//
// FormRelayer – Field Schema: legacy read-path normalizer.
//
// Context
//   Older exports and database rows stored the field list in two shapes that
//   predate the current canonical form: a doubly-encoded JSON string (the
//   array marshalled, then stored as a JSON string value), and an envelope
//   object {"fields": [...]} rather than a bare array.  Rather than scatter
//   fallback reads across the repositories, this file owns the one read-path
//   normalizer: try each known representation in priority order, and always
//   hand back the canonical []Field.  Writers only ever produce the canonical
//   bare-array form, so the legacy shapes age out naturally.
//
//------------------------------------------------------------------------------

package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// legacyEnvelope is the pre-1.0 storage shape.
type legacyEnvelope struct {
	Fields []Field `json:"fields"`
}

// DecodeFields parses a stored field list in any known representation:
//
//  1. canonical bare JSON array,
//  2. legacy {"fields": [...]} envelope,
//  3. legacy doubly-encoded JSON string containing either of the above.
//
// The result is normalized before return.  An empty or "null" payload yields
// an empty slice, not an error.
func DecodeFields(raw []byte) ([]Field, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []Field{}, nil
	}

	// Doubly-encoded string: unwrap once and recurse.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, fmt.Errorf("schema: unwrap legacy string payload: %w", err)
		}
		return DecodeFields([]byte(inner))
	}

	if strings.HasPrefix(trimmed, "{") {
		var env legacyEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return nil, fmt.Errorf("schema: parse legacy envelope: %w", err)
		}
		Normalize(env.Fields)
		return env.Fields, nil
	}

	var fields []Field
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, fmt.Errorf("schema: parse field array: %w", err)
	}
	Normalize(fields)
	return fields, nil
}

// EncodeFields marshals the canonical representation.  All write paths go
// through here so nothing ever persists a legacy shape again.
func EncodeFields(fields []Field) ([]byte, error) {
	if fields == nil {
		fields = []Field{}
	}
	return json.Marshal(fields)
}

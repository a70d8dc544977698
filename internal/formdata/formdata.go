// Package formdata reconstructs structured, schema-conformant values from
// flat text sources: URL query strings and multipart/urlencoded form
// fields. Each field's raw text is coerced according to the unwrapped leaf
// kind of its declared property schema.
package formdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/oasbridge/oasbridge/internal/schema"
)

var (
	// ErrNestedArray is returned when an array element is itself declared
	// as an array; repeated-key form encoding has no nesting syntax.
	ErrNestedArray = errors.New("nested arrays are not supported")

	// ErrExpectedArray is returned when a key already holds a non-array
	// value but its declared schema asks for array accumulation.
	ErrExpectedArray = errors.New("expected array for key")
)

// Field is one (key, value) text pair from a query string or form body.
type Field struct {
	Key   string
	Value string
}

// ParseQuery splits a raw query string into fields, preserving source
// order. Pairs that fail percent-decoding are dropped, matching net/url.
func ParseQuery(rawQuery string) []Field {
	var fields []Field
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields
}

// FromValues flattens url.Values (or multipart form values) into fields.
// Order within a key is preserved; keys are sorted for determinism since
// the map has no source order left to preserve.
func FromValues(values map[string][]string) []Field {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []Field
	for _, k := range keys {
		for _, v := range values[k] {
			fields = append(fields, Field{Key: k, Value: v})
		}
	}
	return fields
}

// Coerce builds a structured value map from fields, guided by the object
// schema's declared properties. Keys without a declared property are
// ignored. Repeated keys accumulate into one array value when the declared
// property is array-typed.
func Coerce(fields []Field, obj *schema.Schema) (map[string]any, error) {
	out := make(map[string]any)
	target := schema.Unwrap(obj)
	if !schema.Is(target, schema.KindObject) {
		return out, nil
	}

	for _, f := range fields {
		prop, ok := target.Property(f.Key)
		if !ok {
			continue
		}
		v, err := coerce(out, f.Key, f.Value, prop)
		if err != nil {
			return nil, err
		}
		out[f.Key] = v
	}
	return out, nil
}

// coerce converts one raw text value against its declared schema. The key
// is the accumulation context for array-typed properties; element
// coercion recurses with no key, so array-of-array fails.
func coerce(acc map[string]any, key, raw string, s *schema.Schema) (any, error) {
	value := parseLoose(raw)

	unwrapped := schema.Unwrap(s)
	switch schema.Discriminator(unwrapped) {
	case schema.KindNumber:
		return toNumber(value), nil

	case schema.KindBoolean:
		return value == true || raw == "true", nil

	case schema.KindArray:
		if key == "" {
			return nil, ErrNestedArray
		}
		var arr []any
		if existing, ok := acc[key]; ok {
			arr, ok = existing.([]any)
			if !ok {
				return nil, fmt.Errorf("%w %q", ErrExpectedArray, key)
			}
		}
		elem, err := coerce(nil, "", raw, unwrapped.Elem())
		if err != nil {
			return nil, err
		}
		return append(arr, elem), nil

	default:
		return value, nil
	}
}

// parseLoose opportunistically parses raw as JSON, falling back to the
// raw text. Parse failures are expected and never surfaced.
func parseLoose(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// toNumber casts a loosely parsed value to float64 where possible and
// otherwise returns it unchanged.
func toNumber(v any) any {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return v
}

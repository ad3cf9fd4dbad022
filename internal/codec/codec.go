// Package codec turns caller payloads into column/value records.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"sales_backend/internal/models"
)

// ErrInvalidPayload is returned for inputs that cannot be flattened.
var ErrInvalidPayload = errors.New("invalid payload")

// Mapper is implemented by typed payloads that know their column layout.
type Mapper interface {
	ToMap() map[string]any
}

// Normalize flattens input into a Record, dropping every nil value.
// Accepted shapes are Record, map[string]any and any Mapper.
func Normalize(input any) (models.Record, error) {
	var raw map[string]any
	switch v := input.(type) {
	case models.Record:
		raw = v
	case map[string]any:
		raw = v
	case Mapper:
		if isNilPointer(v) {
			return nil, fmt.Errorf("%w: nil %T", ErrInvalidPayload, input)
		}
		raw = v.ToMap()
	default:
		return nil, fmt.Errorf("%w: unsupported type %T, expected a record or a key/value mapping", ErrInvalidPayload, input)
	}

	out := make(models.Record, len(raw))
	for k, val := range raw {
		val = Scalar(val)
		if val == nil {
			continue
		}
		out[k] = val
	}
	return out, nil
}

// NormalizeAll normalizes a list, reporting the index of the first bad item.
func NormalizeAll(inputs []any) ([]models.Record, error) {
	out := make([]models.Record, 0, len(inputs))
	for i, in := range inputs {
		rec, err := Normalize(in)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Scalar unwraps pointers and json.Number so the driver receives plain values.
func Scalar(v any) any {
	if v == nil {
		return nil
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return Scalar(rv.Elem().Interface())
	}
	return v
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores any JSON-encodable value in a json/jsonb (or sqlite text) column.
type JSON[T any] struct {
	Val T
}

// NewJSON wraps v for persistence.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{Val: v}
}

func (j *JSON[T]) Scan(src any) error {
	var zero T
	switch v := src.(type) {
	case nil:
		j.Val = zero
		return nil
	case []byte:
		return j.decode(v)
	case string:
		return j.decode([]byte(v))
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
}

func (j *JSON[T]) decode(raw []byte) error {
	var out T
	if len(raw) == 0 || string(raw) == "null" {
		j.Val = out
		return nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("JSON: decode: %w", err)
	}
	j.Val = out
	return nil
}

func (j JSON[T]) Value() (driver.Value, error) {
	raw, err := json.Marshal(j.Val)
	if err != nil {
		return nil, fmt.Errorf("JSON: encode: %w", err)
	}
	return string(raw), nil
}

func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Val)
}

func (j *JSON[T]) UnmarshalJSON(raw []byte) error {
	return j.decode(raw)
}

package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state value: absent, explicit null, or a value.
// The zero value is absent. JSON decoding marks the field as set whenever
// the key appears in the document, so null can be told apart from omission.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns an Optional that is present but explicitly null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// FromPtr converts a nullable pointer into a present Optional
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

// IsNull reports whether the value is present and explicitly null
func (o Optional[T]) IsNull() bool {
	return o.Set && !o.Valid
}

// Ptr returns a pointer to the held value, or nil when absent or null
func (o Optional[T]) Ptr() *T {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null;
// use omitempty on a pointer field when absence must be preserved.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

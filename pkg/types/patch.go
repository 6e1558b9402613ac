package types

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Patch is a tri-state optional used in partial updates. A field that is
// absent from the payload leaves the stored value unchanged, an explicit
// JSON null clears it, and a concrete value replaces it.
type Patch[T any] struct {
	set   bool
	null  bool
	value T
}

// PatchValue builds a set patch carrying the provided replacement.
func PatchValue[T any](value T) Patch[T] {
	return Patch[T]{set: true, value: value}
}

// PatchNull builds a patch that clears the stored value.
func PatchNull[T any]() Patch[T] {
	return Patch[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the payload at all.
func (p Patch[T]) IsSet() bool {
	return p.set
}

// IsNull reports whether the field was an explicit null.
func (p Patch[T]) IsNull() bool {
	return p.set && p.null
}

// Value returns the replacement value and whether one was supplied.
func (p Patch[T]) Value() (T, bool) {
	if !p.set || p.null {
		var zero T
		return zero, false
	}
	return p.value, true
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		p.null = true
		return nil
	}
	return json.Unmarshal(data, &p.value)
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.set || p.null {
		return jsonNull, nil
	}
	return json.Marshal(p.value)
}

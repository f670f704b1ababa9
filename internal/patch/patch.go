// Package patch carries tri-state fields for JSON PATCH bodies: a field can
// be absent (leave the stored value untouched), explicitly null (clear the
// stored value), or set. encoding/json only calls UnmarshalJSON for keys that
// are present, which is what distinguishes absent from null.
package patch

import "encoding/json"

// Field wraps a PATCH value. Set is true when the key appeared in the
// request body; Value is nil for an explicit null.
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Get returns the zero value for an explicit null. Only meaningful when Set.
func (f Field[T]) Get() T {
	if f.Value == nil {
		var zero T
		return zero
	}
	return *f.Value
}

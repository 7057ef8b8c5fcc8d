package welcome

import (
	"bytes"
	"encoding/json"
)

// Optional is a value that is either absent or present.
// The zero value is absent. A JSON null decodes as absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value if present, otherwise fallback
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

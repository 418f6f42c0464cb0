package services

// Nullable is a PATCH field that may be absent, explicitly null or a value.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Present returns a Nullable holding v.
func Present[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// nonEmpty returns the value of s when it holds a non-empty string.
func nonEmpty(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

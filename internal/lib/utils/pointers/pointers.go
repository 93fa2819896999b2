package pointers

// Pointer casts T type to *T
func Pointer[T any](t T) *T {
	return &t
}

// Ptr is a short alias for Pointer.
func Ptr[T any](t T) *T {
	return &t
}

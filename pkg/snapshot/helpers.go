package snapshot

// Ptr returns a pointer to v. It is a convenience for building records in
// code and tests.
func Ptr[T any](v T) *T { return &v }

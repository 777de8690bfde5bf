// Package snapshot defines the decoded records of build server REST
// responses. Records are plain immutable data.
//
// Optional scalar fields are pointers and optional collections are slices or
// maps whose nil value means "absent". Absence carries no information: the
// reconciler leaves the corresponding local field or relationship untouched.
// A present but empty collection means the collection is empty upstream.
package snapshot

// List is the envelope the server wraps collection responses in.
type List[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

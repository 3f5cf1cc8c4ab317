package render

import "fmt"

// UnresolvedReferenceError reports a deferred reference placeholder
// with no value in the reference table. Placeholders must never reach
// the serialized output.
type UnresolvedReferenceError struct {
	ID string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("render: unresolved reference %q", e.ID)
}

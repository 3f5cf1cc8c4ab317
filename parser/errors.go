package parser

import "fmt"

// CorruptInputError reports a file that fails structural validation:
// a missing header, an unreadable cross-reference table, a truncated
// object, or an object graph with no page tree.
type CorruptInputError struct {
	Offset int64
	Msg    string
}

func (e *CorruptInputError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("corrupt input at offset %d: %s", e.Offset, e.Msg)
	}
	return "corrupt input: " + e.Msg
}

func corrupt(offset int64, format string, args ...any) error {
	return &CorruptInputError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

package model

import "fmt"

// FormatError reports text that is not a valid todo.txt record or date.
type FormatError struct {
	// Line is the 1-based line number when the error came from a file, 0 otherwise.
	Line  int
	Input string
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Input)
	}
	return fmt.Sprintf("%s: %q", e.Msg, e.Input)
}

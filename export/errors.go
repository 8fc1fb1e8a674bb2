package export

import (
	"errors"
	"fmt"
)

// ErrTooLarge is the cause of an ExportError when output would exceed the
// configured archive size.
var ErrTooLarge = errors.New("archive exceeds size limit")

// ExportError reports a failed export. Whatever was written before the
// failure must be discarded.
type ExportError struct {
	Op   string // "archive", "summary", "curve", "write"
	Name string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("export %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes through fn to a temp file next to path and
// renames it into place. On any error the temp file is removed and path
// is left untouched.
func WriteFileAtomic(path string, fn func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return &ExportError{Op: "write", Name: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return &ExportError{Op: "write", Name: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &ExportError{Op: "write", Name: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &ExportError{Op: "write", Name: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

package export

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/aerogeom/pkg/status"
)

// writeFileAtomic streams write into a temporary file next to path and
// renames it over path once everything has been flushed. On any failure the
// temporary file is removed and path is left as it was.
func writeFileAtomic(op, path string, write func(w io.Writer) error) error {
	return saveAtomic(op, path, func(tmp *os.File) error {
		bw := bufio.NewWriter(tmp)
		if err := write(bw); err != nil {
			var se *status.Error
			if errors.As(err, &se) {
				return err
			}
			return status.Wrap(status.InternalError, op, err)
		}
		if err := bw.Flush(); err != nil {
			return status.Wrap(status.InternalError, op, err)
		}
		return nil
	})
}

// saveAtomic hands fill an open temporary file and commits it to path.
// fill may also reopen the file by name.
func saveAtomic(op, path string, fill func(tmp *os.File) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return status.Wrap(status.InternalError, op, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return status.Wrap(status.InternalError, op, err)
	}
	if err := fill(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return status.Wrap(status.InternalError, op, err)
	}
	if err := tmp.Close(); err != nil {
		return status.Wrap(status.InternalError, op, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		committed = true
		return status.Wrap(status.InternalError, op, err)
	}
	committed = true
	return nil
}

// Package pidfile writes and removes the process pid file named by
// spec.md §6's service-pid-file configuration key.
package pidfile

import (
	"fmt"
	"os"

	"github.com/go-faster/errors"
)

// PidFile tracks an acquired pid file so it can be released on
// shutdown.
type PidFile struct {
	path string
}

// Acquire writes the current process's pid to path, failing if the
// file already exists (another instance is presumed to be running).
func Acquire(path string) (*PidFile, error) {
	if path == "" {
		return &PidFile{}, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to acquire pid file %q", path)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return nil, errors.Wrapf(err, "failed to write pid to %q", path)
	}
	return &PidFile{path: path}, nil
}

// Release removes the pid file. Safe to call on a no-op PidFile (no
// path configured).
func (p *PidFile) Release() error {
	if p.path == "" {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove pid file %q", p.path)
	}
	return nil
}

// Package outpath turns file names taken from untrusted container headers
// into paths inside an output directory.
package outpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

// ErrExists is returned instead of overwriting a file.
var ErrExists = fmt.Errorf("%w: file exists", codecerr.ErrFormat)

// Resolve joins name onto dir. Empty names, absolute names, names starting
// with a path separator and names with a ".." segment are rejected, as are
// names of files that already exist.
func Resolve(dir, name string) (string, error) {
	if err := Check(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if _, err := os.Lstat(path); err == nil {
		return "", fmt.Errorf("%w: cannot overwrite %s", ErrExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return path, nil
}

// Check validates name without touching the file system.
func Check(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty file name", codecerr.ErrUnsafePath)
	case filepath.IsAbs(name), strings.HasPrefix(name, "/"), strings.HasPrefix(name, string(filepath.Separator)):
		return fmt.Errorf("%w: refusing to write to %s due to directory traversal", codecerr.ErrUnsafePath, name)
	}
	for _, seg := range strings.FieldsFunc(name, isSeparator) {
		if seg == ".." {
			return fmt.Errorf("%w: refusing to write to %s due to directory traversal", codecerr.ErrUnsafePath, name)
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}

// Create resolves name inside dir and creates it with perm. The file is
// created exclusively, so a file appearing between the check and the open is
// not overwritten either.
func Create(dir, name string, perm os.FileMode) (*os.File, error) {
	path, err := Resolve(dir, name)
	if err != nil {
		return nil, err
	}
	if perm == 0 {
		perm = 0o666
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: cannot overwrite %s", ErrExists, path)
	}
	return f, err
}

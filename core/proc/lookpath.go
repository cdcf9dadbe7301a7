package proc

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(file string) error {
	d, err := os.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories of path,
// a PATH-style list. If file contains a slash, it is returned as-is so the
// spawn reports the OS error for it. Relative directories are resolved
// against dir.
func LookPath(file, path, dir string) (string, error) {
	if strings.Contains(file, "/") {
		return file, nil
	}
	for _, elem := range filepath.SplitList(path) {
		if elem == "" {
			// Unix shell semantics: path element "" means "."
			elem = "."
		}
		candidate := filepath.Join(elem, file)
		check := candidate
		if dir != "" && !filepath.IsAbs(candidate) {
			check = filepath.Join(dir, candidate)
		}
		if err := findExecutable(check); err == nil {
			return candidate, nil
		}
	}
	return "", &exec.Error{Name: file, Err: ErrNotFound}
}

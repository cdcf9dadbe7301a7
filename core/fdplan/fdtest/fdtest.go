// Package fdtest has helpers for tests that check descriptor bookkeeping.
package fdtest

import (
	"os"
	"runtime"
	"strconv"
	"testing"
)

const procFdDir = "/proc/self/fd"

// OpenCount returns the number of descriptors the test process has open. The
// test is skipped on systems without /proc/self/fd.
func OpenCount(t testing.TB) int {
	t.Helper()

	if runtime.GOOS != "linux" {
		t.Skip("descriptor counting needs /proc/self/fd")
	}

	entries, err := os.ReadDir(procFdDir)
	if err != nil {
		t.Skipf("can't list %s: %v", procFdDir, err)
	}
	// ReadDir holds one descriptor open for the directory itself.
	return len(entries) - 1
}

// IsOpen reports whether fd is open in the test process.
func IsOpen(fd uintptr) bool {
	_, err := os.Lstat(procFdDir + "/" + strconv.FormatUint(uint64(fd), 10))
	return err == nil
}

// Pipe creates an OS pipe and closes both ends when the test finishes.
func Pipe(t testing.TB) (r, w *os.File) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

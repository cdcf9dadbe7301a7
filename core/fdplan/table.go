package fdplan

import (
	"fmt"
	"io"
	"os"
	"sort"
	"syscall"
)

// Stdio holds the streams a pipeline inherits from whoever invoked it.
type Stdio struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// OSStdio returns the controlling process's own standard streams.
func OSStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

type slot struct {
	file *os.File
	// owned files were opened or duplicated by the plan and are closed with
	// the table. Borrowed files belong to the invoking context.
	owned bool
}

// Table is the fd table of one stage.
type Table struct {
	slots  map[int]*slot
	closed bool
}

func newTable(base Stdio) *Table {
	t := &Table{slots: make(map[int]*slot)}
	for fd, f := range []*os.File{base.Stdin, base.Stdout, base.Stderr} {
		if f != nil {
			t.slots[fd] = &slot{file: f}
		}
	}
	return t
}

// File returns the file installed at fd, or nil if the plan closed it or never
// set it.
func (t *Table) File(fd int) *os.File {
	if s, ok := t.slots[fd]; ok {
		return s.file
	}
	return nil
}

// Reader returns a reader for fd. Reads from a closed slot fail with EBADF.
func (t *Table) Reader(fd int) io.Reader {
	if f := t.File(fd); f != nil {
		return f
	}
	return badFd(fd)
}

// Writer returns a writer for fd. Writes to a closed slot fail with EBADF.
func (t *Table) Writer(fd int) io.Writer {
	if f := t.File(fd); f != nil {
		return f
	}
	return badFd(fd)
}

// Stdin is shorthand for Reader(0).
func (t *Table) Stdin() io.Reader { return t.Reader(0) }

// Stdout is shorthand for Writer(1).
func (t *Table) Stdout() io.Writer { return t.Writer(1) }

// Stderr is shorthand for Writer(2).
func (t *Table) Stderr() io.Writer { return t.Writer(2) }

// Fds lists the descriptor numbers that are open in the table, ascending.
func (t *Table) Fds() []int {
	var out []int
	for fd, s := range t.slots {
		if s.file != nil {
			out = append(out, fd)
		}
	}
	sort.Ints(out)
	return out
}

// Files renders the table in the form os.ProcAttr.Files expects: index i holds
// the file for descriptor i, nil entries are closed in the child.
func (t *Table) Files() []*os.File {
	fds := t.Fds()
	if len(fds) == 0 {
		return nil
	}
	out := make([]*os.File, fds[len(fds)-1]+1)
	for _, fd := range fds {
		out[fd] = t.slots[fd].file
	}
	return out
}

// Close releases every descriptor the table owns. It is safe to call more
// than once; only the first call closes anything.
func (t *Table) Close() error {
	if t == nil || t.closed {
		return nil
	}
	t.closed = true

	var firstErr error
	for _, s := range t.slots {
		if err := s.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// install puts f at fd, releasing the previous occupant. Like dup2, a failure
// to close the replaced descriptor is not reported.
func (t *Table) install(fd int, f *os.File, owned bool) {
	if prev, ok := t.slots[fd]; ok {
		_ = prev.release()
	}
	t.slots[fd] = &slot{file: f, owned: owned}
}

// remove closes fd in the table.
func (t *Table) remove(fd int) error {
	prev, ok := t.slots[fd]
	t.slots[fd] = &slot{}
	if !ok {
		return nil
	}
	return prev.release()
}

// resolve returns the descriptor a reference to fd means for this stage.
func (t *Table) resolve(fd int) (uintptr, error) {
	s, ok := t.slots[fd]
	if !ok {
		return uintptr(fd), nil
	}
	if s.file == nil {
		return 0, syscall.EBADF
	}
	return s.file.Fd(), nil
}

func (s *slot) release() error {
	f, owned := s.file, s.owned
	s.file, s.owned = nil, false
	if f == nil || !owned {
		return nil
	}
	return f.Close()
}

type badFd int

func (b badFd) Read([]byte) (int, error) {
	return 0, &os.PathError{Op: "read", Path: b.name(), Err: syscall.EBADF}
}

func (b badFd) Write([]byte) (int, error) {
	return 0, &os.PathError{Op: "write", Path: b.name(), Err: syscall.EBADF}
}

func (b badFd) name() string {
	return fmt.Sprintf("fd %d", int(b))
}

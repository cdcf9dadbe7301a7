// Package fdplan computes the file descriptor table a single pipeline stage
// runs with.
//
// A Table overlays the controlling process's descriptors the way a forked
// child would see them: slots installed or closed by the plan take precedence,
// and everything else resolves to the controlling process's descriptor of the
// same number.
package fdplan

import (
	"fmt"
	"os"
)

// MaxFd is the largest descriptor number a plan may reference.
const MaxFd = 255

// Action is one mutation of a stage's fd table.
type Action interface {
	fmt.Stringer

	apply(p *Planner, t *Table) error
}

// DuplicateFd makes Destination an alias of Source, replacing whatever
// Destination referred to.
type DuplicateFd struct {
	Source      int
	Destination int
}

func (a DuplicateFd) String() string {
	return fmt.Sprintf("%d>&%d", a.Destination, a.Source)
}

// DuplicateFile installs a copy of File at Destination. Only Destination is
// range checked; File may hold any descriptor number.
type DuplicateFile struct {
	File        *os.File
	Destination int
}

func (a DuplicateFile) String() string {
	if a.File == nil {
		return fmt.Sprintf("%d>&<nil>", a.Destination)
	}
	return fmt.Sprintf("%d>&%s", a.Destination, a.File.Name())
}

// OpenFileAsFd opens Path with Mode and installs it at Destination.
type OpenFileAsFd struct {
	Path        string
	Mode        OpenMode
	Destination int
}

func (a OpenFileAsFd) String() string {
	return fmt.Sprintf("%d%s%s", a.Destination, a.Mode, a.Path)
}

// ClosePipeEnd closes Fd in the stage's table.
type ClosePipeEnd struct {
	Fd int
}

func (a ClosePipeEnd) String() string {
	return fmt.Sprintf("%d>&-", a.Fd)
}

// OpenMode is how a redirected file is opened.
type OpenMode int

const (
	// ModeRead opens for reading (<).
	ModeRead OpenMode = iota
	// ModeWrite creates or truncates for writing (>).
	ModeWrite
	// ModeAppend creates or appends (>>).
	ModeAppend
	// ModeReadWrite opens for reading and writing, creating if needed (<>).
	ModeReadWrite
)

func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "<"
	case ModeWrite:
		return ">"
	case ModeAppend:
		return ">>"
	case ModeReadWrite:
		return "<>"
	default:
		return fmt.Sprintf("OpenMode(%d)", int(m))
	}
}

// Flag returns the os.OpenFile flags for the mode.
func (m OpenMode) Flag() int {
	switch m {
	case ModeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ModeReadWrite:
		return os.O_RDWR | os.O_CREATE
	default:
		return os.O_RDONLY
	}
}

func validFd(fd int) bool {
	return fd >= 0 && fd <= MaxFd
}

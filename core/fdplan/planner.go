package fdplan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// ErrNotFdBacked is returned when a redirect target opens to something that
// has no OS descriptor, e.g. a file on an in-memory filesystem.
var ErrNotFdBacked = errors.New("file is not backed by a descriptor")

// DefaultFileMode is the permission used when a redirect creates a file,
// before the umask is applied.
const DefaultFileMode os.FileMode = 0666

// Planner applies FdActions to build stage tables.
//
// A Planner is not safe for concurrent use; stages are planned one at a time.
type Planner struct {
	// Fs opens redirect targets. Defaults to the OS filesystem.
	Fs afero.Fs
	// Dir resolves relative redirect paths. Defaults to the process's
	// working directory.
	Dir string
	// FileMode is used when a redirect creates a file.
	FileMode os.FileMode
	// Logger receives a debug event for each applied action.
	Logger zerolog.Logger
}

// NewPlanner creates a planner that opens redirects on the OS filesystem.
func NewPlanner(logger zerolog.Logger) *Planner {
	return &Planner{
		Fs:       afero.NewOsFs(),
		FileMode: DefaultFileMode,
		Logger:   logger,
	}
}

// Plan applies actions, in order, to a fresh table based on base. Later
// actions see the effects of earlier ones.
//
// If any action fails, every descriptor opened or duplicated during the call
// is closed before the error is returned, and the returned table is nil.
func (p *Planner) Plan(base Stdio, actions []Action) (*Table, error) {
	table := newTable(base)

	for _, action := range actions {
		if err := action.apply(p, table); err != nil {
			table.Close()
			p.Logger.Debug().Str("action", action.String()).Err(err).Msg("fd action failed")
			return nil, err
		}
		p.Logger.Debug().Str("action", action.String()).Msg("fd action applied")
	}

	return table, nil
}

func (a DuplicateFd) apply(p *Planner, t *Table) error {
	if !validFd(a.Destination) {
		return sherr.NewInvalidFd(a.Destination)
	}
	if !validFd(a.Source) {
		return sherr.NewInvalidFd(a.Source)
	}

	src, err := t.resolve(a.Source)
	if err != nil {
		return sherr.NewDupFd(err, a.Destination)
	}

	if a.Source == a.Destination {
		// dup2(fd, fd) only checks that fd is open.
		if _, err := unix.FcntlInt(src, unix.F_GETFD, 0); err != nil {
			return sherr.NewDupFd(err, a.Destination)
		}
		return nil
	}

	nfd, err := unix.FcntlInt(src, unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return sherr.NewDupFd(err, a.Destination)
	}

	t.install(a.Destination, os.NewFile(uintptr(nfd), fmt.Sprintf("fd%d", a.Destination)), true)
	return nil
}

func (a DuplicateFile) apply(p *Planner, t *Table) error {
	if !validFd(a.Destination) {
		return sherr.NewInvalidFd(a.Destination)
	}
	if a.File == nil {
		return sherr.NewDupFd(os.ErrInvalid, a.Destination)
	}

	nfd, err := unix.FcntlInt(a.File.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return sherr.NewDupFd(err, a.Destination)
	}

	t.install(a.Destination, os.NewFile(uintptr(nfd), fmt.Sprintf("fd%d", a.Destination)), true)
	return nil
}

func (a OpenFileAsFd) apply(p *Planner, t *Table) error {
	if !validFd(a.Destination) {
		return sherr.NewInvalidFd(a.Destination)
	}

	f, err := p.open(a.Path, a.Mode)
	if err != nil {
		return sherr.NewFdAsFile(err, a.Destination, a.Path)
	}

	t.install(a.Destination, f, true)
	return nil
}

func (a ClosePipeEnd) apply(p *Planner, t *Table) error {
	if !validFd(a.Fd) {
		return sherr.NewInvalidFd(a.Fd)
	}

	if err := t.remove(a.Fd); err != nil {
		return sherr.NewPipeIo(err)
	}
	return nil
}

func (p *Planner) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

func (p *Planner) open(path string, mode OpenMode) (*os.File, error) {
	if p.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(p.Dir, path)
	}

	perm := p.FileMode
	if perm == 0 {
		perm = DefaultFileMode
	}

	af, err := p.fs().OpenFile(path, mode.Flag(), perm)
	if err != nil {
		return nil, err
	}

	if f, ok := af.(*os.File); ok {
		return f, nil
	}

	// Wrapped OS files expose their descriptor; take a private copy so the
	// table owns exactly one descriptor.
	defer af.Close()
	fdFile, ok := af.(interface{ Fd() uintptr })
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: ErrNotFdBacked}
	}
	nfd, err := unix.FcntlInt(fdFile.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "dup", Path: path, Err: err}
	}
	return os.NewFile(uintptr(nfd), path), nil
}

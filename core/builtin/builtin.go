// Package builtin runs in-process commands under a uniform contract and maps
// their failures onto the shared error taxonomy.
//
// Builtins read and write through the fd table the planner installed for their
// stage. Nothing stops a builtin from touching the controlling process's own
// descriptors directly; doing so is outside the contract.
package builtin

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/josephlewis42/fdsh/core/proc"
	"github.com/spf13/afero"
)

// Invocation is everything a builtin gets to work with.
type Invocation struct {
	// Ctx is the context the pipeline was run with.
	Ctx context.Context
	// Args holds the argument vector, the builtin's name is Args[0].
	Args []string
	// Fds is the stage's installed descriptor table.
	Fds *fdplan.Table
	// Env is the shell environment.
	Env *proc.Env
	// Dir is the shell's working directory.
	Dir string
	// Fs is the filesystem redirects were opened on. Builtins that touch
	// files should use it too.
	Fs afero.Fs
}

// Name returns the name the builtin was invoked as.
func (inv *Invocation) Name() string {
	if len(inv.Args) == 0 {
		return ""
	}
	return inv.Args[0]
}

func (inv *Invocation) Stdin() io.Reader  { return inv.Fds.Stdin() }
func (inv *Invocation) Stdout() io.Writer { return inv.Fds.Stdout() }
func (inv *Invocation) Stderr() io.Writer { return inv.Fds.Stderr() }

// FS returns the invocation's filesystem, the OS one if none was set.
func (inv *Invocation) FS() afero.Fs {
	if inv.Fs == nil {
		return afero.NewOsFs()
	}
	return inv.Fs
}

// Path resolves name against the working directory.
func (inv *Invocation) Path(name string) string {
	if inv.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(inv.Dir, name)
}

// Open opens name for reading.
func (inv *Invocation) Open(name string) (afero.File, error) {
	return inv.FS().Open(inv.Path(name))
}

// Builtin is the contract every in-process command satisfies: given an
// invocation, produce an exit status or an error.
type Builtin interface {
	Run(inv *Invocation) (proc.ExitStatus, error)
}

// Func adapts a function to a Builtin.
type Func func(inv *Invocation) (proc.ExitStatus, error)

func (f Func) Run(inv *Invocation) (proc.ExitStatus, error) {
	return f(inv)
}

var _ Builtin = (Func)(nil)

// Registry maps builtin names to implementations.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]Builtin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]Builtin)}
}

// Register adds b under name, replacing any previous builtin of that name.
func (r *Registry) Register(name string, b Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.builtins == nil {
		r.builtins = make(map[string]Builtin)
	}
	r.builtins[name] = b
}

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builtins[name]
	return b, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package commands holds the reference builtins that ship with fdsh.
package commands

import (
	"sort"

	"github.com/josephlewis42/fdsh/core/builtin"
)

// Entry describes a registered builtin.
type Entry struct {
	Name    string
	Short   string
	Builtin builtin.Builtin
}

// allCommands holds every builtin in the package, keyed by name.
var allCommands = make(map[string]Entry)

func mustAddBuiltin(name, short string, b builtin.Func) {
	if _, ok := allCommands[name]; ok {
		panic("duplicate builtin: " + name)
	}
	allCommands[name] = Entry{Name: name, Short: short, Builtin: b}
}

// ListBuiltinCommands returns every builtin in the package, sorted by name.
func ListBuiltinCommands() []Entry {
	var out []Entry
	for _, e := range allCommands {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// RegisterAll adds every builtin in the package to r.
func RegisterAll(r *builtin.Registry) {
	for _, e := range ListBuiltinCommands() {
		r.Register(e.Name, e.Builtin)
	}
}

// NewRegistry returns a registry holding every builtin in the package.
func NewRegistry() *builtin.Registry {
	r := builtin.NewRegistry()
	RegisterAll(r)
	return r
}

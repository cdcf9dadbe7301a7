package proc

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Env is an in-memory environment shared by the executor and the builtins it
// runs. The zero value is an empty environment.
type Env struct {
	rw  sync.RWMutex
	env map[string]string
}

// NewEnv creates an environment from a list of "key=value" entries. Entries
// without a "=" are set to the empty string.
func NewEnv(environ []string) *Env {
	out := &Env{}
	for _, e := range environ {
		key, value := splitEntry(e)
		out.Setenv(key, value)
	}
	return out
}

// NewOSEnv copies the controlling process's environment.
func NewOSEnv() *Env {
	return NewEnv(os.Environ())
}

func splitEntry(e string) (string, string) {
	split := strings.SplitN(e, "=", 2)
	key, value := split[0], ""
	if len(split) > 1 {
		value = split[1]
	}
	return key, value
}

// Setenv sets key to value.
func (m *Env) Setenv(key, value string) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
}

// Unsetenv removes key.
func (m *Env) Unsetenv(key string) {
	m.rw.Lock()
	defer m.rw.Unlock()
	delete(m.env, key)
}

// LookupEnv retrieves the value of key and whether it was set.
func (m *Env) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv retrieves the value of key, or "" if unset.
func (m *Env) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// Environ returns the environment as sorted "key=value" entries.
func (m *Env) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.env))
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}

// With returns the environment with overrides applied on top, leaving m
// unchanged. Later overrides of the same key win.
func (m *Env) With(overrides []string) []string {
	if len(overrides) == 0 {
		return m.Environ()
	}

	merged := NewEnv(m.Environ())
	for _, e := range overrides {
		key, value := splitEntry(e)
		merged.Setenv(key, value)
	}
	return merged.Environ()
}

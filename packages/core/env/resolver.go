package env

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{name}} placeholders. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	lookup    func(string) (string, bool)
	warnFunc  WarnFunc
}

// NewResolver returns a resolver that falls back to the process environment.
func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		lookup:    os.LookupEnv,
	}
}

// SetLookup replaces the environment fallback. A nil lookup disables it.
func (r *Resolver) SetLookup(lookup func(string) (string, bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup = lookup
}

// SetWarnFunc sets a function to be called for unresolved placeholders
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// Lookup returns the value a placeholder named expr would expand to.
func (r *Resolver) Lookup(expr string) (string, bool) {
	if name, ok := strings.CutPrefix(expr, "$"); ok {
		return os.LookupEnv(name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.variables[expr]; ok {
		return v, true
	}
	if r.lookup != nil {
		return r.lookup(expr)
	}
	return "", false
}

// Resolve expands every placeholder in input. Unknown placeholders are left
// untouched and reported through the warn func.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := r.Lookup(expr); ok {
			return v
		}
		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// Unresolved returns the sorted names of placeholders in input that have no value.
func (r *Resolver) Unresolved(input string) []string {
	seen := make(map[string]struct{})
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if _, ok := r.Lookup(expr); !ok {
			seen[expr] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

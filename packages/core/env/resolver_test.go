package env

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestResolverResolve(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables map[string]string
		lookup    map[string]string
		expected  string
	}{
		{
			name:     "no placeholders",
			input:    "http://example.com/",
			expected: "http://example.com/",
		},
		{
			name:      "variable",
			input:     "http://{{host}}/api",
			variables: map[string]string{"host": "example.com"},
			expected:  "http://example.com/api",
		},
		{
			name:     "fallback lookup",
			input:    "Bearer {{ TOKEN }}",
			lookup:   map[string]string{"TOKEN": "abc"},
			expected: "Bearer abc",
		},
		{
			name:      "variable wins over lookup",
			input:     "{{TOKEN}}",
			variables: map[string]string{"TOKEN": "var"},
			lookup:    map[string]string{"TOKEN": "env"},
			expected:  "var",
		},
		{
			name:     "unresolved left untouched",
			input:    "{{missing}}-x",
			expected: "{{missing}}-x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			r.SetLookup(mapLookup(tt.lookup))
			r.SetVariables(tt.variables)
			assert.Equal(t, tt.expected, r.Resolve(tt.input))
		})
	}
}

func TestResolverProcessEnv(t *testing.T) {
	t.Setenv("XHRKIT_RESOLVER_TEST", "yes")

	r := NewResolver()
	r.SetLookup(nil)
	assert.Equal(t, "yes", r.Resolve("{{$XHRKIT_RESOLVER_TEST}}"))
	assert.Equal(t, "{{XHRKIT_RESOLVER_TEST}}", r.Resolve("{{XHRKIT_RESOLVER_TEST}}"))
}

func TestResolverWarnsOnUnresolved(t *testing.T) {
	r := NewResolver()
	r.SetLookup(nil)

	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	r.Resolve("{{a}} {{b}}")
	assert.Equal(t, []string{"unresolved variable: a", "unresolved variable: b"}, warnings)
}

func TestResolverUnresolved(t *testing.T) {
	r := NewResolver()
	r.SetLookup(nil)
	r.SetVariable("known", "1")

	assert.Equal(t, []string{"x", "y"}, r.Unresolved("{{y}}{{known}}{{x}}{{y}}"))
	assert.Empty(t, r.Unresolved("plain"))
}

// Package headers provides the ordered, case-insensitive header map shared by
// the request controller, the transport and the synchronous bridge.
package headers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Field is a single header line.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Map is a case-insensitive header map that keeps insertion order for
// serialization. The zero value is ready to use.
type Map struct {
	fields []Field
	index  map[string]int
}

func New() *Map {
	return &Map{}
}

// FromFields builds a map from fields, later duplicates replacing earlier ones.
func FromFields(fields []Field) *Map {
	m := New()
	for _, f := range fields {
		m.Set(f.Name, f.Value)
	}
	return m
}

// FromHTTP converts response headers to a map with lower-case names sorted
// alphabetically. Repeated values are joined with ", " except Set-Cookie,
// whose values are kept on separate lines.
func FromHTTP(h http.Header) *Map {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	m := New()
	for _, name := range names {
		lower := strings.ToLower(name)
		values := h[name]
		if lower == "set-cookie" {
			m.Set(lower, strings.Join(values, "\n"))
			continue
		}
		m.Set(lower, strings.Join(values, ", "))
	}
	return m
}

func (m *Map) key(name string) string {
	return strings.ToLower(name)
}

// Set replaces the value of name, keeping the original position and
// spelling when the name already exists.
func (m *Map) Set(name, value string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	k := m.key(name)
	if i, ok := m.index[k]; ok {
		m.fields[i].Value = value
		return
	}
	m.index[k] = len(m.fields)
	m.fields = append(m.fields, Field{Name: name, Value: value})
}

// Get returns the value of name.
func (m *Map) Get(name string) (string, bool) {
	if m == nil || m.index == nil {
		return "", false
	}
	i, ok := m.index[m.key(name)]
	if !ok {
		return "", false
	}
	return m.fields[i].Value, true
}

// Has reports whether name is present.
func (m *Map) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Del removes name.
func (m *Map) Del(name string) {
	if m == nil || m.index == nil {
		return
	}
	k := m.key(name)
	i, ok := m.index[k]
	if !ok {
		return
	}
	m.fields = append(m.fields[:i], m.fields[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.fields); j++ {
		m.index[m.key(m.fields[j].Name)] = j
	}
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// Fields returns a copy of the fields in insertion order.
func (m *Map) Fields() []Field {
	if m == nil {
		return nil
	}
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	return FromFields(m.Fields())
}

// HTTP converts the map to an http.Header.
func (m *Map) HTTP() http.Header {
	h := make(http.Header, m.Len())
	for _, f := range m.Fields() {
		h.Set(f.Name, f.Value)
	}
	return h
}

func (m *Map) MarshalJSON() ([]byte, error) {
	fields := m.Fields()
	if fields == nil {
		fields = []Field{}
	}
	return json.Marshal(fields)
}

func (m *Map) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = Map{}
	for _, f := range fields {
		m.Set(f.Name, f.Value)
	}
	return nil
}

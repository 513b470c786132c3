package headers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_CaseInsensitive(t *testing.T) {
	m := New()
	m.Set("Content-Type", "text/plain")
	m.Set("X-Custom", "1")
	m.Set("content-type", "application/json")

	v, ok := m.Get("CONTENT-TYPE")
	require.True(t, ok)
	assert.Equal(t, "application/json", v)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "Content-Type", m.Fields()[0].Name)
}

func TestMap_Del(t *testing.T) {
	m := New()
	m.Set("A", "1")
	m.Set("B", "2")
	m.Set("C", "3")
	m.Del("b")

	assert.False(t, m.Has("B"))
	v, ok := m.Get("c")
	require.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, []Field{{"A", "1"}, {"C", "3"}}, m.Fields())
}

func TestMap_NilSafe(t *testing.T) {
	var m *Map
	_, ok := m.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
	m.Del("x")
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := New()
	m.Set("A", "1")
	c := m.Clone()
	c.Set("A", "2")

	v, _ := m.Get("A")
	assert.Equal(t, "1", v)
}

func TestFromHTTP(t *testing.T) {
	h := http.Header{}
	h.Add("X-B", "1")
	h.Add("X-B", "2")
	h.Add("Content-Type", "text/plain")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	m := FromHTTP(h)
	assert.Equal(t, []Field{
		{"content-type", "text/plain"},
		{"set-cookie", "a=1\nb=2"},
		{"x-b", "1, 2"},
	}, m.Fields())
}

func TestMap_JSON(t *testing.T) {
	m := New()
	m.Set("B", "2")
	m.Set("A", "1")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"B","value":"2"},{"name":"A","value":"1"}]`, string(data))

	var back Map
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Fields(), back.Fields())
}

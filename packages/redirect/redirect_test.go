package redirect

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestIsRedirect(t *testing.T) {
	for _, status := range []int{301, 302, 303, 307, 308} {
		assert.True(t, IsRedirect(status), status)
	}
	for _, status := range []int{200, 300, 304, 305, 400} {
		assert.False(t, IsRedirect(status), status)
	}
}

func TestBudget_Exhaustion(t *testing.T) {
	b := NewBudget(3)
	current := mustParse(t, "http://localhost:8888/a")

	for i := 0; i < 3; i++ {
		next, err := b.Next(301, "/b", current, "GET")
		require.NoError(t, err)
		current = next.URL
	}

	_, err := b.Next(301, "/b", current, "GET")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
	assert.Equal(t, "Too many redirects", err.Error())
}

func TestBudget_ZeroAndNegative(t *testing.T) {
	b := NewBudget(-5)
	assert.Equal(t, 0, b.Max)
	_, err := b.Next(302, "/", mustParse(t, "http://localhost/"), "GET")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestBudget_ResolvesRelativeLocation(t *testing.T) {
	b := NewBudget(DefaultMax)
	next, err := b.Next(302, "../c?x=1", mustParse(t, "http://example.com:8080/a/b"), "POST")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080/c?x=1", next.URL.String())
	assert.Equal(t, "POST", next.Method)
	assert.Equal(t, "example.com:8080", next.Host)
	assert.False(t, next.DropBody)
}

func TestBudget_SeeOtherDowngradesToGet(t *testing.T) {
	b := NewBudget(DefaultMax)
	next, err := b.Next(303, "/done", mustParse(t, "https://example.com/form"), "POST")
	require.NoError(t, err)
	assert.Equal(t, "GET", next.Method)
	assert.True(t, next.DropBody)
}

func TestBudget_PreservesMethod(t *testing.T) {
	for _, status := range []int{301, 302, 307, 308} {
		b := NewBudget(DefaultMax)
		next, err := b.Next(status, "/x", mustParse(t, "http://example.com/"), "PUT")
		require.NoError(t, err)
		assert.Equal(t, "PUT", next.Method, status)
	}
}

func TestBudget_UnsafeRedirect(t *testing.T) {
	for _, location := range []string{"file:///etc/passwd", "data:,hi", "ftp://example.com/", "http://[::1"} {
		b := NewBudget(DefaultMax)
		_, err := b.Next(302, location, mustParse(t, "http://example.com/"), "GET")
		assert.ErrorIs(t, err, ErrUnsafeRedirect, location)
	}
}

func TestHostHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://example.com/", "example.com"},
		{"http://example.com:80/", "example.com"},
		{"https://example.com:443/", "example.com"},
		{"https://example.com:80/", "example.com:80"},
		{"http://localhost:8888/", "localhost:8888"},
		{"http://[::1]:8080/", "[::1]:8080"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HostHeader(mustParse(t, tt.raw)), tt.raw)
	}
}

package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/xhrkit/packages/stats"
)

func sampleExchange() *Exchange {
	return &Exchange{
		Method:     "GET",
		URL:        "http://localhost/items",
		Status:     200,
		StatusText: "OK",
		Headers:    "content-type: application/json\r\nx-id: 7",
		Body:       `{"items":[{"name":"a"},{"name":"b"}],"count":2}`,
		Duration:   12 * time.Millisecond,
	}
}

func TestExchangeHeaders(t *testing.T) {
	ex := sampleExchange()
	assert.Equal(t, []string{"content-type: application/json", "x-id: 7"}, ex.HeaderLines())
	assert.Equal(t, map[string]string{"content-type": "application/json", "x-id": "7"}, ex.HeaderMap())
	assert.False(t, ex.Failed())

	assert.Nil(t, (&Exchange{}).HeaderLines())
	assert.True(t, (&Exchange{Status: 500}).Failed())
	assert.True(t, (&Exchange{Status: 200, Err: errors.New("x")}).Failed())
}

func TestConsoleFormatter_Body(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatExchange(sampleExchange())
	assert.Equal(t, sampleExchange().Body+"\n", buf.String())
}

func TestConsoleFormatter_Headers(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithHeaders(true))

	f.FormatExchange(sampleExchange())
	out := buf.String()
	assert.Contains(t, out, "200 OK http://localhost/items (12ms)")
	assert.Contains(t, out, "x-id: 7\n")
	assert.Contains(t, out, `"count":2`)
}

func TestConsoleFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatExchange(&Exchange{URL: "http://x", Err: errors.New("NetworkError: refused")})
	assert.Equal(t, "x http://x (NetworkError: refused)\n", buf.String())

	buf.Reset()
	f.FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestConsoleFormatter_Summary(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSummary(&stats.Summary{
		Total:     4,
		Errors:    1,
		ErrorRate: 0.25,
		RPS:       2,
		Statuses:  map[int]int64{200: 3, 500: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "Requests: 4, 3 ok, 1 failed (25%)")
	assert.Contains(t, out, "Rate:     2 req/s")
	assert.Contains(t, out, "[200] 3")
	assert.Contains(t, out, "[500] 1")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatExchange(sampleExchange())
	f.FormatExchange(&Exchange{Method: "GET", URL: "http://x", Body: "plain text", Status: 404, StatusText: "Not Found"})
	require.NoError(t, f.Flush(&stats.Summary{Total: 2, Errors: 1, P50: 1500 * time.Microsecond}))

	var out struct {
		Requests []struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       map[string]any    `json:"body"`
			Text       string            `json:"text"`
		} `json:"requests"`
		Summary struct {
			Total int     `json:"total"`
			P50   float64 `json:"p50"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Requests, 2)
	assert.Equal(t, 200, out.Requests[0].StatusCode)
	assert.Equal(t, float64(2), out.Requests[0].Body["count"])
	assert.Equal(t, "7", out.Requests[0].Headers["x-id"])
	assert.Equal(t, "plain text", out.Requests[1].Text)
	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1.5, out.Summary.P50)
}

func TestSelect(t *testing.T) {
	body := sampleExchange().Body

	tests := []struct {
		path string
		want string
	}{
		{path: "count", want: "2"},
		{path: "items.1.name", want: "b"},
		{path: "items.#.name", want: `["a","b"]`},
		{path: "items.0", want: `{"name":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Select(body, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Select(body, "missing")
	assert.Error(t, err)

	_, err = Select("not json", "a")
	assert.Error(t, err)
}

func TestValidateSchema(t *testing.T) {
	fs := afero.NewMemMapFs()
	schema := `{
		"type": "object",
		"required": ["count"],
		"properties": {"count": {"type": "integer"}}
	}`
	require.NoError(t, afero.WriteFile(fs, "/schema.json", []byte(schema), 0o644))

	assert.NoError(t, ValidateSchema(fs, "/schema.json", []byte(`{"count": 2}`)))

	err := ValidateSchema(fs, "/schema.json", []byte(`{"count": "two"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")

	err = ValidateSchema(fs, "/missing.json", []byte(`{}`))
	assert.Contains(t, err.Error(), "failed to read schema file")
}

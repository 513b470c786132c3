package syncbridge

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/xhrkit/packages/headers"
	"github.com/abdul-hamid-achik/xhrkit/packages/redirect"
)

func TestResultRoundTripKeepsBinary(t *testing.T) {
	in := &Result{
		URL:        "http://example.com/final",
		StatusCode: 200,
		StatusText: "OK",
		Headers:    headers.FromFields([]headers.Field{{Name: "content-type", Value: "application/octet-stream"}}),
		Data:       []byte{0x00, 0xff, 0x00, 'a', 0x80},
	}

	data, err := EncodeResult(in, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"))

	out, err := DecodeResult(data)
	require.NoError(t, err)
	assert.Equal(t, in.URL, out.URL)
	assert.Equal(t, in.StatusCode, out.StatusCode)
	assert.Equal(t, in.Data, out.Data)
	ct, _ := out.Headers.Get("Content-Type")
	assert.Equal(t, "application/octet-stream", ct)
}

func TestEncodeRedirectError(t *testing.T) {
	data, err := EncodeResult(nil, fmt.Errorf("follow: %w", redirect.ErrTooManyRedirects))
	require.NoError(t, err)
	assert.Equal(t, "ERROR-REDIRECT:Too many redirects", string(data))

	_, err = DecodeResult(data)
	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.True(t, werr.Redirect)
	assert.Equal(t, "Too many redirects", werr.Message)
}

func TestEncodeWorkerError(t *testing.T) {
	data, err := EncodeResult(nil, fmt.Errorf("dial: %w", syscall.ECONNREFUSED))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ERROR:{"))

	_, err = DecodeResult(data)
	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.False(t, werr.Redirect)
	assert.Equal(t, "ECONNREFUSED", werr.Code)
	assert.Contains(t, werr.Message, "dial")
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeResult([]byte("ERROR:{nope"))
	assert.ErrorContains(t, err, "malformed error record")

	_, err = DecodeResult([]byte("garbage"))
	assert.ErrorContains(t, err, "malformed result")
}

func TestEncodeNilResult(t *testing.T) {
	_, err := EncodeResult(nil, nil)
	assert.Error(t, err)
}

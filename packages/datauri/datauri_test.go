package datauri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		href    string
		want    string
		wantErr error
	}{
		{name: "plain", href: "data:,Hello%20World", want: "Hello World"},
		{name: "plain with spaces", href: "data:, Hello World", want: " Hello World"},
		{name: "base64 in first segment is a media type", href: "data:base64;example=1;args=2,Hello%20World", want: "Hello World"},
		{name: "base64", href: "data:text;base64,SGVsbG8gV29ybGQ=", want: "Hello World"},
		{name: "base64 upper case token", href: "data:text;BASE64,SGVsbG8gV29ybGQ=", want: "Hello World"},
		{name: "base64 with whitespace", href: "data:text;base64,SGV sbG8gV\n29ybGQ=", want: "Hello World"},
		{name: "base64 with escaped whitespace", href: "data:text;base64,SGV%20sbG8gV%0a29ybGQ=", want: "Hello World"},
		{name: "base64 without padding", href: "data:text;base64,SGVsbG8gV29ybGQ", want: "Hello World"},
		{name: "base64 invalid characters", href: "data:text;base64,SGV&&&&sbG8gV{29ybGQ=", wantErr: ErrMalformedBase64},
		{name: "base64 escaped invalid characters", href: "data:text;base64,SGV%26%26%26%26sbG8gV%7B29ybGQ%3D", wantErr: ErrMalformedBase64},
		{name: "base64 excessive padding", href: "data:text;base64,SGVsbG8gV29ybGQ==", wantErr: ErrInvalidPadding},
		{name: "base64 url alphabet", href: "data:;base64,-_-_", wantErr: ErrMalformedBase64},
		{name: "base64 non canonical trailing bits", href: "data:;base64,SGVsbG9=", wantErr: ErrMalformedBase64},
		{name: "no comma", href: "data:text/plain", wantErr: ErrInvalidURL},
		{name: "not a data url", href: "http://example.com", wantErr: ErrInvalidURL},
		{name: "bad escape", href: "data:,%zz", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.href)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(d.Bytes))
		})
	}
}

func TestDecode_PayloadKeepsCommas(t *testing.T) {
	d, err := Decode("data:,a,b,c")
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(d.Bytes))
}

func TestDecode_MediaType(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"data:,x", DefaultMediaType},
		{"data:image/png;base64,AAAA", "image/png"},
		{"data:text/html;charset=utf-8,x", "text/html;charset=utf-8"},
		{"data:;charset=utf-8,x", "text/plain;charset=utf-8"},
	}

	for _, tt := range tests {
		d, err := Decode(tt.href)
		require.NoError(t, err, tt.href)
		assert.Equal(t, tt.want, d.MediaType, tt.href)
	}
}

func TestDecode_BinaryPayload(t *testing.T) {
	d, err := Decode("data:application/octet-stream;base64,AAECAwD/")
	require.NoError(t, err)
	assert.True(t, d.Base64)
	assert.Equal(t, []byte{0, 1, 2, 3, 0, 0xff}, d.Bytes)
}

// Package datauri decodes data: URLs (RFC 2397) into raw bytes.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	scheme = "data:"
	// DefaultMediaType applies when the header names no media type.
	DefaultMediaType = "text/plain;charset=US-ASCII"
)

var (
	ErrInvalidURL      = errors.New("invalid URL")
	ErrInvalidPadding  = errors.New("invalid padding")
	ErrMalformedBase64 = errors.New("malformed base64 encoding")
)

// Data is a decoded data: URL.
type Data struct {
	MediaType string
	Base64    bool
	Bytes     []byte
}

// Decode parses href of the form data:[<mediatype>][;base64],<data>.
func Decode(href string) (*Data, error) {
	if len(href) < len(scheme) || !strings.EqualFold(href[:len(scheme)], scheme) {
		return nil, ErrInvalidURL
	}

	header, payload, found := strings.Cut(href[len(scheme):], ",")
	if !found {
		return nil, ErrInvalidURL
	}

	segments := strings.Split(header, ";")
	isBase64 := false
	for i, segment := range segments {
		if i > 0 && strings.EqualFold(segment, "base64") {
			isBase64 = true
			break
		}
	}

	input, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	d := &Data{
		MediaType: mediaType(segments),
		Base64:    isBase64,
	}

	if !isBase64 {
		d.Bytes = []byte(input)
		return d, nil
	}

	d.Bytes, err = decodeBase64(input)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func decodeBase64(input string) ([]byte, error) {
	input = stripASCIIWhitespace(input)

	data := strings.TrimRight(input, "=")
	padding := len(input) - len(data)
	if padding+len(data)%4 > 4 {
		return nil, ErrInvalidPadding
	}

	decoded, err := base64.RawStdEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrMalformedBase64
	}
	// The decoder tolerates non-canonical trailing bits; re-encoding
	// rejects anything that is not the canonical form of the bytes.
	if base64.RawStdEncoding.EncodeToString(decoded) != data {
		return nil, ErrMalformedBase64
	}
	return decoded, nil
}

func stripASCIIWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return -1
		}
		return r
	}, s)
}

func mediaType(segments []string) string {
	var params []string
	for i, segment := range segments {
		if i == 0 || strings.EqualFold(segment, "base64") || segment == "" {
			continue
		}
		params = append(params, segment)
	}

	typ := strings.TrimSpace(segments[0])
	if typ == "" {
		if len(params) == 0 {
			return DefaultMediaType
		}
		typ = "text/plain"
	}
	if len(params) == 0 {
		return typ
	}
	return typ + ";" + strings.Join(params, ";")
}

package response

import (
	"strings"
	"unicode/utf8"
)

// textDecoder decodes UTF-8 incrementally. A rune split across chunks is
// held back until the next chunk; invalid bytes decode to U+FFFD.
type textDecoder struct {
	pending []byte
}

func (d *textDecoder) write(chunk []byte) string {
	buf := chunk
	if len(d.pending) > 0 {
		buf = append(d.pending, chunk...)
		d.pending = nil
	}

	var sb strings.Builder
	for len(buf) > 0 {
		if !utf8.FullRune(buf) {
			d.pending = append([]byte(nil), buf...)
			break
		}
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(buf[:size])
		}
		buf = buf[size:]
	}
	return sb.String()
}

func (d *textDecoder) flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	// An incomplete trailing sequence decodes to one replacement rune.
	d.pending = nil
	return string(utf8.RuneError)
}

func decodeAll(b []byte) string {
	var d textDecoder
	return d.write(b) + d.flush()
}

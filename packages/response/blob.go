package response

// Blob is an immutable binary large object.
type Blob struct {
	typ  string
	data []byte
}

// NewBlob copies data into a new blob of the given media type.
func NewBlob(data []byte, typ string) *Blob {
	return &Blob{typ: typ, data: exact(data)}
}

func (b *Blob) Size() int {
	return len(b.data)
}

func (b *Blob) Type() string {
	return b.typ
}

// Bytes returns a copy of the blob contents.
func (b *Blob) Bytes() []byte {
	return exact(b.data)
}

func (b *Blob) Text() string {
	return decodeAll(b.data)
}

// exact copies buf into a slice whose capacity equals its length.
func exact(buf []byte) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)
	return out
}

// concat joins chunks into one slice sized exactly to the total length.
func concat(chunks [][]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, total)
	offset := 0
	for _, c := range chunks {
		offset += copy(out[offset:], c)
	}
	return out
}

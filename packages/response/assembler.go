package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the assembled body.
type Result struct {
	// Text is the decoded body for "" and "text"; empty otherwise.
	Text string
	// Value is a string, a parsed JSON value, a []byte or a *Blob.
	Value any
}

// ParseError reports a body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Assembler accumulates a streamed body.
type Assembler struct {
	typ      Type
	blobType string
	decoder  textDecoder
	text     strings.Builder
	chunks   [][]byte
}

func NewAssembler(t Type) *Assembler {
	return &Assembler{typ: t}
}

// SetBlobType sets the media type recorded on blob results.
func (a *Assembler) SetBlobType(typ string) {
	a.blobType = typ
}

// Write consumes one chunk. For text types it returns the newly decoded
// text, which callers append to the text they expose while loading.
func (a *Assembler) Write(chunk []byte) string {
	if len(chunk) == 0 {
		return ""
	}
	if a.typ.IsText() {
		s := a.decoder.write(chunk)
		a.text.WriteString(s)
		return s
	}
	a.chunks = append(a.chunks, append([]byte(nil), chunk...))
	return ""
}

// Text returns the text decoded so far.
func (a *Assembler) Text() string {
	return a.text.String()
}

// Finish builds the result from everything written.
func (a *Assembler) Finish() (*Result, error) {
	if a.typ.IsText() {
		a.text.WriteString(a.decoder.flush())
		return fromText(a.typ, a.text.String())
	}
	return fromBytes(a.typ, concat(a.chunks), a.blobType), nil
}

// Assemble builds the result from a complete body.
func Assemble(t Type, body []byte, blobType string) (*Result, error) {
	a := NewAssembler(t)
	a.SetBlobType(blobType)
	a.Write(body)
	return a.Finish()
}

func fromText(t Type, text string) (*Result, error) {
	if t != TypeJSON {
		return &Result{Text: text, Value: text}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &Result{Value: v}, nil
}

func fromBytes(t Type, buf []byte, blobType string) *Result {
	if t == TypeBlob {
		return &Result{Value: &Blob{typ: blobType, data: buf}}
	}
	return &Result{Value: buf}
}

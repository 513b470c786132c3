package response

import "fmt"

// Type selects the representation of the response body.
type Type string

const (
	TypeDefault     Type = ""
	TypeText        Type = "text"
	TypeJSON        Type = "json"
	TypeArrayBuffer Type = "arraybuffer"
	TypeBlob        Type = "blob"
)

// ParseType validates s as a response type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeDefault, TypeText, TypeJSON, TypeArrayBuffer, TypeBlob:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported response type %q", s)
	}
}

// IsText reports whether the body is decoded as UTF-8 text while it loads.
func (t Type) IsText() bool {
	return t == TypeDefault || t == TypeText || t == TypeJSON
}

func (t Type) String() string {
	return string(t)
}

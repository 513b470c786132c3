package output

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Select returns the part of a JSON body at path. Strings are returned
// unquoted, everything else as raw JSON.
func Select(body, path string) (string, error) {
	if !gjson.Valid(body) {
		return "", fmt.Errorf("response body is not valid JSON")
	}
	result := gjson.Get(body, path)
	if !result.Exists() {
		return "", fmt.Errorf("no value at path %q", path)
	}
	if result.Type == gjson.String {
		return result.String(), nil
	}
	return result.Raw, nil
}

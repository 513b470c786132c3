package syncbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	errorPrefix         = "ERROR:"
	redirectErrorPrefix = "ERROR-REDIRECT:"
)

// EncodeResult renders the outcome of Execute as result file content.
func EncodeResult(res *Result, err error) ([]byte, error) {
	if err != nil {
		var werr *Error
		if !errors.As(err, &werr) {
			werr = toError(err)
		}
		if werr.Redirect {
			return []byte(redirectErrorPrefix + werr.Message), nil
		}
		payload, mErr := json.Marshal(werr)
		if mErr != nil {
			return nil, mErr
		}
		return append([]byte(errorPrefix), payload...), nil
	}
	if res == nil {
		return nil, errors.New("syncbridge: nil result")
	}
	return json.Marshal(res)
}

// DecodeResult parses result file content. Worker failures come back as *Error.
func DecodeResult(data []byte) (*Result, error) {
	switch {
	case bytes.HasPrefix(data, []byte(redirectErrorPrefix)):
		msg := string(bytes.TrimPrefix(data, []byte(redirectErrorPrefix)))
		return nil, &Error{Message: msg, Redirect: true}

	case bytes.HasPrefix(data, []byte(errorPrefix)):
		var werr Error
		if err := json.Unmarshal(bytes.TrimPrefix(data, []byte(errorPrefix)), &werr); err != nil {
			return nil, fmt.Errorf("syncbridge: malformed error record: %w", err)
		}
		return nil, &werr
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("syncbridge: malformed result: %w", err)
	}
	return &res, nil
}

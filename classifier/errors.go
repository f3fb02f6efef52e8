package classifier

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrMissingAPIKey     = errors.New("API key is not set")
	ErrEndpoint          = errors.New("inference endpoint request failed")
	ErrMalformedResponse = errors.New("inference endpoint returned a malformed response")
)

// EndpointError describes a failed call to an inference endpoint.
type EndpointError struct {
	Provider   string
	Model      string
	StatusCode int    // 0 for transport failures
	Message    string // response body excerpt
	Err        error
}

func (e *EndpointError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed for model %s (status %d): %s",
			e.Provider, e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed for model %s: %v", e.Provider, e.Model, e.Err)
}

func (e *EndpointError) Unwrap() error {
	if e.Err == nil {
		return ErrEndpoint
	}
	return e.Err
}

// Is lets errors.Is(err, ErrEndpoint) match any EndpointError.
func (e *EndpointError) Is(target error) bool {
	return target == ErrEndpoint
}

// excerpt cuts s to at most n bytes without splitting a rune.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

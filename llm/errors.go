package llm

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4096

// ErrNoResponseBody is returned when a successful response carries no stream.
var ErrNoResponseBody = errors.New("response has no body to stream")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status     int
	StatusText string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("API call failed: %d %s", e.Status, e.StatusText)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Status:     resp.StatusCode,
		StatusText: strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))),
		Body:       strings.TrimSpace(string(data)),
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/csvdesk/csvdesk/internal/common"
)

// APIError is a server-reported request failure. Detail carries the
// human-readable message from the response body's {detail} field, suitable
// for direct display in a form or prompt.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server rejected request (%d)", e.Status)
}

// Unwrap maps the status code to the shared sentinel taxonomy so callers can
// classify with errors.Is without losing the display message.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	default:
		if e.Status >= 500 {
			return common.ErrInternal
		}
		return nil
	}
}

// decodeError turns a non-2xx response into an error. The body is consumed.
func decodeError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	return &APIError{Status: resp.StatusCode, Detail: body.Detail}
}

package errors

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// HTTPError is the structured error body returned by the node.
type HTTPError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}

// ParseErrorBody extracts a human-readable message from a non-success
// response body. JSON bodies of the form {"message": "..."} are decoded;
// empty or malformed bodies fall back to the raw text (or the status text
// when there is nothing at all). It never fails.
func ParseErrorBody(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return http.StatusText(status)
	}

	if trimmed[0] == '{' {
		var httpErr HTTPError
		if err := json.Unmarshal(trimmed, &httpErr); err == nil {
			switch {
			case httpErr.Message != "":
				return httpErr.Message
			case httpErr.Detail != "":
				return httpErr.Detail
			}
		}
	}

	return strings.TrimSpace(string(trimmed))
}

// HTTPStatusToCode converts an HTTP status code to an error code.
func HTTPStatusToCode(status int) string {
	switch status {
	case http.StatusOK, http.StatusAccepted:
		return CodeOK
	case http.StatusBadRequest:
		return CodeInvalidArgument
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeDeadlineExceeded
	case http.StatusTooManyRequests:
		return CodeResourceExhausted
	case http.StatusNotImplemented:
		return CodeUnimplemented
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return CodeUnavailable
	case http.StatusInternalServerError:
		return CodeInternal
	default:
		if status >= 400 && status < 500 {
			return CodeInvalidArgument
		}
		return CodeInternal
	}
}

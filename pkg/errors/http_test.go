package errors

import (
	"net/http"
	"testing"
)

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "json message", status: 400, body: `{"message":"bad args"}`, expected: "bad args"},
		{name: "json error field", status: 500, body: `{"error":"state unavailable"}`, expected: "state unavailable"},
		{name: "capitalized key", status: 400, body: `{"Message":"bad hname"}`, expected: "bad hname"},
		{name: "plain text", status: 404, body: "request not found\n", expected: "request not found"},
		{name: "malformed json", status: 500, body: `{"message":`, expected: `{"message":`},
		{name: "empty json object", status: 502, body: `{}`, expected: `{}`},
		{name: "empty body", status: http.StatusServiceUnavailable, body: "", expected: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseErrorBody(tt.status, []byte(tt.body)); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestHTTPStatusToCode(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{http.StatusOK, CodeOK},
		{http.StatusAccepted, CodeOK},
		{http.StatusBadRequest, CodeInvalidArgument},
		{http.StatusUnauthorized, CodeUnauthenticated},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeAlreadyExists},
		{http.StatusRequestTimeout, CodeDeadlineExceeded},
		{http.StatusTooManyRequests, CodeResourceExhausted},
		{http.StatusServiceUnavailable, CodeUnavailable},
		{http.StatusInternalServerError, CodeInternal},
		{http.StatusTeapot, CodeInvalidArgument},
		{599, CodeInternal},
	}

	for _, tt := range tests {
		if got := HTTPStatusToCode(tt.status); got != tt.expected {
			t.Errorf("status %d: expected %q, got %q", tt.status, tt.expected, got)
		}
	}
}

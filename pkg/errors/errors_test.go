package errors

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		message       string
		value         interface{}
		expectedError string
	}{
		{
			name:          "with field",
			field:         "chain_id",
			message:       "must be 32 bytes",
			value:         "0x01",
			expectedError: "validation error: chain_id: must be 32 bytes",
		},
		{
			name:          "without field",
			field:         "",
			message:       "invalid input",
			value:         nil,
			expectedError: "validation error: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, err.Error())
			}
			if err.Code() != CodeValidation {
				t.Errorf("Expected code %q, got %q", CodeValidation, err.Code())
			}
			if err.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, err.Field)
			}
		})
	}
}

func TestNodeErrors(t *testing.T) {
	t.Run("view call", func(t *testing.T) {
		err := NewViewCallError(400, "bad args")
		if err.StatusCode != 400 {
			t.Errorf("Expected status 400, got %d", err.StatusCode)
		}
		if err.Message() != "bad args" {
			t.Errorf("Expected message 'bad args', got %q", err.Message())
		}
		if err.Code() != CodeInvalidArgument {
			t.Errorf("Expected code %q, got %q", CodeInvalidArgument, err.Code())
		}
		if err.Error() != "view call failed: 400: bad args" {
			t.Errorf("Unexpected error string %q", err.Error())
		}
	})

	t.Run("post request", func(t *testing.T) {
		err := NewPostRequestError(409, "nonce already used")
		if err.StatusCode != 409 {
			t.Errorf("Expected status 409, got %d", err.StatusCode)
		}
		if err.Code() != CodeAlreadyExists {
			t.Errorf("Expected code %q, got %q", CodeAlreadyExists, err.Code())
		}
		if !strings.Contains(err.Error(), "nonce already used") {
			t.Errorf("Expected message in error string, got %q", err.Error())
		}
	})

	t.Run("wait", func(t *testing.T) {
		err := NewWaitError(500, "receipt lookup failed")
		if err.StatusCode != 500 {
			t.Errorf("Expected status 500, got %d", err.StatusCode)
		}
		if err.Code() != CodeInternal {
			t.Errorf("Expected code %q, got %q", CodeInternal, err.Code())
		}
	})
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("callview", cause)

	if err.Op != "callview" {
		t.Errorf("Expected op 'callview', got %q", err.Op)
	}
	if err.Code() != CodeUnavailable {
		t.Errorf("Expected code %q, got %q", CodeUnavailable, err.Code())
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected cause to be reachable through errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected error to contain cause: %q", err.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("wait", 2*time.Second, nil)
	if err.Message() != "wait timeout after 2s" {
		t.Errorf("Expected message 'wait timeout after 2s', got %q", err.Message())
	}
	if err.Code() != CodeTimeout {
		t.Errorf("Expected code %q, got %q", CodeTimeout, err.Code())
	}
	if err.Duration != 2*time.Second {
		t.Errorf("Expected duration 2s, got %s", err.Duration)
	}

	anon := NewTimeoutError("", 0, nil)
	if anon.Message() != "operation timeout" {
		t.Errorf("Expected default message, got %q", anon.Message())
	}
}

func TestNonceResolutionError(t *testing.T) {
	cause := NewViewCallError(503, "accounts unavailable")
	err := NewNonceResolutionError("0xabc", cause)

	if err.Identity != "0xabc" {
		t.Errorf("Expected identity '0xabc', got %q", err.Identity)
	}
	if err.Code() != CodeNonceResolution {
		t.Errorf("Expected code %q, got %q", CodeNonceResolution, err.Code())
	}

	var viewErr *ViewCallError
	if !errors.As(err, &viewErr) {
		t.Fatalf("Expected view call error in chain")
	}
	if viewErr.StatusCode != 503 {
		t.Errorf("Expected status 503, got %d", viewErr.StatusCode)
	}
}

func TestSigningError(t *testing.T) {
	t.Run("default message", func(t *testing.T) {
		err := NewSigningError("", nil)
		if err.Message() != "signing failed" {
			t.Errorf("Expected message 'signing failed', got %q", err.Message())
		}
		if err.Code() != CodeCryptoError {
			t.Errorf("Expected code %q, got %q", CodeCryptoError, err.Code())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("key is nil")
		err := NewSigningError("cannot sign request", cause)
		if err.Unwrap() != cause {
			t.Errorf("Expected cause to be preserved")
		}
	})
}

func TestInternalError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("encoder exploded")
		err := NewInternalError("failed to encode request", cause)

		if err.Message() != "failed to encode request" {
			t.Errorf("Expected message 'failed to encode request', got %q", err.Message())
		}
		if err.Unwrap() != cause {
			t.Errorf("Expected cause to be preserved")
		}
		if !strings.Contains(err.Error(), "encoder exploded") {
			t.Errorf("Expected error to contain cause: %q", err.Error())
		}
	})

	t.Run("with operation", func(t *testing.T) {
		err := NewInternalError("operation failed", nil).WithOperation("sign")
		if err.Operation != "sign" {
			t.Errorf("Expected operation 'sign', got %q", err.Operation)
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		if Wrap(nil, "context") != nil {
			t.Errorf("Expected nil")
		}
	})

	t.Run("custom error keeps code", func(t *testing.T) {
		err := Wrap(NewTimeoutError("callview", time.Second, nil), "nonce lookup")
		if GetErrorCode(err) != CodeTimeout {
			t.Errorf("Expected code %q, got %q", CodeTimeout, GetErrorCode(err))
		}
		if !IsTimeout(err) {
			t.Errorf("Expected wrapped timeout to be detected")
		}
	})

	t.Run("standard error becomes internal", func(t *testing.T) {
		err := Wrap(errors.New("boom"), "step 3")
		if !IsInternal(err) {
			t.Errorf("Expected internal error")
		}
		if !strings.HasPrefix(err.Error(), "step 3") {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})
}

func TestStackTrace(t *testing.T) {
	err := NewInternalError("with stack", nil)
	if len(err.Stack()) == 0 {
		t.Fatalf("Expected captured stack")
	}
	if !strings.Contains(err.StackTrace(), "TestStackTrace") {
		t.Errorf("Expected stack trace to mention the test function")
	}
}

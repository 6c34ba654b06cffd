package errors

import "errors"

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsTransport checks if an error happened before the node produced a response.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr) || errors.Is(err, ErrUnavailable)
}

// IsTimeout checks if an error indicates a client-side timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, ErrTimeout)
}

// IsNonceResolution checks if an error comes from seeding the nonce cache.
func IsNonceResolution(err error) bool {
	if err == nil {
		return false
	}

	var nonceErr *NonceResolutionError
	return errors.As(err, &nonceErr)
}

// IsSigning checks if an error is a key or signature failure.
func IsSigning(err error) bool {
	if err == nil {
		return false
	}

	var signingErr *SigningError
	return errors.As(err, &signingErr)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}

	var internalErr *InternalError
	return errors.As(err, &internalErr) || errors.Is(err, ErrInternal)
}

// StatusCodeOf returns the HTTP status carried by a node error
// (view call, post or wait), or 0 if err is not one.
func StatusCodeOf(err error) int {
	var (
		viewErr *ViewCallError
		postErr *PostRequestError
		waitErr *WaitError
	)
	switch {
	case errors.As(err, &viewErr):
		return viewErr.StatusCode
	case errors.As(err, &postErr):
		return postErr.StatusCode
	case errors.As(err, &waitErr):
		return waitErr.StatusCode
	}
	return 0
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	switch {
	case IsTimeout(err):
		return CodeTimeout
	case IsTransport(err):
		return CodeUnavailable
	case IsValidation(err):
		return CodeValidation
	default:
		return CodeInternal
	}
}

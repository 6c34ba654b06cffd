package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes returned by the node where applicable.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled.
	CodeCancelled = "CANCELLED"

	// CodeUnknown indicates an unknown error occurred.
	CodeUnknown = "UNKNOWN"

	// CodeInvalidArgument indicates client specified an invalid argument.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeDeadlineExceeded indicates operation deadline was exceeded.
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeAlreadyExists indicates attempting to create a resource that already exists.
	CodeAlreadyExists = "ALREADY_EXISTS"

	// CodePermissionDenied indicates the caller doesn't have permission.
	CodePermissionDenied = "PERMISSION_DENIED"

	// CodeResourceExhausted indicates a resource has been exhausted.
	CodeResourceExhausted = "RESOURCE_EXHAUSTED"

	// CodeUnimplemented indicates operation is not implemented or not supported.
	CodeUnimplemented = "UNIMPLEMENTED"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeUnavailable indicates the node is currently unreachable.
	CodeUnavailable = "UNAVAILABLE"

	// CodeUnauthenticated indicates the request does not have valid authentication.
	CodeUnauthenticated = "UNAUTHENTICATED"

	// Domain-specific error codes

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeTimeout indicates a client-side deadline elapsed.
	CodeTimeout = "TIMEOUT"

	// CodeNonceResolution indicates the on-chain nonce could not be fetched.
	CodeNonceResolution = "NONCE_RESOLUTION_ERROR"

	// CodeCryptoError indicates a key or signature operation failed.
	CodeCryptoError = "CRYPTO_ERROR"

	// CodeSerializationError indicates serialization/deserialization failed.
	CodeSerializationError = "SERIALIZATION_ERROR"
)

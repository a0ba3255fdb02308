package apperror

import "fmt"

// Kind categorizes an error the way the agent's internal call sites need to
// react to it. None of these ever cross the public API boundary as a Go
// error value — every exported method absorbs them and falls back to a
// null-object result instead, per the host-application contract.
type Kind string

const (
	// KindInvalidArgument marks a call with a nil, empty, or out-of-range
	// argument (empty action name, negative duration, nil parent, ...).
	KindInvalidArgument Kind = "INVALID_ARGUMENT"

	// KindAlreadyClosed marks an operation attempted on an object whose
	// lifecycle has already ended (leave()'d action, end()'d session,
	// shutdown()'d OpenKit instance).
	KindAlreadyClosed Kind = "ALREADY_CLOSED"

	// KindPrivacyDenied marks data that the active PrivacyConfiguration
	// feature flags forbid collecting.
	KindPrivacyDenied Kind = "PRIVACY_DENIED"

	// KindCaptureDisabled marks data that server-side capture settings
	// (capture/captureErrors/captureCrashes) or traffic-control sampling
	// excluded from this session.
	KindCaptureDisabled Kind = "CAPTURE_DISABLED"

	// KindPayloadTooLarge marks a single record or event payload that
	// exceeds the protocol's size ceiling even after truncation.
	KindPayloadTooLarge Kind = "PAYLOAD_TOO_LARGE"

	// KindCacheFull marks a beacon cache that has hit its configured
	// upper-bound size and cannot accept more records until eviction runs.
	KindCacheFull Kind = "CACHE_FULL"

	// KindTransportError marks a failure to reach the collector (network
	// error, non-2xx/429 response, malformed status response).
	KindTransportError Kind = "TRANSPORT_ERROR"

	// KindShuttingDown marks an operation rejected because the OpenKit
	// instance is in the process of, or has finished, shutting down.
	KindShuttingDown Kind = "SHUTTING_DOWN"
)

// AppError is the internal error structure used across rumkit's components.
// It never reaches the public API: every exported method catches it at the
// boundary, logs it, and substitutes a null-object result.
type AppError struct {
	// Code is a machine-readable identifier (e.g. "ARG_EMPTY_NAME").
	Code string
	// Message is a human-readable explanation, written to the diagnostic log.
	Message string
	// Kind determines how the call site reacts (drop silently, retry, log).
	Kind Kind
	// Details holds additional debugging context.
	Details any
	// Err is the underlying error, if any.
	Err error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows AppError to work with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key-value debugging hint to the error.
func (e *AppError) WithDetail(key string, value any) *AppError {
	details, ok := e.Details.(map[string]any)
	if !ok || details == nil {
		details = make(map[string]any)
	}
	details[key] = value
	e.Details = details
	return e
}

// WithError wraps an existing error into the AppError context.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// IsRetryable reports whether the operation that produced this error might
// succeed if attempted again without changing its input. Only transport
// failures and a full cache (which drains on its own cadence) qualify.
func (e *AppError) IsRetryable() bool {
	return e.Kind == KindTransportError || e.Kind == KindCacheFull
}

// ToMap converts the AppError to a map for structured logging.
func (e *AppError) ToMap() map[string]any {
	return map[string]any{
		"code":         e.Code,
		"kind":         string(e.Kind),
		"is_retryable": e.IsRetryable(),
		"details":      e.Details,
	}
}

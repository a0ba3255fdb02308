package apperror

// New is the generic constructor for AppError.
func New(code, message string, kind Kind, err ...error) *AppError {
	appErr := &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
	if len(err) > 0 && err[0] != nil {
		appErr.Err = err[0]
	}
	return appErr
}

// NewInvalidArgument creates an error with KindInvalidArgument.
func NewInvalidArgument(code, message string, err ...error) *AppError {
	return New(code, message, KindInvalidArgument, err...)
}

// NewAlreadyClosed creates an error with KindAlreadyClosed.
func NewAlreadyClosed(code, message string, err ...error) *AppError {
	return New(code, message, KindAlreadyClosed, err...)
}

// NewPrivacyDenied creates an error with KindPrivacyDenied.
func NewPrivacyDenied(code, message string, err ...error) *AppError {
	return New(code, message, KindPrivacyDenied, err...)
}

// NewCaptureDisabled creates an error with KindCaptureDisabled.
func NewCaptureDisabled(code, message string, err ...error) *AppError {
	return New(code, message, KindCaptureDisabled, err...)
}

// NewPayloadTooLarge creates an error with KindPayloadTooLarge.
func NewPayloadTooLarge(code, message string, err ...error) *AppError {
	return New(code, message, KindPayloadTooLarge, err...)
}

// NewCacheFull creates an error with KindCacheFull.
func NewCacheFull(code, message string, err ...error) *AppError {
	return New(code, message, KindCacheFull, err...)
}

// NewTransportError creates an error with KindTransportError.
func NewTransportError(code, message string, err ...error) *AppError {
	return New(code, message, KindTransportError, err...)
}

// NewShuttingDown creates an error with KindShuttingDown.
func NewShuttingDown(code, message string, err ...error) *AppError {
	return New(code, message, KindShuttingDown, err...)
}

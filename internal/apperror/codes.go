package apperror

// Argument validation codes.
const (
	CodeEmptyName       = "ARG_EMPTY_NAME"
	CodeNilParent       = "ARG_NIL_PARENT"
	CodeInvalidDuration = "ARG_INVALID_DURATION"
	CodeInvalidURL      = "ARG_INVALID_URL"
	CodeInvalidAppID    = "ARG_INVALID_APP_ID"
	CodeInvalidEndpoint = "ARG_INVALID_ENDPOINT"
)

// Lifecycle codes.
const (
	CodeActionAlreadyLeft    = "LIFECYCLE_ACTION_ALREADY_LEFT"
	CodeSessionAlreadyEnded  = "LIFECYCLE_SESSION_ALREADY_ENDED"
	CodeOpenKitAlreadyClosed = "LIFECYCLE_OPENKIT_ALREADY_CLOSED"
	CodeTracerAlreadyStopped = "LIFECYCLE_TRACER_ALREADY_STOPPED"
)

// Privacy/capture gating codes.
const (
	CodeDataCollectionOff   = "PRIVACY_DATA_COLLECTION_OFF"
	CodeSessionTrackingOff  = "PRIVACY_SESSION_TRACKING_OFF"
	CodeCrashReportingOff   = "PRIVACY_CRASH_REPORTING_OFF"
	CodeErrorReportingOff   = "PRIVACY_ERROR_REPORTING_OFF"
	CodeServerCaptureOff    = "CAPTURE_SERVER_DISABLED"
	CodeServerCaptureErrOff = "CAPTURE_SERVER_ERRORS_DISABLED"
	CodeTrafficControlled   = "CAPTURE_TRAFFIC_CONTROL_EXCLUDED"
)

// Protocol/cache codes.
const (
	CodePayloadExceeds16K = "PROTOCOL_PAYLOAD_EXCEEDS_LIMIT"
	CodeCacheAtCapacity   = "CACHE_AT_CAPACITY"
)

// Transport codes.
const (
	CodeCollectorUnreachable  = "TRANSPORT_COLLECTOR_UNREACHABLE"
	CodeNon2xxResponse        = "TRANSPORT_NON_2XX_RESPONSE"
	CodeMalformedStatusResp   = "TRANSPORT_MALFORMED_STATUS_RESPONSE"
	CodeTooManyRequestsServer = "TRANSPORT_429_BACKOFF"
)

// Shutdown codes.
const (
	CodeShutdownInProgress = "SHUTDOWN_IN_PROGRESS"
)

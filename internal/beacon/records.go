package beacon

import (
	"strconv"
	"strings"

	"github.com/voyago/rumkit/internal/apperror"
	"github.com/voyago/rumkit/internal/protocol"
)

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperror.NewInvalidArgument(apperror.CodeEmptyName, "name must not be empty")
	}
	return protocol.TruncateName(trimmed), nil
}

func buildRecord(pairs ...string) string {
	return strings.Join(pairs, "&")
}

// AddAction appends an ACTION record for a left (committed) action; canceled
// actions never reach it.
func (b *Beacon) AddAction(actionID, parentActionID int32, name string, startSeq, endSeq int32, startTimeMs, endTimeMs int64) error {
	if !b.privacy.IsActionReportingAllowed() {
		return apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "action reporting denied by privacy policy")
	}
	if !b.dataCaptureAllowed() {
		return apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "action capture disabled by server or traffic control")
	}

	truncated, err := validateName(name)
	if err != nil {
		return err
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeAction)),
		protocol.FormatKV(protocol.KeyName, truncated),
		protocol.FormatKVInt(protocol.KeyActionID, int64(actionID)),
		protocol.FormatKVInt(protocol.KeyParentActionID, int64(parentActionID)),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(startSeq)),
		protocol.FormatKVInt(protocol.KeyStartTime, startTimeMs),
		protocol.FormatKVInt(protocol.KeyEndSequenceNo, int64(endSeq)),
		protocol.FormatKVInt(protocol.KeyEndTime, endTimeMs-startTimeMs),
		protocol.FormatKVInt(protocol.KeyThreadID, int64(b.threads.ThreadID())),
	)
	// The cache bookkeeping timestamp is the wall clock the record was
	// appended at, consistent with every other record category; endTimeMs
	// is session-relative and only meaningful inside the serialized record.
	b.cache.AddActionData(b.key, b.timing.TimestampMillis(), record)
	return nil
}

// ReportValueInt reports an integer value on actionID.
func (b *Beacon) ReportValueInt(actionID int32, name string, value int64) error {
	return b.reportValue(actionID, name, protocol.EventTypeValueInt, protocol.FormatKVInt(protocol.KeyValue, value))
}

// ReportValueDouble reports a floating-point value on actionID.
func (b *Beacon) ReportValueDouble(actionID int32, name string, value float64) error {
	return b.reportValue(actionID, name, protocol.EventTypeValueDouble, protocol.FormatKV(protocol.KeyValue, strconv.FormatFloat(value, 'f', -1, 64)))
}

// ReportValueString reports a string value on actionID.
func (b *Beacon) ReportValueString(actionID int32, name string, value string) error {
	return b.reportValueEncoded(actionID, name, protocol.EventTypeValueString, value)
}

func (b *Beacon) reportValue(actionID int32, name string, eventType protocol.EventType, rawValue string) error {
	ts, record, err := b.buildValueRecord(actionID, name, eventType, rawValue)
	if err != nil {
		return err
	}
	b.cache.AddEventData(b.key, ts, record)
	return nil
}

func (b *Beacon) reportValueEncoded(actionID int32, name string, eventType protocol.EventType, value string) error {
	return b.reportValue(actionID, name, eventType, protocol.FormatKV(protocol.KeyValue, value))
}

func (b *Beacon) buildValueRecord(actionID int32, name string, eventType protocol.EventType, rawValue string) (int64, string, error) {
	if !b.privacy.IsValueReportingAllowed() {
		return 0, "", apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "value reporting denied by privacy policy")
	}
	if !b.dataCaptureAllowed() {
		return 0, "", apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "value capture disabled")
	}
	truncated, err := validateName(name)
	if err != nil {
		return 0, "", err
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(eventType)),
		protocol.FormatKV(protocol.KeyName, truncated),
		protocol.FormatKVInt(protocol.KeyParentActionID, int64(actionID)),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
		rawValue,
	)
	return b.timing.TimestampMillis(), record, nil
}

// DeferValueInt runs the same checks as ReportValueInt but returns the
// built record instead of appending it, so a composite node can buffer it
// pending its own leave/cancel decision (see AppendEventRecord).
func (b *Beacon) DeferValueInt(actionID int32, name string, value int64) (int64, string, error) {
	return b.buildValueRecord(actionID, name, protocol.EventTypeValueInt, protocol.FormatKVInt(protocol.KeyValue, value))
}

// DeferValueDouble is the deferred counterpart of ReportValueDouble.
func (b *Beacon) DeferValueDouble(actionID int32, name string, value float64) (int64, string, error) {
	return b.buildValueRecord(actionID, name, protocol.EventTypeValueDouble, protocol.FormatKV(protocol.KeyValue, strconv.FormatFloat(value, 'f', -1, 64)))
}

// DeferValueString is the deferred counterpart of ReportValueString.
func (b *Beacon) DeferValueString(actionID int32, name string, value string) (int64, string, error) {
	return b.buildValueRecord(actionID, name, protocol.EventTypeValueString, protocol.FormatKV(protocol.KeyValue, value))
}

// ReportEvent reports a named event on actionID.
func (b *Beacon) ReportEvent(actionID int32, name string) error {
	ts, record, err := b.buildEventRecord(actionID, name)
	if err != nil {
		return err
	}
	b.cache.AddEventData(b.key, ts, record)
	return nil
}

// DeferEvent is the deferred counterpart of ReportEvent.
func (b *Beacon) DeferEvent(actionID int32, name string) (int64, string, error) {
	return b.buildEventRecord(actionID, name)
}

func (b *Beacon) buildEventRecord(actionID int32, name string) (int64, string, error) {
	if !b.privacy.IsEventReportingAllowed() {
		return 0, "", apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "event reporting denied by privacy policy")
	}
	if !b.dataCaptureAllowed() {
		return 0, "", apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "event capture disabled")
	}
	truncated, err := validateName(name)
	if err != nil {
		return 0, "", err
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeNamedEvent)),
		protocol.FormatKV(protocol.KeyName, truncated),
		protocol.FormatKVInt(protocol.KeyParentActionID, int64(actionID)),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
	)
	return b.timing.TimestampMillis(), record, nil
}

// ReportError reports a simple error code on actionID.
func (b *Beacon) ReportError(actionID int32, name string, errorCode int32) error {
	ts, record, err := b.buildErrorRecord(actionID, name, errorCode, "", "", "")
	if err != nil {
		return err
	}
	b.cache.AddEventData(b.key, ts, record)
	return nil
}

// ReportErrorWithCause reports an error with a cause chain.
func (b *Beacon) ReportErrorWithCause(actionID int32, name, causeName, causeDescription, causeStackTrace string) error {
	ts, record, err := b.buildErrorRecord(actionID, name, 0, causeName, causeDescription, causeStackTrace)
	if err != nil {
		return err
	}
	b.cache.AddEventData(b.key, ts, record)
	return nil
}

// DeferError is the deferred counterpart of ReportError.
func (b *Beacon) DeferError(actionID int32, name string, errorCode int32) (int64, string, error) {
	return b.buildErrorRecord(actionID, name, errorCode, "", "", "")
}

func (b *Beacon) buildErrorRecord(actionID int32, name string, errorCode int32, causeName, causeDescription, causeStackTrace string) (int64, string, error) {
	if !b.privacy.IsErrorReportingAllowed() {
		return 0, "", apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "error reporting denied by privacy policy")
	}
	if !b.errorCaptureAllowed() {
		return 0, "", apperror.NewCaptureDisabled(apperror.CodeServerCaptureErrOff, "error capture disabled")
	}
	truncated, err := validateName(name)
	if err != nil {
		return 0, "", err
	}

	pairs := []string{
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeError)),
		protocol.FormatKV(protocol.KeyName, truncated),
		protocol.FormatKVInt(protocol.KeyParentActionID, int64(actionID)),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
		protocol.FormatKVInt(protocol.KeyErrorValue, int64(errorCode)),
	}
	if causeDescription != "" || causeStackTrace != "" {
		pairs = append(pairs,
			protocol.FormatKV(protocol.KeyReason, protocol.TruncateReason(causeDescription)),
			protocol.FormatKV(protocol.KeyStackTrace, protocol.TruncateStackTrace(causeStackTrace)),
		)
	}

	return b.timing.TimestampMillis(), buildRecord(pairs...), nil
}

// AppendEventRecord appends a pre-built event-category record directly,
// bypassing the gating checks. Used by composite nodes to flush records
// buffered via the Defer* methods once a leave commits them.
func (b *Beacon) AppendEventRecord(tsMs int64, record string) {
	b.cache.AddEventData(b.key, tsMs, record)
}

// ReportCrash reports a fatal crash for the session.
func (b *Beacon) ReportCrash(name, reason, stacktrace string) error {
	if !b.privacy.IsCrashReportingAllowed() {
		return apperror.NewPrivacyDenied(apperror.CodeCrashReportingOff, "crash reporting denied by privacy policy")
	}
	if !b.crashCaptureAllowed() {
		return apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "crash capture disabled")
	}
	truncated, err := validateName(name)
	if err != nil {
		return err
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeCrash)),
		protocol.FormatKV(protocol.KeyName, truncated),
		protocol.FormatKVInt(protocol.KeyParentActionID, 0),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
		protocol.FormatKV(protocol.KeyReason, protocol.TruncateReason(reason)),
		protocol.FormatKV(protocol.KeyStackTrace, protocol.TruncateStackTrace(stacktrace)),
	)
	b.cache.AddEventData(b.key, b.timing.TimestampMillis(), record)
	return nil
}

// IdentifyUser records the user tag for this session.
func (b *Beacon) IdentifyUser(tag string) error {
	if !b.privacy.IsUserIdentificationAllowed() {
		return apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "user identification denied by privacy policy")
	}
	if !b.dataCaptureAllowed() {
		return apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "user identification capture disabled")
	}
	truncated, err := validateName(tag)
	if err != nil {
		return err
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeIdentifyUser)),
		protocol.FormatKV(protocol.KeyName, truncated),
		protocol.FormatKVInt(protocol.KeyParentActionID, 0),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
	)
	b.cache.AddEventData(b.key, b.timing.TimestampMillis(), record)
	return nil
}

// AddWebRequest appends a WEB_REQUEST record describing one traced call.
func (b *Beacon) AddWebRequest(parentActionID int32, url string, startSeq, endSeq int32, bytesSent, bytesReceived int, responseCode int) error {
	ts, record, err := b.buildWebRequestRecord(parentActionID, url, startSeq, endSeq, bytesSent, bytesReceived, responseCode)
	if err != nil {
		return err
	}
	b.cache.AddEventData(b.key, ts, record)
	return nil
}

// DeferWebRequest is the deferred counterpart of AddWebRequest.
func (b *Beacon) DeferWebRequest(parentActionID int32, url string, startSeq, endSeq int32, bytesSent, bytesReceived int, responseCode int) (int64, string, error) {
	return b.buildWebRequestRecord(parentActionID, url, startSeq, endSeq, bytesSent, bytesReceived, responseCode)
}

func (b *Beacon) buildWebRequestRecord(parentActionID int32, url string, startSeq, endSeq int32, bytesSent, bytesReceived int, responseCode int) (int64, string, error) {
	if !b.privacy.IsWebRequestTracingAllowed() {
		return 0, "", apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "web request tracing denied by privacy policy")
	}
	if !b.dataCaptureAllowed() {
		return 0, "", apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "web request capture disabled")
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeWebRequest)),
		protocol.FormatKV(protocol.KeyName, protocol.TruncateName(url)),
		protocol.FormatKVInt(protocol.KeyParentActionID, int64(parentActionID)),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(startSeq)),
		protocol.FormatKVInt(protocol.KeyEndSequenceNo, int64(endSeq)),
		protocol.FormatKVInt(protocol.KeyBytesSent, int64(bytesSent)),
		protocol.FormatKVInt(protocol.KeyBytesReceived, int64(bytesReceived)),
		protocol.FormatKVInt(protocol.KeyResponseCode, int64(responseCode)),
	)
	return b.timing.TimestampMillis(), record, nil
}

// StartSession appends the SESSION_START record, if session reporting is
// allowed; called once when a session is constructed.
func (b *Beacon) StartSession() {
	if !b.privacy.IsSessionReportingAllowed() {
		return
	}
	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeSessionStart)),
		protocol.FormatKVInt(protocol.KeyParentActionID, 0),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
	)
	b.cache.AddEventData(b.key, b.timing.TimestampMillis(), record)
}

// EndSession appends the SESSION_END record, if session reporting is allowed.
func (b *Beacon) EndSession() error {
	if !b.privacy.IsSessionReportingAllowed() {
		return apperror.NewPrivacyDenied(apperror.CodeSessionTrackingOff, "session reporting denied by privacy policy")
	}
	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeSessionEnd)),
		protocol.FormatKVInt(protocol.KeyParentActionID, 0),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
	)
	b.cache.AddEventData(b.key, b.timing.TimestampMillis(), record)
	return nil
}

// SendEvent appends an EVENT record carrying a sendEvent JSON payload.
func (b *Beacon) SendEvent(name string, attrs map[string]any, instanceID, sessionTag string) error {
	return b.sendEventPayload(name, attrs, instanceID, sessionTag, false)
}

// SendBizEvent appends an EVENT record carrying a sendBizEvent JSON payload.
func (b *Beacon) SendBizEvent(eventType string, attrs map[string]any, instanceID, sessionTag string) error {
	return b.sendEventPayload(eventType, attrs, instanceID, sessionTag, true)
}

func (b *Beacon) sendEventPayload(nameOrType string, attrs map[string]any, instanceID, sessionTag string, isBiz bool) error {
	if !b.privacy.IsEventReportingAllowed() {
		return apperror.NewPrivacyDenied(apperror.CodeDataCollectionOff, "event reporting denied by privacy policy")
	}
	if !b.dataCaptureAllowed() {
		return apperror.NewCaptureDisabled(apperror.CodeServerCaptureOff, "event capture disabled")
	}
	trimmed := strings.TrimSpace(nameOrType)
	if trimmed == "" {
		return apperror.NewInvalidArgument(apperror.CodeEmptyName, "event name/type must not be empty")
	}

	payload, err := protocol.BuildEventPayload(attrs, protocol.EventEnvelopeParams{
		ApplicationID:   b.openKitConfig.ApplicationID,
		InstanceID:      instanceID,
		SessionTag:      sessionTag,
		IsBizEvent:      isBiz,
		EventNameOrType: trimmed,
		TimestampNanos:  b.timing.TimestampNanos(),
		OS:              b.openKitConfig.OperatingSystem,
		Manufacturer:    b.openKitConfig.Manufacturer,
		ModelID:         b.openKitConfig.ModelID,
		AppVersion:      b.openKitConfig.ApplicationVersion,
	})
	if err != nil {
		return err
	}

	record := buildRecord(
		protocol.FormatKVInt(protocol.KeyEventType, int64(protocol.EventTypeEvent)),
		protocol.FormatKVInt(protocol.KeyParentActionID, 0),
		protocol.FormatKVInt(protocol.KeyStartSequenceNo, int64(b.NextSequenceNumber())),
		protocol.FormatKVInt(protocol.KeyStartTime, b.CurrentTimestampMs()),
		protocol.FormatKV(protocol.KeyPayload, payload),
	)
	b.cache.AddEventData(b.key, b.timing.TimestampMillis(), record)
	return nil
}

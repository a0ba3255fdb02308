// Package protocol implements the Dynatrace-collector wire format: the
// ASCII key=value beacon record syntax, event-type codes, tag encoding for
// web-request correlation, the sendEvent/sendBizEvent JSON envelope, and
// the HTTP adapter that exchanges beacon chunks and new-session requests
// with the collector.
package protocol

// Wire keys, two-letter codes per the collector's beacon grammar.
const (
	KeyProtocolVersion = "vv"
	KeyAgentVersion     = "va"
	KeyApplicationID    = "ap"
	KeyAppVersion       = "vn"
	KeyPlatformType     = "pt"
	KeyAgentTechType    = "tt"
	KeyVisitorID        = "vi"
	KeySessionNumber    = "sn"
	KeySessionSequence  = "ss"
	KeyClientIP         = "ip"
	KeyMultiplicity     = "mp"
	KeyDataCollectionLv = "dl"
	KeyCrashReportingLv = "cl"
	KeyVisitStoreVer    = "vs"

	KeyConnectionType  = "ct"
	KeyNetworkTech     = "np"
	KeyCarrier         = "cr"
	KeyOS              = "os"
	KeyManufacturer    = "mf"
	KeyModel           = "md"
	KeySessionStartMs  = "tv"
	KeyTransmissionMs  = "tx"

	KeyEventType        = "et"
	KeyName             = "na"
	KeyThreadID         = "it"
	KeyActionID         = "ca"
	KeyParentActionID   = "pa"
	KeyStartSequenceNo  = "s0"
	KeyEndSequenceNo    = "s1"
	KeyStartTime        = "t0"
	KeyEndTime          = "t1"
	KeyValue            = "vl"
	KeyErrorValue       = "ev"
	KeyReason           = "rs"
	KeyStackTrace       = "st"
	KeyResponseCode     = "rc"
	KeyBytesSent        = "bs"
	KeyBytesReceived    = "br"
	KeyPayload          = "pl"
)

// EventType is the integer code stored in the "et" wire field.
type EventType int

const (
	EventTypeAction      EventType = 1
	EventTypeValueString EventType = 4
	EventTypeValueInt    EventType = 10
	EventTypeValueDouble EventType = 11
	EventTypeNamedEvent  EventType = 12
	EventTypeSessionStart EventType = 18
	EventTypeSessionEnd  EventType = 19
	EventTypeWebRequest  EventType = 30
	EventTypeError       EventType = 40
	EventTypeException   EventType = 42
	EventTypeCrash       EventType = 50
	EventTypeIdentifyUser EventType = 60
	EventTypeEvent       EventType = 98
)

// Truncation limits, §4.1.
const (
	MaxNameLength       = 250
	MaxReasonLength     = 1000
	MaxStackTraceLength = 128000
	MaxEventPayloadBytes = 16 * 1024
)

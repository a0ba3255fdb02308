package protocol

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/voyago/rumkit/internal/apperror"
)

// EventEnvelopeParams carries the fields forced into every sendEvent /
// sendBizEvent JSON payload, on top of whatever attributes the caller supplied.
type EventEnvelopeParams struct {
	ApplicationID string
	InstanceID    string
	SessionTag    string
	IsBizEvent    bool
	EventNameOrType string
	TimestampNanos int64
	OS              string
	Manufacturer    string
	ModelID         string
	AppVersion      string
}

const schemaVersion = "1.2"

// reservedPrefix is stripped from caller-supplied attributes before the
// forced attributes are reinstated, preventing the host application from
// spoofing agent-owned metadata.
const reservedPrefix = "dt."

// BuildEventPayload assembles the JSON object for an sendEvent/sendBizEvent
// record. attrs is the caller-supplied attribute map. The result is
// guaranteed UTF-8 and MUST be checked against MaxEventPayloadBytes by the
// caller (returned as an error here for convenience).
func BuildEventPayload(attrs map[string]any, p EventEnvelopeParams) (string, error) {
	cleaned := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if strings.HasPrefix(k, reservedPrefix) {
			continue
		}
		cleaned[k] = v
	}

	hasNonFinite := containsNonFinite(cleaned)
	if hasNonFinite {
		sanitizeNonFinite(cleaned)
	}

	if p.IsBizEvent {
		cleaned["event.type"] = p.EventNameOrType
	} else {
		cleaned["event.name"] = p.EventNameOrType
	}
	cleaned["event.kind"] = eventKind(p.IsBizEvent)
	cleaned["dt.rum.application.id"] = p.ApplicationID
	cleaned["dt.rum.instance.id"] = p.InstanceID
	cleaned["dt.rum.sid"] = p.SessionTag
	cleaned["dt.rum.schema_version"] = schemaVersion
	cleaned["timestamp"] = p.TimestampNanos
	if p.OS != "" {
		cleaned["os"] = p.OS
	}
	if p.Manufacturer != "" {
		cleaned["manufacturer"] = p.Manufacturer
	}
	if p.ModelID != "" {
		cleaned["model_id"] = p.ModelID
	}
	if p.AppVersion != "" {
		cleaned["app_version"] = p.AppVersion
	}
	if hasNonFinite {
		cleaned["dt.rum.has_nfn_values"] = true
	}

	out, err := json.Marshal(cleaned)
	if err != nil {
		return "", apperror.New(apperror.CodePayloadExceeds16K, "failed to marshal event payload", apperror.KindPayloadTooLarge, err)
	}
	if len(out) > MaxEventPayloadBytes {
		return "", apperror.NewPayloadTooLarge(apperror.CodePayloadExceeds16K, "event payload exceeds 16KiB limit")
	}
	return string(out), nil
}

func eventKind(isBiz bool) string {
	if isBiz {
		return "BIZ_EVENT"
	}
	return "RUM_EVENT"
}

// sanitizeNonFinite replaces NaN/Inf floats with nil in place, since
// encoding/json refuses to marshal them; their presence is instead recorded
// via the dt.rum.has_nfn_values flag.
func sanitizeNonFinite(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				m[k] = nil
			}
		case float32:
			if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
				m[k] = nil
			}
		case map[string]any:
			sanitizeNonFinite(t)
		case []any:
			sanitizeNonFiniteSlice(t)
		}
	}
}

func sanitizeNonFiniteSlice(s []any) {
	for i, v := range s {
		switch t := v.(type) {
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				s[i] = nil
			}
		case float32:
			if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
				s[i] = nil
			}
		case map[string]any:
			sanitizeNonFinite(t)
		case []any:
			sanitizeNonFiniteSlice(t)
		}
	}
}

func containsNonFinite(v any) bool {
	switch t := v.(type) {
	case float64:
		return math.IsNaN(t) || math.IsInf(t, 0)
	case float32:
		return math.IsNaN(float64(t)) || math.IsInf(float64(t), 0)
	case map[string]any:
		for _, vv := range t {
			if containsNonFinite(vv) {
				return true
			}
		}
	case []any:
		for _, vv := range t {
			if containsNonFinite(vv) {
				return true
			}
		}
	}
	return false
}

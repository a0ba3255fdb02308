package protocol

import (
	"net/url"
	"strconv"
	"strings"
)

// PercentEncode escapes s for use as a beacon record value: standard
// percent-encoding plus the protocol's additional reserved character `_`,
// which would otherwise collide with the separators some collector
// versions use internally.
func PercentEncode(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "_", "%5F")
	// url.QueryEscape encodes space as "+"; the wire format expects %20.
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return escaped
}

// TruncateName trims whitespace then truncates to MaxNameLength runes,
// applying to action, value, and event names alike.
func TruncateName(name string) string {
	trimmed := strings.TrimSpace(name)
	return truncateRunes(trimmed, MaxNameLength)
}

// TruncateReason truncates an error reason to MaxReasonLength runes.
func TruncateReason(reason string) string {
	return truncateRunes(reason, MaxReasonLength)
}

// TruncateStackTrace truncates a stack trace to MaxStackTraceLength runes,
// preferring to cut at the last newline at or before the limit so the
// result never ends mid-line. Per the resolved open question, the newline
// itself is excluded from the result.
func TruncateStackTrace(trace string) string {
	runes := []rune(trace)
	if len(runes) <= MaxStackTraceLength {
		return trace
	}

	window := string(runes[:MaxStackTraceLength])
	if idx := strings.LastIndexByte(window, '\n'); idx >= 0 {
		return window[:idx]
	}
	return window
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FormatKV renders one key=value pair with the value percent-encoded.
func FormatKV(key, value string) string {
	return key + "=" + PercentEncode(value)
}

// FormatKVInt renders one key=value pair for an integer value (no encoding needed).
func FormatKVInt(key string, value int64) string {
	return key + "=" + strconv.FormatInt(value, 10)
}

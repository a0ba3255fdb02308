package config

import "sync/atomic"

// ServerConfiguration holds the capture/sampling policy the collector
// returns on the new-session GET and on every beacon POST response. It is
// replaced wholesale (copy-on-write) whenever a fresher response arrives,
// so readers never observe a torn mix of old and new fields.
type ServerConfiguration struct {
	CaptureEnabled        bool
	CaptureErrorsEnabled  bool
	CaptureCrashesEnabled bool

	BeaconSizeBytes int

	ServerID int32

	TrafficControlPercentage int

	SendIntervalMs int64

	Multiplicity int32

	SessionSplitByEventsEnabled bool
	MaxSessionDurationMs        int64
	SessionTimeoutMs            int64

	VisitStoreVersion int32
}

// DefaultServerConfiguration is used before the first collector response is
// received: capture is optimistically enabled, traffic control passes
// everything, and visit-store-version is 1 (no split tagging).
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		CaptureEnabled:           true,
		CaptureErrorsEnabled:     true,
		CaptureCrashesEnabled:    true,
		BeaconSizeBytes:          150 * 1024,
		TrafficControlPercentage: 100,
		SendIntervalMs:           2000,
		Multiplicity:             1,
		MaxSessionDurationMs:     0,
		SessionTimeoutMs:         600_000,
		VisitStoreVersion:        1,
	}
}

// Merge returns a new ServerConfiguration that takes this configuration as
// a base and overlays every field present in the response, per the "merge
// on top of existing" rule for beacon POST responses (the new-session GET
// instead fully replaces, since there is no existing state to preserve).
func (c *ServerConfiguration) Merge(update *ServerConfiguration) *ServerConfiguration {
	if c == nil {
		return update
	}
	merged := *c
	merged.CaptureEnabled = update.CaptureEnabled
	merged.CaptureErrorsEnabled = update.CaptureErrorsEnabled
	merged.CaptureCrashesEnabled = update.CaptureCrashesEnabled
	if update.BeaconSizeBytes > 0 {
		merged.BeaconSizeBytes = update.BeaconSizeBytes
	}
	if update.ServerID != 0 {
		merged.ServerID = update.ServerID
	}
	merged.TrafficControlPercentage = update.TrafficControlPercentage
	if update.SendIntervalMs > 0 {
		merged.SendIntervalMs = update.SendIntervalMs
	}
	if update.Multiplicity > 0 {
		merged.Multiplicity = update.Multiplicity
	}
	merged.SessionSplitByEventsEnabled = update.SessionSplitByEventsEnabled
	if update.MaxSessionDurationMs > 0 {
		merged.MaxSessionDurationMs = update.MaxSessionDurationMs
	}
	if update.SessionTimeoutMs > 0 {
		merged.SessionTimeoutMs = update.SessionTimeoutMs
	}
	if update.VisitStoreVersion > 0 {
		merged.VisitStoreVersion = update.VisitStoreVersion
	}
	return &merged
}

// ServerConfigurationHolder provides copy-on-write atomic access to the
// current ServerConfiguration, so beacon writers never block on, or see a
// half-updated view of, a concurrently arriving collector response.
type ServerConfigurationHolder struct {
	ptr atomic.Pointer[ServerConfiguration]
}

// NewServerConfigurationHolder seeds the holder with DefaultServerConfiguration.
func NewServerConfigurationHolder() *ServerConfigurationHolder {
	h := &ServerConfigurationHolder{}
	h.ptr.Store(DefaultServerConfiguration())
	return h
}

func (h *ServerConfigurationHolder) Get() *ServerConfiguration {
	return h.ptr.Load()
}

// Replace installs the new-session response wholesale.
func (h *ServerConfigurationHolder) Replace(cfg *ServerConfiguration) {
	h.ptr.Store(cfg)
}

// MergeUpdate overlays a beacon POST response onto the current configuration.
func (h *ServerConfigurationHolder) MergeUpdate(update *ServerConfiguration) {
	for {
		current := h.ptr.Load()
		merged := current.Merge(update)
		if h.ptr.CompareAndSwap(current, merged) {
			return
		}
	}
}

package config

// OpenKitConfiguration holds the immutable settings supplied by the host
// application at construction time. Unlike PrivacyConfiguration and
// ServerConfiguration, none of these values change after NewOpenKit returns.
type OpenKitConfiguration struct {
	ApplicationID      string
	ApplicationName    string
	ApplicationVersion string
	DeviceID           int64
	OperatingSystem    string
	Manufacturer       string
	ModelID            string

	// DefaultServerID is used for the first beacon tag before any
	// server-assigned id has been received.
	DefaultServerID int32
}

// AgentTechnologyType identifies this implementation to the collector; it
// occupies the wire field "tt" in the immutable prefix.
const AgentTechnologyType = "okgo"

// AgentVersion is the agent implementation's own version string, reported
// in the "va" wire field. It is independent of ApplicationVersion, which is
// the host application's own version.
const AgentVersion = "1.0.0"

// PlatformTypeOpenKit is the fixed "pt" wire value for OpenKit-derived agents.
const PlatformTypeOpenKit = 1

// ProtocolVersion is the wire protocol version reported in "vv" and embedded
// in generated tags.
const ProtocolVersion = 3

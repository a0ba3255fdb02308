package beacon

import (
	"github.com/voyago/rumkit/internal/config"
	"github.com/voyago/rumkit/internal/protocol"
)

// ImmutablePrefix builds the per-Beacon prefix that never changes across
// sends: vv,va,ap,vn,pt,tt,vi,sn,ip?,os?,mf?,md?,dl,cl.
func (b *Beacon) ImmutablePrefix() string {
	parts := []string{
		protocol.FormatKVInt(protocol.KeyProtocolVersion, config.ProtocolVersion),
		protocol.FormatKV(protocol.KeyAgentVersion, config.AgentVersion),
		protocol.FormatKV(protocol.KeyApplicationID, b.openKitConfig.ApplicationID),
		protocol.FormatKV(protocol.KeyAppVersion, b.openKitConfig.ApplicationVersion),
		protocol.FormatKVInt(protocol.KeyPlatformType, config.PlatformTypeOpenKit),
		protocol.FormatKV(protocol.KeyAgentTechType, config.AgentTechnologyType),
		protocol.FormatKVInt(protocol.KeyVisitorID, b.effectiveDeviceID),
		protocol.FormatKVInt(protocol.KeySessionNumber, int64(b.key.SessionNumber)),
	}
	if b.clientIP != "" {
		parts = append(parts, protocol.FormatKV(protocol.KeyClientIP, b.clientIP))
	}
	if b.openKitConfig.OperatingSystem != "" {
		parts = append(parts, protocol.FormatKV(protocol.KeyOS, b.openKitConfig.OperatingSystem))
	}
	if b.openKitConfig.Manufacturer != "" {
		parts = append(parts, protocol.FormatKV(protocol.KeyManufacturer, b.openKitConfig.Manufacturer))
	}
	if b.openKitConfig.ModelID != "" {
		parts = append(parts, protocol.FormatKV(protocol.KeyModel, b.openKitConfig.ModelID))
	}
	parts = append(parts,
		protocol.FormatKVInt(protocol.KeyDataCollectionLv, int64(b.privacy.DataCollectionLevel())),
		protocol.FormatKVInt(protocol.KeyCrashReportingLv, crashLevelWireValue(b)),
	)
	return joinAmp(parts)
}

func crashLevelWireValue(b *Beacon) int64 {
	if b.privacy.IsCrashReportingAllowed() {
		return 2
	}
	return 0
}

// MutablePrefix builds the prefix rebuilt on every send attempt: vs,
// ss (only when the visit-store version is above 1), tx, tv and mp. The
// network technology (np), carrier (cr) and connection type (ct) fields are
// not emitted.
func (b *Beacon) MutablePrefix(sessionStartMs, nowMs int64) string {
	cfg := b.serverConfig.Get()

	parts := []string{
		protocol.FormatKVInt(protocol.KeyVisitStoreVer, int64(cfg.VisitStoreVersion)),
	}
	if cfg.VisitStoreVersion > 1 {
		parts = append(parts, protocol.FormatKVInt(protocol.KeySessionSequence, int64(b.key.SessionSequence)))
	}
	parts = append(parts,
		protocol.FormatKVInt(protocol.KeyTransmissionMs, nowMs),
		protocol.FormatKVInt(protocol.KeySessionStartMs, sessionStartMs),
		protocol.FormatKVInt(protocol.KeyMultiplicity, int64(cfg.Multiplicity)),
	)
	return joinAmp(parts)
}

func joinAmp(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "&"
		}
		out += p
	}
	return out
}

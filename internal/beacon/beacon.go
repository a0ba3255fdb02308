// Package beacon is the single authority that turns a semantic call
// ("report value X on action Y") into a wire record: it applies the
// privacy and capture gates, advances the session's id/sequence counters,
// serializes the record, and appends it to the shared beacon cache.
package beacon

import (
	"fmt"

	"github.com/voyago/rumkit/internal/cache"
	"github.com/voyago/rumkit/internal/config"
	"github.com/voyago/rumkit/internal/logger"
	"github.com/voyago/rumkit/internal/protocol"
	"github.com/voyago/rumkit/internal/providers"
)

// Beacon owns one Session-sequence's id/sequence generators, its stable
// device id, and its once-per-session traffic-control sample. It is shared
// by every composite node in that session's subtree.
type Beacon struct {
	openKitConfig *config.OpenKitConfiguration
	httpConfig    *config.HTTPConfiguration
	privacy       *config.PrivacyConfiguration
	serverConfig  *config.ServerConfigurationHolder
	cache         *cache.BeaconCache
	timing        providers.TimingProvider
	threads       providers.ThreadIDProvider
	ids           providers.SequenceNumberProvider
	sequences     providers.SequenceNumberProvider
	log           logger.Logger

	key cache.Key

	// effectiveDeviceID is either the configured device id or a per-session
	// random substitute when device-id sending is privacy-denied.
	effectiveDeviceID int64

	// trafficControlValue is drawn once per Session, per §3.
	trafficControlValue int

	clientIP string
}

// New constructs a Beacon for one session-sequence.
func New(
	openKitConfig *config.OpenKitConfiguration,
	httpConfig *config.HTTPConfiguration,
	privacy *config.PrivacyConfiguration,
	serverConfig *config.ServerConfigurationHolder,
	beaconCache *cache.BeaconCache,
	timing providers.TimingProvider,
	threads providers.ThreadIDProvider,
	random providers.RandomProvider,
	sessionNumber, sessionSequence int32,
	clientIP string,
	log logger.Logger,
) *Beacon {
	deviceID := openKitConfig.DeviceID
	if !privacy.IsDeviceIDSendingAllowed() {
		deviceID = random.NextDeviceID()
	}

	return &Beacon{
		openKitConfig:        openKitConfig,
		httpConfig:           httpConfig,
		privacy:              privacy,
		serverConfig:         serverConfig,
		cache:                beaconCache,
		timing:               timing,
		threads:              threads,
		ids:                  providers.NewSequenceNumberProvider(),
		sequences:            providers.NewSequenceNumberProvider(),
		log:                  log,
		key:                  cache.Key{SessionNumber: sessionNumber, SessionSequence: sessionSequence},
		effectiveDeviceID:    deviceID,
		trafficControlValue:  random.NextPercentageValue(),
		clientIP:             clientIP,
	}
}

// Key returns the cache key this Beacon writes to.
func (b *Beacon) Key() cache.Key {
	return b.key
}

// NextID returns the next action/tracer id for this session. Ids start at 1.
func (b *Beacon) NextID() int32 {
	return b.ids.Next()
}

// NextSequenceNumber returns the next wire sequence number for this session.
func (b *Beacon) NextSequenceNumber() int32 {
	return b.sequences.Next()
}

// CurrentTimestampMs returns the current time relative to session start, in ms.
// Only meaningful embedded inside a serialized wire record (t0/t1-style
// offsets); never compare it against an absolute wall-clock value.
func (b *Beacon) CurrentTimestampMs() int64 {
	return b.timing.TimeSinceLastInitMillis()
}

// WallClockMs returns the current absolute time in Unix milliseconds, the
// same clock cache bookkeeping and the watchdog's split/eviction checks use.
func (b *Beacon) WallClockMs() int64 {
	return b.timing.TimestampMillis()
}

// captureAllowed implements the gating order's step 3 for a given record
// category: the server-side toggle AND the traffic-control sample.
func (b *Beacon) captureAllowed(serverFlag bool) bool {
	cfg := b.serverConfig.Get()
	if !serverFlag {
		return false
	}
	return b.trafficControlValue < cfg.TrafficControlPercentage
}

func (b *Beacon) dataCaptureAllowed() bool {
	return b.captureAllowed(b.serverConfig.Get().CaptureEnabled)
}

func (b *Beacon) errorCaptureAllowed() bool {
	return b.captureAllowed(b.serverConfig.Get().CaptureErrorsEnabled)
}

func (b *Beacon) crashCaptureAllowed() bool {
	return b.captureAllowed(b.serverConfig.Get().CaptureCrashesEnabled)
}

// ClearData drops every record for this Beacon's cache key. It is called
// when a finished session is finalized; a canceled action instead drops its
// own buffered records without touching the cache.
func (b *Beacon) ClearData() {
	b.cache.DeleteCacheEntry(b.key)
}

// CreateTag builds the web-request correlation tag for an action, or
// returns "" when web-request tracing is privacy-denied.
func (b *Beacon) CreateTag(parentActionID int32, sequenceNo int32) string {
	if !b.privacy.IsWebRequestTracingAllowed() {
		return ""
	}
	serverID := b.serverConfig.Get().ServerID
	if serverID == 0 {
		serverID = b.openKitConfig.DefaultServerID
	}
	return protocol.BuildTag(protocol.Tag{
		ProtocolVersion:  config.ProtocolVersion,
		ServerID:         serverID,
		DeviceID:         b.effectiveDeviceID,
		SessionNumber:    b.key.SessionNumber,
		SessionSequence:  b.key.SessionSequence,
		ApplicationID:    b.openKitConfig.ApplicationID,
		ParentActionID:   parentActionID,
		ThreadID:         b.threads.ThreadID(),
		SequenceNumber:   sequenceNo,
		SplitTaggingUsed: b.serverConfig.Get().VisitStoreVersion > 1,
	})
}

// NewSessionQuery builds the query string for the collector's new-session
// GET (`vi`, `sn`), issued once when a session is created so ServerID,
// beacon size, traffic-control percentage, and multiplicity are known
// before the first POST rather than left at their optimistic defaults.
func (b *Beacon) NewSessionQuery() string {
	return fmt.Sprintf("vi=%d&sn=%d", b.effectiveDeviceID, b.key.SessionNumber)
}

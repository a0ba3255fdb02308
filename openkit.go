package rumkit

import (
	"context"
	"sync"
	"time"

	"github.com/voyago/rumkit/internal/cache"
	"github.com/voyago/rumkit/internal/config"
	"github.com/voyago/rumkit/internal/httpclient"
	"github.com/voyago/rumkit/internal/logger"
	"github.com/voyago/rumkit/internal/protocol"
	"github.com/voyago/rumkit/internal/providers"
	"github.com/voyago/rumkit/internal/telemetry/metrics"
	"github.com/voyago/rumkit/internal/telemetry/tracer"
	"github.com/voyago/rumkit/internal/uid"
	"github.com/voyago/rumkit/internal/watchdog"
)

// OpenKit is the agent's entry point: one instance per application process,
// owning the shared beacon cache, server configuration, and background
// sender/watchdog loop that every Session it creates draws on.
type OpenKit struct {
	openKitConfig *config.OpenKitConfiguration
	httpConfig    *config.HTTPConfiguration
	privacy       *config.PrivacyConfiguration
	serverConfig  *config.ServerConfigurationHolder
	cache         *cache.BeaconCache
	timing        providers.TimingProvider
	threads       providers.ThreadIDProvider
	random        providers.RandomProvider
	log           logger.Logger
	trc           tracer.Tracer
	metrics       metrics.Metrics
	adapter       *watchdogSender

	instanceID string

	sessionNumbers providers.SequenceNumberProvider

	mu       sync.Mutex
	sessions map[*session]struct{}
	shutdown bool

	wd        *watchdog.Watchdog
	cancelRun context.CancelFunc
}

// watchdogSender adapts protocol.Adapter to beacon.Sender without the root
// package importing internal/protocol's Result type directly everywhere.
type watchdogSender struct {
	a *protocol.Adapter
}

func (w *watchdogSender) SendChunk(ctx context.Context, query string, chunk []byte) (*protocol.Result, error) {
	return w.a.SendChunk(ctx, query, chunk)
}

func (w *watchdogSender) NewSession(ctx context.Context, query string) (*protocol.Result, error) {
	return w.a.NewSession(ctx, query)
}

// Option configures an OpenKit instance at construction time.
type Option func(*openKitOptions)

type openKitOptions struct {
	applicationName    string
	applicationVersion string
	deviceID           int64
	operatingSystem    string
	manufacturer       string
	modelID            string

	dataCollectionLevel config.DataCollectionLevel
	crashReportingLevel config.CrashReportingLevel

	httpClient httpclient.Client
	logConfig  *config.LogConfig
	telemetry  *config.TelemetryConfig
}

func defaultOpenKitOptions() *openKitOptions {
	return &openKitOptions{
		applicationVersion:  "1.0.0",
		operatingSystem:     "unknown",
		dataCollectionLevel: config.DataCollectionUserBehavior,
		crashReportingLevel: config.CrashReportingOptedIn,
		logConfig:           &config.LogConfig{Env: "development", Level: 4},
	}
}

// WithApplicationName sets the human-readable application name reported to the collector.
func WithApplicationName(name string) Option {
	return func(o *openKitOptions) { o.applicationName = name }
}

// WithApplicationVersion sets the host application's own version string.
func WithApplicationVersion(version string) Option {
	return func(o *openKitOptions) { o.applicationVersion = version }
}

// WithDeviceID fixes the device identifier instead of letting OpenKit derive one.
func WithDeviceID(id int64) Option {
	return func(o *openKitOptions) { o.deviceID = id }
}

// WithPlatform sets the operating system, manufacturer, and model fields
// reported in the beacon's immutable prefix.
func WithPlatform(os, manufacturer, modelID string) Option {
	return func(o *openKitOptions) {
		o.operatingSystem = os
		o.manufacturer = manufacturer
		o.modelID = modelID
	}
}

// WithPrivacy sets the initial data-collection and crash-reporting levels.
func WithPrivacy(dataLevel config.DataCollectionLevel, crashLevel config.CrashReportingLevel) Option {
	return func(o *openKitOptions) {
		o.dataCollectionLevel = dataLevel
		o.crashReportingLevel = crashLevel
	}
}

// WithHTTPClient overrides the default fasthttp-backed transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *openKitOptions) { o.httpClient = c }
}

// WithLogConfig overrides the agent's own diagnostic logging configuration.
func WithLogConfig(cfg config.LogConfig) Option {
	return func(o *openKitOptions) { o.logConfig = &cfg }
}

// WithTelemetry enables the agent's own self-diagnostic tracing/metrics.
func WithTelemetry(cfg config.TelemetryConfig) Option {
	return func(o *openKitOptions) { o.telemetry = &cfg }
}

// NewOpenKit constructs an OpenKit instance for one application, talking to
// the collector at beaconURL, and starts its background sender/watchdog loop.
func NewOpenKit(applicationID, beaconURL string, opts ...Option) (*OpenKit, error) {
	o := defaultOpenKitOptions()
	for _, apply := range opts {
		apply(o)
	}

	env := "development"
	if o.logConfig != nil {
		env = o.logConfig.Env
	}

	trc, err := tracer.New(o.telemetry, env)
	if err != nil {
		return nil, err
	}
	log := logger.New(o.logConfig, trc)

	m, err := metrics.New(o.telemetry, env)
	if err != nil {
		return nil, err
	}

	httpCfg := config.DefaultHTTPConfiguration(beaconURL)

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = httpclient.NewFastHTTPClient(httpclient.Options{Timeout: httpCfg.RequestTimeout})
	}

	random := providers.NewRandomProvider()
	deviceID := o.deviceID
	if deviceID == 0 {
		deviceID = random.NextDeviceID()
	}

	ok := &OpenKit{
		openKitConfig: &config.OpenKitConfiguration{
			ApplicationID:      applicationID,
			ApplicationName:    o.applicationName,
			ApplicationVersion: o.applicationVersion,
			DeviceID:           deviceID,
			OperatingSystem:    o.operatingSystem,
			Manufacturer:       o.manufacturer,
			ModelID:            o.modelID,
			DefaultServerID:    1,
		},
		httpConfig:     httpCfg,
		privacy:        config.NewPrivacyConfiguration(o.dataCollectionLevel, o.crashReportingLevel),
		serverConfig:   config.NewServerConfigurationHolder(),
		cache:          cache.NewBeaconCache(),
		timing:         providers.NewTimingProvider(),
		threads:        providers.NewThreadIDProvider(),
		random:         random,
		log:            log,
		trc:            trc,
		metrics:        m,
		instanceID:     uid.NewUUID(),
		sessionNumbers: providers.NewSequenceNumberProvider(),
		sessions:       make(map[*session]struct{}),
	}
	ok.adapter = &watchdogSender{a: protocol.NewAdapter(httpClient, beaconURL)}

	ok.wd = watchdog.New(
		ok,
		ok.cache,
		ok.log,
		ok.metrics,
		httpCfg.CacheRecordAgeCheckInterval,
		httpCfg.RecordAgeLimit,
		httpCfg.UpperMemoryBoundaryBytes,
		httpCfg.LowerMemoryBoundaryBytes,
	)

	runCtx, cancel := context.WithCancel(context.Background())
	ok.cancelRun = cancel
	go ok.wd.Run(runCtx)

	return ok, nil
}

// CreateSession starts a new Session for a visiting user, optionally tagging
// it with the caller's IP address (clientIP may be empty).
func (ok *OpenKit) CreateSession(clientIP string) Session {
	ok.mu.Lock()
	if ok.shutdown {
		ok.mu.Unlock()
		return noopSession{}
	}
	ok.mu.Unlock()
	num := ok.sessionNumbers.Next()
	return ok.createSessionLocked(clientIP, num, 0)
}

// createSessionLocked registers a newly constructed session under the given
// (sessionNumber, sessionSequence) pair. A fresh visit passes sequence 0; a
// watchdog-driven split passes the predecessor's sessionNumber with
// sequence+1, per §3/§4.4.
func (ok *OpenKit) createSessionLocked(clientIP string, sessionNumber, sessionSequence int32) *session {
	s := newSession(ok, sessionNumber, sessionSequence, clientIP)

	ok.mu.Lock()
	ok.sessions[s] = struct{}{}
	ok.mu.Unlock()
	return s
}

func (ok *OpenKit) onSessionClosing(s *session) {
	// kept registered until the watchdog observes IsFinished and drains it;
	// removal happens via Remove (watchdog.Registry) once that pass completes.
	_ = s
}

// Snapshot implements watchdog.Registry.
func (ok *OpenKit) Snapshot() []watchdog.TrackedSession {
	ok.mu.Lock()
	defer ok.mu.Unlock()
	out := make([]watchdog.TrackedSession, 0, len(ok.sessions))
	for s := range ok.sessions {
		out = append(out, s)
	}
	return out
}

// Remove implements watchdog.Registry.
func (ok *OpenKit) Remove(s watchdog.TrackedSession) {
	sess, isSession := s.(*session)
	if !isSession {
		return
	}
	ok.mu.Lock()
	delete(ok.sessions, sess)
	ok.mu.Unlock()
}

// Shutdown ends every open session, gives the background sender loop up to
// the configured shutdown timeout to drain the beacon cache, then stops it
// unconditionally.
func (ok *OpenKit) Shutdown() {
	ok.mu.Lock()
	if ok.shutdown {
		ok.mu.Unlock()
		return
	}
	ok.shutdown = true
	sessions := make([]*session, 0, len(ok.sessions))
	for s := range ok.sessions {
		sessions = append(sessions, s)
	}
	ok.mu.Unlock()

	for _, s := range sessions {
		s.End()
	}

	ok.cancelRun()

	select {
	case <-ok.wd.Done():
	case <-time.After(ok.httpConfig.ShutdownTimeout):
	}

	if ok.metrics != nil {
		_ = ok.metrics.Close()
	}
	if ok.trc != nil {
		_ = ok.trc.Close()
	}
}

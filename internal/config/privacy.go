package config

import "sync"

// DataCollectionLevel controls how much identifying/behavioral data the
// agent is permitted to collect, mirroring the server-assignable data
// collection level (OFF/PERFORMANCE/USER_BEHAVIOR).
type DataCollectionLevel int

const (
	DataCollectionOff DataCollectionLevel = iota
	DataCollectionPerformance
	DataCollectionUserBehavior
)

// CrashReportingLevel controls whether crash records are collected at all.
type CrashReportingLevel int

const (
	CrashReportingOff CrashReportingLevel = iota
	CrashReportingOptedOut
	CrashReportingOptedIn
)

// PrivacyConfiguration is the mutable, host-application-controlled policy
// gate consulted before any record type is serialized. It guards its own
// fields with a mutex since the host application may flip flags from any
// goroutine at any time, independent of the beacon's own locking.
type PrivacyConfiguration struct {
	mu sync.RWMutex

	dataCollectionLevel DataCollectionLevel
	crashReportingLevel CrashReportingLevel

	sessionReportingAllowed       bool
	actionReportingAllowed        bool
	valueReportingAllowed         bool
	eventReportingAllowed         bool
	errorReportingAllowed         bool
	crashReportingAllowed         bool
	userIdentificationAllowed     bool
	webRequestTracingAllowed      bool
	sessionNumberReportingAllowed bool
	deviceIDSendingAllowed        bool
}

// NewPrivacyConfiguration builds a PrivacyConfiguration from the two
// server-assignable levels, deriving every per-record-kind flag the way
// the levels define (OFF disables every data flag; PERFORMANCE allows all of
// them except user identification and device-id sending; crash reporting is
// gated independently and is allowed only at OptedIn).
func NewPrivacyConfiguration(dataLevel DataCollectionLevel, crashLevel CrashReportingLevel) *PrivacyConfiguration {
	p := &PrivacyConfiguration{}
	p.apply(dataLevel, crashLevel)
	return p
}

func (p *PrivacyConfiguration) apply(dataLevel DataCollectionLevel, crashLevel CrashReportingLevel) {
	p.dataCollectionLevel = dataLevel
	p.crashReportingLevel = crashLevel

	allowed := dataLevel != DataCollectionOff
	userBehavior := dataLevel == DataCollectionUserBehavior

	p.sessionReportingAllowed = allowed
	p.actionReportingAllowed = allowed
	p.valueReportingAllowed = allowed
	p.eventReportingAllowed = allowed
	p.errorReportingAllowed = allowed
	p.webRequestTracingAllowed = allowed
	p.sessionNumberReportingAllowed = allowed

	p.userIdentificationAllowed = userBehavior
	p.deviceIDSendingAllowed = userBehavior

	p.crashReportingAllowed = crashLevel == CrashReportingOptedIn
}

// Reconfigure replaces the levels and re-derives every flag. Safe to call
// concurrently with any Is*Allowed query.
func (p *PrivacyConfiguration) Reconfigure(dataLevel DataCollectionLevel, crashLevel CrashReportingLevel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.apply(dataLevel, crashLevel)
}

func (p *PrivacyConfiguration) DataCollectionLevel() DataCollectionLevel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dataCollectionLevel
}

func (p *PrivacyConfiguration) IsSessionReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessionReportingAllowed
}

func (p *PrivacyConfiguration) IsActionReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.actionReportingAllowed
}

func (p *PrivacyConfiguration) IsValueReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.valueReportingAllowed
}

func (p *PrivacyConfiguration) IsEventReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.eventReportingAllowed
}

func (p *PrivacyConfiguration) IsErrorReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errorReportingAllowed
}

func (p *PrivacyConfiguration) IsCrashReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.crashReportingAllowed
}

func (p *PrivacyConfiguration) IsUserIdentificationAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userIdentificationAllowed
}

func (p *PrivacyConfiguration) IsWebRequestTracingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.webRequestTracingAllowed
}

func (p *PrivacyConfiguration) IsSessionNumberReportingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessionNumberReportingAllowed
}

func (p *PrivacyConfiguration) IsDeviceIDSendingAllowed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deviceIDSendingAllowed
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/rumkit/internal/config"
)

func TestPrivacyConfiguration_DataCollectionOffDisablesEverythingExceptCrash(t *testing.T) {
	p := config.NewPrivacyConfiguration(config.DataCollectionOff, config.CrashReportingOptedIn)

	assert.False(t, p.IsSessionReportingAllowed())
	assert.False(t, p.IsActionReportingAllowed())
	assert.False(t, p.IsValueReportingAllowed())
	assert.False(t, p.IsEventReportingAllowed())
	assert.False(t, p.IsErrorReportingAllowed())
	assert.False(t, p.IsWebRequestTracingAllowed())
	assert.False(t, p.IsUserIdentificationAllowed())
	assert.False(t, p.IsDeviceIDSendingAllowed())
	assert.True(t, p.IsCrashReportingAllowed())
}

func TestPrivacyConfiguration_PerformanceAllowsBasicButNotIdentity(t *testing.T) {
	p := config.NewPrivacyConfiguration(config.DataCollectionPerformance, config.CrashReportingOff)

	assert.True(t, p.IsActionReportingAllowed())
	assert.True(t, p.IsValueReportingAllowed())
	assert.False(t, p.IsUserIdentificationAllowed())
	assert.False(t, p.IsDeviceIDSendingAllowed())
	assert.False(t, p.IsCrashReportingAllowed())
}

func TestPrivacyConfiguration_UserBehaviorAllowsIdentity(t *testing.T) {
	p := config.NewPrivacyConfiguration(config.DataCollectionUserBehavior, config.CrashReportingOptedIn)

	assert.True(t, p.IsUserIdentificationAllowed())
	assert.True(t, p.IsDeviceIDSendingAllowed())
}

func TestPrivacyConfiguration_ReconfigureIsObservedByLaterQueries(t *testing.T) {
	p := config.NewPrivacyConfiguration(config.DataCollectionUserBehavior, config.CrashReportingOptedIn)
	assert.True(t, p.IsUserIdentificationAllowed())

	p.Reconfigure(config.DataCollectionOff, config.CrashReportingOff)

	assert.False(t, p.IsUserIdentificationAllowed())
	assert.False(t, p.IsCrashReportingAllowed())
}

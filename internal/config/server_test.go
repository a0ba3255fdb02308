package config_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/rumkit/internal/config"
)

func TestServerConfiguration_DefaultsOptimisticallyCapture(t *testing.T) {
	cfg := config.DefaultServerConfiguration()

	assert.True(t, cfg.CaptureEnabled)
	assert.Equal(t, 100, cfg.TrafficControlPercentage)
	assert.EqualValues(t, 1, cfg.VisitStoreVersion)
}

func TestServerConfiguration_MergeOverlaysNonZeroFields(t *testing.T) {
	base := config.DefaultServerConfiguration()
	update := &config.ServerConfiguration{
		CaptureEnabled:           false,
		CaptureErrorsEnabled:     true,
		CaptureCrashesEnabled:    true,
		TrafficControlPercentage: 50,
		ServerID:                 7,
		BeaconSizeBytes:          0, // zero means "not present"; base value must survive
	}

	merged := base.Merge(update)

	assert.False(t, merged.CaptureEnabled)
	assert.Equal(t, 50, merged.TrafficControlPercentage)
	assert.EqualValues(t, 7, merged.ServerID)
	assert.Equal(t, base.BeaconSizeBytes, merged.BeaconSizeBytes)
}

func TestServerConfigurationHolder_ReplaceAndGet(t *testing.T) {
	h := config.NewServerConfigurationHolder()
	fresh := &config.ServerConfiguration{CaptureEnabled: false, ServerID: 9, VisitStoreVersion: 2}

	h.Replace(fresh)

	assert.Same(t, fresh, h.Get())
}

func TestServerConfigurationHolder_MergeUpdateIsConcurrencySafe(t *testing.T) {
	h := config.NewServerConfigurationHolder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h.MergeUpdate(&config.ServerConfiguration{
				TrafficControlPercentage: n % 100,
				ServerID:                 int32(n),
			})
		}(i)
	}
	wg.Wait()

	assert.NotNil(t, h.Get())
}

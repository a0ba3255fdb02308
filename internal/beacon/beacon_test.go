package beacon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/rumkit/internal/apperror"
	"github.com/voyago/rumkit/internal/beacon"
	"github.com/voyago/rumkit/internal/cache"
	"github.com/voyago/rumkit/internal/config"
)

type fakeTiming struct{}

func (fakeTiming) TimeSinceLastInitMillis() int64 { return 1000 }
func (fakeTiming) TimestampMillis() int64         { return 1_700_000_000_000 }
func (fakeTiming) TimestampNanos() int64          { return 1_700_000_000_000_000_000 }

type fakeThreads struct{}

func (fakeThreads) ThreadID() int { return 7 }

type fakeRandom struct {
	deviceID   int64
	percentile int
}

func (f fakeRandom) NextDeviceID() int64      { return f.deviceID }
func (f fakeRandom) NextPercentageValue() int { return f.percentile }

func newTestBeacon(t *testing.T, dataLevel config.DataCollectionLevel, crashLevel config.CrashReportingLevel, trafficPercentile int) (*beacon.Beacon, *cache.BeaconCache) {
	t.Helper()
	c := cache.NewBeaconCache()
	privacy := config.NewPrivacyConfiguration(dataLevel, crashLevel)
	serverCfg := config.NewServerConfigurationHolder()

	b := beacon.New(
		&config.OpenKitConfiguration{ApplicationID: "app-id", ApplicationName: "app", ApplicationVersion: "1.0"},
		config.DefaultHTTPConfiguration("https://collector.example.com/mbeacon"),
		privacy,
		serverCfg,
		c,
		fakeTiming{},
		fakeThreads{},
		fakeRandom{deviceID: 42, percentile: trafficPercentile},
		1,
		0,
		"",
		nil,
	)
	return b, c
}

func TestBeacon_AddAction_HappyPath(t *testing.T) {
	b, c := newTestBeacon(t, config.DataCollectionUserBehavior, config.CrashReportingOptedIn, 0)

	err := b.AddAction(1, 0, "root", 1, 2, 1000, 2000)

	require.NoError(t, err)
	assert.False(t, c.IsEmpty(b.Key()))
}

func TestBeacon_AddAction_PrivacyDenied(t *testing.T) {
	b, _ := newTestBeacon(t, config.DataCollectionOff, config.CrashReportingOptedIn, 0)

	err := b.AddAction(1, 0, "root", 1, 2, 1000, 2000)

	require.Error(t, err)
	var ae *apperror.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindPrivacyDenied, ae.Kind)
}

func TestBeacon_ReportValueInt_EmptyNameIsInvalidArgument(t *testing.T) {
	b, _ := newTestBeacon(t, config.DataCollectionUserBehavior, config.CrashReportingOptedIn, 0)

	err := b.ReportValueInt(1, "   ", 5)

	require.Error(t, err)
	var ae *apperror.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindInvalidArgument, ae.Kind)
}

func TestBeacon_TrafficControlGating(t *testing.T) {
	// A session drawn above the server's traffic-control percentage must be excluded.
	c := cache.NewBeaconCache()
	privacy := config.NewPrivacyConfiguration(config.DataCollectionUserBehavior, config.CrashReportingOptedIn)
	serverCfg := config.NewServerConfigurationHolder()
	restrictive := config.DefaultServerConfiguration()
	restrictive.TrafficControlPercentage = 10
	serverCfg.Replace(restrictive)

	b := beacon.New(
		&config.OpenKitConfiguration{ApplicationID: "app-id"},
		config.DefaultHTTPConfiguration("https://collector.example.com/mbeacon"),
		privacy,
		serverCfg,
		c,
		fakeTiming{},
		fakeThreads{},
		fakeRandom{deviceID: 42, percentile: 90},
		3,
		0,
		"",
		nil,
	)

	err := b.ReportEvent(1, "click")

	require.Error(t, err)
	var ae *apperror.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindCaptureDisabled, ae.Kind)
}

func TestBeacon_CrashReporting_RespectsCrashLevelIndependentlyOfDataLevel(t *testing.T) {
	b, _ := newTestBeacon(t, config.DataCollectionOff, config.CrashReportingOptedIn, 0)

	err := b.ReportCrash("panic", "oops", "trace")

	assert.NoError(t, err)
}

func TestBeacon_NextSequenceNumber_IsMonotonic(t *testing.T) {
	b, _ := newTestBeacon(t, config.DataCollectionUserBehavior, config.CrashReportingOptedIn, 0)

	first := b.NextSequenceNumber()
	second := b.NextSequenceNumber()
	third := b.NextSequenceNumber()

	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestBeacon_EffectiveDeviceID_FallsBackToRandomWhenPrivacyDenied(t *testing.T) {
	c := cache.NewBeaconCache()
	privacy := config.NewPrivacyConfiguration(config.DataCollectionPerformance, config.CrashReportingOff)
	serverCfg := config.NewServerConfigurationHolder()

	b := beacon.New(
		&config.OpenKitConfiguration{ApplicationID: "app-id", DeviceID: 999},
		config.DefaultHTTPConfiguration("https://collector.example.com/mbeacon"),
		privacy,
		serverCfg,
		c,
		fakeTiming{},
		fakeThreads{},
		fakeRandom{deviceID: 555, percentile: 0},
		2,
		0,
		"",
		nil,
	)

	tag := b.CreateTag(0, 1)
	// Device-id sending is denied at the performance level, so the tag must
	// embed the random substitute (555), not the configured device id (999).
	assert.Contains(t, tag, "_555_")
	assert.NotContains(t, tag, "_999_")
}

func TestBeacon_CreateTag_EmptyWhenWebRequestTracingDenied(t *testing.T) {
	b, _ := newTestBeacon(t, config.DataCollectionOff, config.CrashReportingOff, 0)

	tag := b.CreateTag(1, 1)

	assert.Empty(t, tag)
}

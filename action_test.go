package rumkit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/rumkit/internal/cache"
	"github.com/voyago/rumkit/internal/config"
	"github.com/voyago/rumkit/internal/httpclient"
	"github.com/voyago/rumkit/internal/protocol"
	"github.com/voyago/rumkit/internal/providers"
)

type fakeTiming struct{}

func (fakeTiming) TimeSinceLastInitMillis() int64 { return 1000 }
func (fakeTiming) TimestampMillis() int64         { return 1_700_000_000_000 }
func (fakeTiming) TimestampNanos() int64          { return 1_700_000_000_000_000_000 }

type fakeThreads struct{}

func (fakeThreads) ThreadID() int { return 3 }

type fakeRandom struct{}

func (fakeRandom) NextDeviceID() int64      { return 11 }
func (fakeRandom) NextPercentageValue() int { return 0 }

// unreachableClient simulates an offline collector: every exchange fails, so
// the new-session handshake fired from newSession leaves serverConfig at its
// defaults instead of racing these tests' cache assertions.
type unreachableClient struct{}

func (unreachableClient) Get(ctx context.Context, url string) (*httpclient.Response, error) {
	return nil, errors.New("collector unreachable")
}

func (unreachableClient) PostPlainText(ctx context.Context, url string, body []byte) (*httpclient.Response, error) {
	return nil, errors.New("collector unreachable")
}

func newTestSession(t *testing.T) (*session, *cache.BeaconCache) {
	t.Helper()
	c := cache.NewBeaconCache()
	ok := &OpenKit{
		openKitConfig: &config.OpenKitConfiguration{ApplicationID: "app-id"},
		httpConfig:    config.DefaultHTTPConfiguration("https://collector.example.com/mbeacon"),
		privacy:       config.NewPrivacyConfiguration(config.DataCollectionUserBehavior, config.CrashReportingOptedIn),
		serverConfig:  config.NewServerConfigurationHolder(),
		cache:         c,
		timing:        fakeTiming{},
		threads:       fakeThreads{},
		random:        fakeRandom{},
		sessionNumbers: providers.NewSequenceNumberProvider(),
		sessions:       make(map[*session]struct{}),
		adapter:        &watchdogSender{a: protocol.NewAdapter(unreachableClient{}, "https://collector.example.com/mbeacon")},
	}
	return newSession(ok, ok.sessionNumbers.Next(), 0, ""), c
}

func drainAsText(t *testing.T, c *cache.BeaconCache, key cache.Key) string {
	t.Helper()
	c.PrepareDataForSending(key)
	return c.GetNextBeaconChunk(key, "", 1<<20, "&")
}

func TestRootAction_LeaveCommitsRecordsAndActionEntry(t *testing.T) {
	s, c := newTestSession(t)

	root := s.EnterAction("checkout")
	root.ReportValueInt("items", 3)
	root.ReportEvent("cart-viewed")
	root.LeaveAction()

	text := drainAsText(t, c, s.key)
	assert.Contains(t, text, "na=checkout")
	assert.Contains(t, text, "na=cart-viewed")
}

func TestRootAction_CancelDiscardsOwnBufferedRecords(t *testing.T) {
	s, c := newTestSession(t)

	root := s.EnterAction("abandoned")
	root.ReportValueString("cart-id", "cart-999")
	root.ReportEvent("should-vanish")
	root.CancelAction()

	// newSession itself appends the SESSION_START record; nothing else may
	// reach the cache.
	require.Equal(t, "et=18&pa=0&s0=1&t0=1000", drainAsText(t, c, s.key))
}

func TestAction_CancelDiscardsNestedRecordsButParentSurvives(t *testing.T) {
	s, c := newTestSession(t)

	root := s.EnterAction("root")
	child := root.EnterAction("nested")
	child.ReportValueInt("will-vanish", 1)
	child.CancelAction()
	root.ReportEvent("will-survive")
	root.LeaveAction()

	text := drainAsText(t, c, s.key)
	assert.Contains(t, text, "na=root")
	assert.Contains(t, text, "will-survive")
	assert.NotContains(t, text, "nested")
	assert.NotContains(t, text, "will-vanish")
}

func TestRootAction_CancelPropagatesToOpenChildren(t *testing.T) {
	s, c := newTestSession(t)

	root := s.EnterAction("root")
	child := root.EnterAction("nested")
	child.ReportValueInt("child-value", 1)
	// parent cancels before the child leaves; CloseChildren must cancel it too.
	root.CancelAction()

	// only the SESSION_START record appended by newSession may remain.
	assert.Equal(t, "et=18&pa=0&s0=1&t0=1000", drainAsText(t, c, s.key))
}

func TestWebRequestTracer_BufferedUntilActionCommits(t *testing.T) {
	s, c := newTestSession(t)

	root := s.EnterAction("root")
	tracer := root.TraceWebRequest("https://api.example.com/v1/items")
	tracer.Start()
	tracer.SetResponseCode(200)
	tracer.Stop()

	assert.Equal(t, "et=18&pa=0&s0=1&t0=1000", drainAsText(t, c, s.key), "record must stay buffered until the owning action commits")

	root.LeaveAction()
	text := drainAsText(t, c, s.key)
	assert.Contains(t, text, "api.example.com")
}

func TestWebRequestTracer_DiscardedOnCancel(t *testing.T) {
	s, c := newTestSession(t)

	root := s.EnterAction("root")
	tracer := root.TraceWebRequest("https://api.example.com/v1/items")
	tracer.Start().Stop()
	root.CancelAction()

	// only the SESSION_START record appended by newSession may remain.
	assert.Equal(t, "et=18&pa=0&s0=1&t0=1000", drainAsText(t, c, s.key))
}

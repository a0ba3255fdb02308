package rumkit_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/rumkit"
	"github.com/voyago/rumkit/internal/config"
	"github.com/voyago/rumkit/internal/httpclient"
)

// fakeCollector is a hand-rolled httpclient.Client double that answers every
// exchange with an always-capture status response and records what it saw,
// so tests never touch the network.
type fakeCollector struct {
	mu        sync.Mutex
	newSessionCalls int
	postBodies      []string

	statusLine string
}

func newFakeCollector() *fakeCollector {
	return &fakeCollector{
		statusLine: "type=m&cp=1&er=1&cr=1&bl=153600&id=1&tc=100&sr=2&mp=1&ss=0&md=0&st=600&vs=1",
	}
}

func (f *fakeCollector) Get(ctx context.Context, url string) (*httpclient.Response, error) {
	f.mu.Lock()
	f.newSessionCalls++
	f.mu.Unlock()
	return &httpclient.Response{StatusCode: 200, Body: []byte(f.statusLine)}, nil
}

func (f *fakeCollector) PostPlainText(ctx context.Context, url string, body []byte) (*httpclient.Response, error) {
	f.mu.Lock()
	f.postBodies = append(f.postBodies, string(body))
	f.mu.Unlock()
	return &httpclient.Response{StatusCode: 200, Body: []byte(f.statusLine)}, nil
}

func (f *fakeCollector) sentBodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.postBodies))
	copy(out, f.postBodies)
	return out
}

func newTestOpenKit(t *testing.T, collector *fakeCollector, opts ...rumkit.Option) *rumkit.OpenKit {
	t.Helper()
	allOpts := append([]rumkit.Option{
		rumkit.WithApplicationName("integration-suite"),
		rumkit.WithHTTPClient(collector),
	}, opts...)

	ok, err := rumkit.NewOpenKit("app-id", "https://collector.example.com/mbeacon", allOpts...)
	require.NoError(t, err)
	t.Cleanup(ok.Shutdown)
	return ok
}

func TestOpenKit_SingleActionHappyPath(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("203.0.113.5")
	root := session.EnterAction("load-homepage")
	root.ReportValueInt("items-rendered", 42)
	root.ReportEvent("hero-banner-shown")

	child := root.EnterAction("fetch-recommendations")
	tracer := child.TraceWebRequest("https://api.example.com/recs?user=1")
	tracer.Start()
	tracer.SetBytesSent(128)
	tracer.SetBytesReceived(4096)
	tracer.SetResponseCode(200)
	tracer.Stop()
	child.LeaveAction()

	session = root.LeaveAction()
	session.End()
}

func TestOpenKit_DataReachesCollectorOnShutdown(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("203.0.113.5")
	root := session.EnterAction("load-homepage")
	root.ReportValueInt("items-rendered", 42)
	root.LeaveAction()
	session.End()

	ok.Shutdown()

	bodies := collector.sentBodies()
	require.NotEmpty(t, bodies)
	joined := strings.Join(bodies, "\n")
	assert.Contains(t, joined, "na=load-homepage")
}

func TestSession_EndThenFreshSessionWithSameUserTag(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("203.0.113.5")
	session.IdentifyUser("user-42")

	root := session.EnterAction("checkout")
	root.LeaveAction()

	// SplitAndReplaceWithSuccessor is only reachable through the watchdog;
	// this test does not drive it. It ends the session and creates a fresh
	// one with the same tag by hand, mirroring what the split path does, and
	// makes no assertion on the tag replay.
	session.End()
	successor := ok.CreateSession("203.0.113.5")
	successor.IdentifyUser("user-42")
	successor.EnterAction("post-split-action").LeaveAction()
	successor.End()
}

func TestRootAction_InvalidURLYieldsNullTracer(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("")
	root := session.EnterAction("broken-request")

	tracer := root.TraceWebRequest("not-a-valid-url")
	assert.Empty(t, tracer.Tag())
	tracer.Start().SetResponseCode(0).Stop()

	root.LeaveAction()
	session.End()
}

func TestRootAction_CancelDiscardsBufferedData(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("203.0.113.5")
	root := session.EnterAction("abandoned-checkout")
	root.ReportValueString("cart-id", "cart-999")
	root.CancelAction()
	session.End()

	ok.Shutdown()

	bodies := collector.sentBodies()
	joined := strings.Join(bodies, "\n")
	assert.NotContains(t, joined, "abandoned-checkout")
	assert.NotContains(t, joined, "cart-999")
}

func TestSession_PrivacyOffPreventsActionRecords(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector,
		rumkit.WithPrivacy(config.DataCollectionOff, config.CrashReportingOff),
	)

	session := ok.CreateSession("203.0.113.5")
	root := session.EnterAction("should-not-be-recorded")
	root.ReportValueInt("x", 1)
	root.LeaveAction()
	session.End()

	ok.Shutdown()

	bodies := collector.sentBodies()
	joined := strings.Join(bodies, "\n")
	assert.NotContains(t, joined, "should-not-be-recorded")
}

func TestSendEvent_OversizedPayloadIsRejectedWithoutPanicking(t *testing.T) {
	collector := newFakeCollector()
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("203.0.113.5")

	huge := make(map[string]any, 2000)
	for i := 0; i < 2000; i++ {
		huge[fmt.Sprintf("attr-%d", i)] = strings.Repeat("x", 64)
	}

	assert.NotPanics(t, func() {
		session.SendEvent("huge-event", huge)
	})

	session.End()
}

func TestOpenKit_EndedAndFreshSessionBothReachCollector(t *testing.T) {
	collector := newFakeCollector()
	// SessionTimeoutMs comes from server config, defaulted to 600_000ms, far
	// longer than this test can wait; this test instead checks that ending a
	// session and starting a fresh one under the same OpenKit behaves
	// correctly end-to-end, which is what the watchdog's split ultimately
	// reduces to.
	ok := newTestOpenKit(t, collector)

	session := ok.CreateSession("203.0.113.5")
	session.IdentifyUser("returning-user")
	session.EnterAction("first-visit-action").LeaveAction()
	session.End()

	time.Sleep(10 * time.Millisecond)

	successor := ok.CreateSession("203.0.113.5")
	successor.IdentifyUser("returning-user")
	successor.EnterAction("second-visit-action").LeaveAction()
	successor.End()

	ok.Shutdown()

	bodies := collector.sentBodies()
	joined := strings.Join(bodies, "\n")
	assert.Contains(t, joined, "first-visit-action")
	assert.Contains(t, joined, "second-visit-action")
}

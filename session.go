package rumkit

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/voyago/rumkit/internal/apperror"
	"github.com/voyago/rumkit/internal/beacon"
	"github.com/voyago/rumkit/internal/cache"
	"github.com/voyago/rumkit/internal/lifecycle"
	"github.com/voyago/rumkit/internal/logger"
	"github.com/voyago/rumkit/internal/telemetry/tracer"
	"github.com/voyago/rumkit/internal/utils"
)

// Session is one visit's root of the action tree. Create actions on it,
// identify the visiting user, and report crashes that end the visit abnormally.
type Session interface {
	EnterAction(name string) RootAction
	IdentifyUser(userTag string)
	ReportCrash(name, reason, stacktrace string)
	SendEvent(name string, attributes map[string]any)
	SendBizEvent(eventType string, attributes map[string]any)
	End()
}

// sessionState tracks the INITIALIZED -> ACTIVE -> FINISHING progression; a
// session becomes ACTIVE on its first child action and FINISHING as soon as
// End is called. There is no CONFIGURED state (the server handshake is
// tracked by the configured flag), and stateFinished is never stored:
// IsFinished reports a FINISHING session whose cache entry has drained.
type sessionState int32

const (
	stateInitialized sessionState = iota
	stateActive
	stateFinishing
	stateFinished
)

type session struct {
	lifecycle.Composite

	mu sync.Mutex

	ok  *OpenKit
	b   *beacon.Beacon
	key cache.Key

	clientIP string

	state          atomic.Int32
	startedAtMs    int64
	lastActivityMs atomic.Int64
	configured     atomic.Bool

	lastUserTag atomic.Pointer[string]

	log logger.Logger
}

var _ Session = (*session)(nil)

func newSession(ok *OpenKit, sessionNumber, sessionSequence int32, clientIP string) *session {
	b := beacon.New(
		ok.openKitConfig,
		ok.httpConfig,
		ok.privacy,
		ok.serverConfig,
		ok.cache,
		ok.timing,
		ok.threads,
		ok.random,
		sessionNumber,
		sessionSequence,
		clientIP,
		ok.log,
	)

	s := &session{
		ok:          ok,
		b:           b,
		key:         b.Key(),
		clientIP:    clientIP,
		startedAtMs: b.WallClockMs(),
		log:         ok.log,
	}
	s.lastActivityMs.Store(s.startedAtMs)
	b.StartSession()
	go s.requestNewSession()
	return s
}

// requestNewSession issues the collector's new-session GET so ServerID,
// beacon size, traffic-control percentage, and multiplicity are known from
// the start rather than left at their optimistic defaults until the first
// beacon POST response arrives. Runs detached from the caller's context
// since CreateSession itself is synchronous and doesn't carry one.
func (s *session) requestNewSession() {
	ctx, cancel := context.WithTimeout(context.Background(), s.ok.httpConfig.RequestTimeout)
	defer cancel()

	result, err := s.ok.adapter.NewSession(ctx, s.b.NewSessionQuery())
	if err != nil {
		s.logDenied("new session handshake", err)
		return
	}
	if result != nil && result.ServerConfig != nil {
		s.ok.serverConfig.Replace(result.ServerConfig)
		s.configured.Store(true)
	}
}

func (s *session) touch() {
	s.lastActivityMs.Store(s.b.WallClockMs())
}

func (s *session) isClosed() bool {
	return s.IsLeft()
}

func (s *session) onChildClosed(c lifecycle.Child) {
	s.RemoveChild(c)
}

func (s *session) actionID() int32 { return 0 }

func (s *session) EnterAction(name string) RootAction {
	if s.isClosed() {
		return noopRootAction{}
	}
	s.state.CompareAndSwap(int32(stateInitialized), int32(stateActive))
	return newRootAction(s, name)
}

func (s *session) IdentifyUser(userTag string) {
	if s.isClosed() {
		return
	}
	trimmed := strings.TrimSpace(userTag)
	if trimmed == "" {
		return
	}
	if err := s.b.IdentifyUser(trimmed); err != nil {
		s.logDenied("identify user", err)
		return
	}
	tag := trimmed
	s.lastUserTag.Store(&tag)
	s.touch()
}

func (s *session) ReportCrash(name, reason, stacktrace string) {
	if s.isClosed() {
		return
	}
	if err := s.b.ReportCrash(name, reason, stacktrace); err != nil {
		s.logDenied("report crash", err)
	}
	s.touch()
}

func (s *session) SendEvent(name string, attributes map[string]any) {
	if s.isClosed() {
		return
	}
	if err := s.b.SendEvent(name, attributes, s.ok.instanceID, s.currentTag()); err != nil {
		s.logDenied("send event", err)
	}
	s.touch()
}

func (s *session) SendBizEvent(eventType string, attributes map[string]any) {
	if s.isClosed() {
		return
	}
	if err := s.b.SendBizEvent(eventType, attributes, s.ok.instanceID, s.currentTag()); err != nil {
		s.logDenied("send biz event", err)
	}
	s.touch()
}

func (s *session) currentTag() string {
	if p := s.lastUserTag.Load(); p != nil {
		return *p
	}
	return ""
}

func (s *session) End() {
	if !s.MarkLeft() {
		return
	}
	s.state.Store(int32(stateFinishing))
	children := s.CopyOfChildren()
	lifecycle.CloseChildren(children, false)
	if err := s.b.EndSession(); err != nil {
		s.logDenied("end session", err)
	}
	s.ok.onSessionClosing(s)
}

func (s *session) logDenied(op string, err error) {
	if s.log == nil {
		return
	}
	var ae *apperror.AppError
	if aerr, ok := err.(*apperror.AppError); ok {
		ae = aerr
	}
	if ae != nil {
		s.log.WithField("reason", ae.Kind).Debug(op + " suppressed")
	}
}

// --- watchdog.TrackedSession ---

func (s *session) IsFinished() bool {
	return s.state.Load() == int32(stateFinishing) && s.IsLeft() && s.ok.cache.IsEmpty(s.key)
}

func (s *session) LastInteractionMs() int64 { return s.lastActivityMs.Load() }
func (s *session) StartedAtMs() int64       { return s.startedAtMs }
func (s *session) ConfiguredByServer() bool { return s.configured.Load() }

func (s *session) SendIntervalMs() int64 {
	return s.ok.serverConfig.Get().SendIntervalMs
}

func (s *session) SessionTimeoutMs() int64 {
	return s.ok.serverConfig.Get().SessionTimeoutMs
}

func (s *session) MaxSessionDurationMs() int64 {
	return s.ok.serverConfig.Get().MaxSessionDurationMs
}

func (s *session) Send(ctx context.Context) error {
	var span tracer.Span
	if s.ok.trc != nil {
		span, ctx = s.ok.trc.StartSpan(ctx, "rumkit.session.send")
		defer span.Finish()
	}

	result, err := s.b.Send(ctx, s.ok.adapter, s.ok.metrics, s.startedAtMs)
	if result != nil {
		s.configured.Store(true)
	}
	if err != nil && span != nil {
		utils.RecordSpanError(span, err)
	}
	return err
}

// SplitAndReplaceWithSuccessor ends this session (draining its remaining
// data) and registers a successor that carries the same session number
// forward with sessionSequence+1, replaying the last user tag, per the
// idle/long-session split rule.
func (s *session) SplitAndReplaceWithSuccessor(ctx context.Context) error {
	s.End()
	if err := s.Send(ctx); err != nil {
		return err
	}
	successor := s.ok.createSessionLocked(s.clientIP, s.key.SessionNumber, s.key.SessionSequence+1)
	if tag := s.currentTag(); tag != "" {
		successor.IdentifyUser(tag)
	}
	return nil
}

func (s *session) Finalize() {
	_ = s.Send(context.Background())
	s.b.ClearData()
	s.ok.cache.DeleteCacheEntry(s.key)
}

func (s *session) CacheKey() cache.Key { return s.key }

type noopSession struct{}

var _ Session = noopSession{}

func (noopSession) EnterAction(name string) RootAction               { return noopRootAction{} }
func (noopSession) IdentifyUser(userTag string)                      {}
func (noopSession) ReportCrash(name, reason, stacktrace string)       {}
func (noopSession) SendEvent(name string, attributes map[string]any) {}
func (noopSession) SendBizEvent(eventType string, attributes map[string]any) {
}
func (noopSession) End() {}

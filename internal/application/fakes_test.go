package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) ports.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTicker{interval: d, next: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward and delivers every tick that came due.
// Like time.Ticker, ticks are dropped while the previous one is unread.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		t.fire(c.now)
	}
}

type fakeTicker struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for !t.stopped && !t.next.After(now) {
		select {
		case t.ch <- t.next:
		default:
		}
		t.next = t.next.Add(t.interval)
	}
}

type logoutCall struct {
	UserID    domain.UserID
	SessionID string
}

type fakeBackend struct {
	mu sync.Mutex

	loginResult  ports.LoginResult
	loginErr     error
	logoutErr    error
	heartbeatErr error
	userData     ports.UserDataResult
	userDataErr  error
	updateAck    ports.Ack
	updateErr    error

	logins     []ports.LoginRequest
	logouts    []logoutCall
	heartbeats []ports.HeartbeatRequest
	fetches    []domain.UserID
	updates    []ports.UserDataUpdate
}

var _ ports.Backend = (*fakeBackend)(nil)

func (b *fakeBackend) Login(_ context.Context, req ports.LoginRequest) (ports.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins = append(b.logins, req)
	return b.loginResult, b.loginErr
}

func (b *fakeBackend) Logout(_ context.Context, userID domain.UserID, sessionID string) (ports.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logouts = append(b.logouts, logoutCall{UserID: userID, SessionID: sessionID})
	if b.logoutErr != nil {
		return ports.Ack{}, b.logoutErr
	}
	return ports.Ack{Success: true}, nil
}

func (b *fakeBackend) Heartbeat(_ context.Context, req ports.HeartbeatRequest) (ports.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.heartbeats = append(b.heartbeats, req)
	if b.heartbeatErr != nil {
		return ports.Ack{}, b.heartbeatErr
	}
	return ports.Ack{Success: true}, nil
}

func (b *fakeBackend) FetchUserData(_ context.Context, userID domain.UserID) (ports.UserDataResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches = append(b.fetches, userID)
	return b.userData, b.userDataErr
}

func (b *fakeBackend) UpdateUserData(_ context.Context, update ports.UserDataUpdate) (ports.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, update)
	return b.updateAck, b.updateErr
}

func (b *fakeBackend) loginCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.logins)
}

func (b *fakeBackend) logoutCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.logouts)
}

func (b *fakeBackend) heartbeatCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.heartbeats)
}

func (b *fakeBackend) lastHeartbeat() ports.HeartbeatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.heartbeats[len(b.heartbeats)-1]
}

func (b *fakeBackend) updateCalls() []ports.UserDataUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ports.UserDataUpdate(nil), b.updates...)
}

func (b *fakeBackend) fetchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fetches)
}

// fakeHost implements the full host capability set.
type fakeHost struct {
	mu          sync.Mutex
	initData    string
	unsafe      ports.InitDataUnsafe
	readyCalls  int
	expandCalls int
	events      map[string][]func()
	back        *fakeBackButton
}

var (
	_ ports.Host               = (*fakeHost)(nil)
	_ ports.EventSource        = (*fakeHost)(nil)
	_ ports.BackButtonProvider = (*fakeHost)(nil)
)

func newFakeHost(user *domain.HostUser) *fakeHost {
	return &fakeHost{
		initData: "query_id=AAE&auth_date=1700000000&hash=abc",
		unsafe:   ports.InitDataUnsafe{User: user},
		events:   map[string][]func(){},
		back:     &fakeBackButton{},
	}
}

func (h *fakeHost) Ready() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readyCalls++
}

func (h *fakeHost) Expand() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.expandCalls++
}

func (h *fakeHost) InitData() string {
	return h.initData
}

func (h *fakeHost) InitDataUnsafe() ports.InitDataUnsafe {
	return h.unsafe
}

func (h *fakeHost) OnEvent(name string, handler func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[name] = append(h.events[name], handler)
}

func (h *fakeHost) BackButton() ports.BackButton {
	return h.back
}

func (h *fakeHost) emit(name string) {
	h.mu.Lock()
	handlers := append([]func(){}, h.events[name]...)
	h.mu.Unlock()
	for _, handler := range handlers {
		handler()
	}
}

type fakeBackButton struct {
	mu       sync.Mutex
	handlers []func()
}

func (b *fakeBackButton) OnClick(handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *fakeBackButton) click() {
	b.mu.Lock()
	handlers := append([]func(){}, b.handlers...)
	b.mu.Unlock()
	for _, handler := range handlers {
		handler()
	}
}

// minimalHost has neither events nor a back button.
type minimalHost struct {
	unsafe ports.InitDataUnsafe
}

func (minimalHost) Ready() {}

func (minimalHost) Expand() {}

func (minimalHost) InitData() string { return "hash=minimal" }

func (h minimalHost) InitDataUnsafe() ports.InitDataUnsafe { return h.unsafe }

type fakeSurface struct {
	mu      sync.Mutex
	text    map[domain.ElementID]string
	color   map[domain.ElementID]string
	visible map[domain.ElementID]bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		text:    map[domain.ElementID]string{},
		color:   map[domain.ElementID]string{},
		visible: map[domain.ElementID]bool{domain.ElementLoadingIndicator: true},
	}
}

func (s *fakeSurface) SetText(id domain.ElementID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text[id] = text
}

func (s *fakeSurface) SetColor(id domain.ElementID, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color[id] = color
}

func (s *fakeSurface) SetVisible(id domain.ElementID, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[id] = visible
}

func (s *fakeSurface) status() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text[domain.ElementStatusText], s.color[domain.ElementStatusText]
}

func (s *fakeSurface) isVisible(id domain.ElementID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[id]
}

type fakeLifecycle struct {
	mu          sync.Mutex
	kinds       []domain.InteractionKind
	interaction []func(domain.InteractionKind)
	unload      []func()
}

func (l *fakeLifecycle) OnInteraction(kinds []domain.InteractionKind, handler func(domain.InteractionKind)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kinds = append(l.kinds, kinds...)
	l.interaction = append(l.interaction, handler)
}

func (l *fakeLifecycle) OnUnload(handler func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unload = append(l.unload, handler)
}

func (l *fakeLifecycle) interact(kind domain.InteractionKind) {
	l.mu.Lock()
	handlers := append([]func(domain.InteractionKind){}, l.interaction...)
	l.mu.Unlock()
	for _, handler := range handlers {
		handler(kind)
	}
}

func (l *fakeLifecycle) fireUnload() {
	l.mu.Lock()
	handlers := append([]func(){}, l.unload...)
	l.mu.Unlock()
	for _, handler := range handlers {
		handler()
	}
}

package application

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
)

const (
	msgHostUnavailable      = "The app must be opened through Telegram"
	msgIdentityMissing      = "Could not get user data"
	msgAuthorized           = "Authorization successful!"
	msgAuthorizationFailed  = "authorization failed"
	msgMissingSessionID     = "login response missing session id"
	msgBackendNotConfigured = "backend not configured"
	authErrorPrefix         = "Authorization error: "
)

type SessionClientOptions struct {
	// Host is optional; a nil host makes Initialize fail with ErrHostUnavailable.
	Host      ports.Host
	Backend   ports.Backend
	Surface   ports.Surface
	Lifecycle ports.Lifecycle
	Clock     ports.Clock
	Logger    *log.Logger
	// HeartbeatInterval defaults to domain.DefaultHeartbeatInterval.
	HeartbeatInterval time.Duration
}

// SessionClient owns the login/session lifecycle of one page: identity
// acquisition, the login exchange, heartbeats and logout.
type SessionClient struct {
	host      ports.Host
	backend   ports.Backend
	surface   ports.Surface
	lifecycle ports.Lifecycle
	clock     ports.Clock
	logger    *log.Logger
	interval  time.Duration

	started atomic.Bool

	mu             sync.Mutex
	state          domain.State
	identity       *domain.Identity
	sessionID      string
	lastActivityAt time.Time
	authorized     bool
	loggedOut      bool
	heartbeat      *heartbeat
}

func NewSessionClient(opts SessionClientOptions) *SessionClient {
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	interval := opts.HeartbeatInterval
	if interval <= 0 {
		interval = domain.DefaultHeartbeatInterval
	}

	return &SessionClient{
		host:           opts.Host,
		backend:        opts.Backend,
		surface:        opts.Surface,
		lifecycle:      opts.Lifecycle,
		clock:          clock,
		logger:         logger,
		interval:       interval,
		state:          domain.StateUninitialized,
		lastActivityAt: clock.Now(),
	}
}

// Initialize runs the page's single login attempt. A nil error means the
// session is authorized and the heartbeat is running. Failures are
// rendered on the surface before they are returned.
func (c *SessionClient) Initialize(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("initialize in state %s: %w", c.State(), domain.ErrAlreadyInitialized)
	}

	c.logger.Print("[AUTH] initializing session")

	if c.host == nil {
		c.logger.Print("[AUTH] host sdk is not available")
		c.RenderError(msgHostUnavailable)
		c.setState(domain.StateFailed)
		return domain.ErrHostUnavailable
	}

	c.host.Ready()
	c.host.Expand()

	identity, err := domain.NormalizeIdentity(c.host.InitDataUnsafe().User)
	if err != nil {
		c.logger.Printf("[AUTH] read host identity: %v", err)
		c.RenderError(msgIdentityMissing)
		c.setState(domain.StateFailed)
		return err
	}

	c.mu.Lock()
	c.identity = &identity
	c.state = domain.StateIdentityAcquired
	c.mu.Unlock()
	c.logger.Printf("[AUTH] identity acquired for user %s (%s)", identity.ID, identity.Username)

	if err := c.authorize(ctx, identity); err != nil {
		c.setState(domain.StateFailed)
		return err
	}

	c.mu.Lock()
	c.authorized = true
	c.state = domain.StateAuthorized
	c.mu.Unlock()

	c.StartActivityTracking(ctx)
	c.RevealContent()

	return nil
}

func (c *SessionClient) authorize(ctx context.Context, identity domain.Identity) error {
	if c.backend == nil {
		return c.failAuthorization(&domain.AuthorizationError{Message: msgBackendNotConfigured})
	}

	result, err := c.backend.Login(ctx, ports.LoginRequest{
		User:     identity,
		InitData: c.host.InitData(),
	})
	if err != nil {
		return c.failAuthorization(&domain.AuthorizationError{Message: err.Error(), Err: err})
	}

	if !result.Success {
		message := strings.TrimSpace(result.Message)
		if message == "" {
			message = msgAuthorizationFailed
		}
		return c.failAuthorization(&domain.AuthorizationError{Message: message})
	}

	if strings.TrimSpace(result.SessionID) == "" {
		return c.failAuthorization(&domain.AuthorizationError{Message: msgMissingSessionID})
	}

	c.mu.Lock()
	c.sessionID = result.SessionID
	c.mu.Unlock()

	c.logger.Printf("[AUTH] login succeeded for user %s", identity.ID)
	c.RenderSuccess(msgAuthorized)

	return nil
}

func (c *SessionClient) failAuthorization(authErr *domain.AuthorizationError) error {
	c.logger.Printf("[AUTH] login failed: %s", authErr.Message)
	c.RenderError(authErrorPrefix + authErr.Message)
	return fmt.Errorf("login: %w", authErr)
}

// StartActivityTracking starts the heartbeat and registers the activity,
// unload and back-button hooks. Calling it again is a no-op. The heartbeat
// also stops when ctx is canceled.
func (c *SessionClient) StartActivityTracking(ctx context.Context) {
	c.mu.Lock()
	if c.heartbeat != nil {
		c.mu.Unlock()
		return
	}
	hb := newHeartbeat(c.clock.NewTicker(c.interval))
	c.heartbeat = hb
	c.mu.Unlock()

	go c.runHeartbeat(ctx, hb)

	if c.lifecycle != nil {
		c.lifecycle.OnInteraction(domain.ActivityInteractions, func(domain.InteractionKind) {
			c.touch()
		})
		c.lifecycle.OnUnload(func() {
			c.Logout(context.Background())
		})
	}

	if events, ok := c.host.(ports.EventSource); ok {
		events.OnEvent(domain.HostEventViewportChanged, c.touch)
	}

	if provider, ok := c.host.(ports.BackButtonProvider); ok {
		if button := provider.BackButton(); button != nil {
			button.OnClick(func() {
				c.Logout(context.Background())
			})
		}
	}
}

func (c *SessionClient) runHeartbeat(ctx context.Context, hb *heartbeat) {
	defer close(hb.done)

	for {
		select {
		case <-ctx.Done():
			hb.halt()
			return
		case <-hb.stop:
			return
		case <-hb.ticker.C():
			if hb.stopped() {
				return
			}
			c.UpdateActivity(ctx)
		}
	}
}

// UpdateActivity sends one heartbeat. It is a no-op without a session and
// never reports failures beyond the log.
func (c *SessionClient) UpdateActivity(ctx context.Context) {
	c.mu.Lock()
	sessionID := c.sessionID
	identity := c.identity
	c.mu.Unlock()

	if sessionID == "" || identity == nil {
		return
	}

	ack, err := c.backend.Heartbeat(ctx, ports.HeartbeatRequest{
		UserID:       identity.ID,
		SessionID:    sessionID,
		LastActivity: c.clock.Now(),
	})
	if err != nil {
		c.logger.Printf("[HEARTBEAT] update activity: %v", err)
		return
	}

	c.logger.Printf("[HEARTBEAT] activity updated (success=%t)", ack.Success)
}

// Logout ends the server-side session once and stops the heartbeat. The
// in-memory session id and authorized flag are kept.
func (c *SessionClient) Logout(ctx context.Context) {
	c.mu.Lock()
	sessionID := c.sessionID
	identity := c.identity
	alreadyLoggedOut := c.loggedOut
	if sessionID != "" {
		c.loggedOut = true
		c.state = domain.StateLoggedOut
	}
	c.mu.Unlock()

	c.stopHeartbeat()

	if sessionID == "" || identity == nil || alreadyLoggedOut {
		return
	}

	ack, err := c.backend.Logout(ctx, identity.ID, sessionID)
	if err != nil {
		c.logger.Printf("[AUTH] logout: %v", err)
		return
	}

	c.logger.Printf("[AUTH] session closed (success=%t)", ack.Success)
}

func (c *SessionClient) stopHeartbeat() {
	c.mu.Lock()
	hb := c.heartbeat
	c.mu.Unlock()

	if hb != nil {
		hb.halt()
	}
}

// FetchUserData returns the server's user-data record. The bool is false
// when there is no identity, the call failed or the server refused it.
func (c *SessionClient) FetchUserData(ctx context.Context) (domain.UserData, bool) {
	identity, ok := c.currentIdentity()
	if !ok || c.backend == nil {
		return nil, false
	}

	result, err := c.backend.FetchUserData(ctx, identity.ID)
	if err != nil {
		c.logger.Printf("[USERDATA] fetch user data: %v", err)
		return nil, false
	}
	if !result.Success {
		return nil, false
	}

	c.logger.Print("[USERDATA] fetched fresh user data")
	return result.UserData, true
}

func (c *SessionClient) ToggleFavorite(ctx context.Context, videoID string) bool {
	return c.updateUserData(ctx, domain.ActionToggleFavorite, videoID)
}

// UpdateReaction forwards action (like, dislike, ...) for videoID.
func (c *SessionClient) UpdateReaction(ctx context.Context, action domain.ReactionAction, videoID string) bool {
	ok := c.updateUserData(ctx, action, videoID)
	if ok {
		c.logger.Printf("[USERDATA] reaction %s recorded for video %s", action, videoID)
	}
	return ok
}

func (c *SessionClient) updateUserData(ctx context.Context, action domain.ReactionAction, videoID string) bool {
	identity, ok := c.currentIdentity()
	if !ok || c.backend == nil {
		return false
	}

	ack, err := c.backend.UpdateUserData(ctx, ports.UserDataUpdate{
		UserID:  identity.ID,
		Action:  action,
		VideoID: videoID,
	})
	if err != nil {
		c.logger.Printf("[USERDATA] %s for video %s: %v", action, videoID, err)
		return false
	}

	return ack.Success
}

func (c *SessionClient) RenderError(message string) {
	c.renderStatus("❌ "+message, domain.ColorError)
}

func (c *SessionClient) RenderSuccess(message string) {
	c.renderStatus("✅ "+message, domain.ColorSuccess)
}

func (c *SessionClient) renderStatus(text, color string) {
	if c.surface == nil {
		return
	}
	c.surface.SetText(domain.ElementStatusText, text)
	c.surface.SetColor(domain.ElementStatusText, color)
}

// RevealContent hides the loading indicator and shows the content container.
func (c *SessionClient) RevealContent() {
	if c.surface == nil {
		return
	}
	c.surface.SetVisible(domain.ElementLoadingIndicator, false)
	c.surface.SetVisible(domain.ElementContent, true)
}

func (c *SessionClient) IsAuthorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorized && c.identity != nil
}

func (c *SessionClient) CurrentUserID() (domain.UserID, bool) {
	identity, ok := c.currentIdentity()
	if !ok {
		return "", false
	}
	return identity.ID, true
}

func (c *SessionClient) CurrentUsername() (string, bool) {
	identity, ok := c.currentIdentity()
	if !ok || identity.Username == "" {
		return "", false
	}
	return identity.Username, true
}

func (c *SessionClient) Identity() (domain.Identity, bool) {
	return c.currentIdentity()
}

func (c *SessionClient) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *SessionClient) LastActivityAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivityAt
}

func (c *SessionClient) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HeartbeatActive reports whether the heartbeat ticker is running.
func (c *SessionClient) HeartbeatActive() bool {
	c.mu.Lock()
	hb := c.heartbeat
	c.mu.Unlock()
	return hb != nil && !hb.stopped()
}

func (c *SessionClient) currentIdentity() (domain.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return domain.Identity{}, false
	}
	return *c.identity, true
}

func (c *SessionClient) touch() {
	now := c.clock.Now()
	c.mu.Lock()
	c.lastActivityAt = now
	c.mu.Unlock()
}

func (c *SessionClient) setState(state domain.State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

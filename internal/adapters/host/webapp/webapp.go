package webapp

import (
	"io"
	"log"
	"sync"

	"github.com/bnema/tgsession/internal/ports"
)

type Config struct {
	InitData string
	Platform string
	Logger   *log.Logger
}

// WebApp is a host bridge replayed from a stored init-data payload. It
// stands in for the messenger's WebApp object when the page runs in a
// terminal.
type WebApp struct {
	initData string
	unsafe   ports.InitDataUnsafe
	platform string
	logger   *log.Logger
	back     *BackButton

	mu       sync.Mutex
	ready    bool
	expanded bool
	handlers map[string][]func()
}

var (
	_ ports.Host               = (*WebApp)(nil)
	_ ports.EventSource        = (*WebApp)(nil)
	_ ports.BackButtonProvider = (*WebApp)(nil)
)

func New(cfg Config) (*WebApp, error) {
	unsafe, err := ParseInitData(cfg.InitData)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	platform := cfg.Platform
	if platform == "" {
		platform = "tdesktop"
	}

	return &WebApp{
		initData: cfg.InitData,
		unsafe:   unsafe,
		platform: platform,
		logger:   logger,
		back:     &BackButton{},
		handlers: map[string][]func(){},
	}, nil
}

func (w *WebApp) Ready() {
	w.mu.Lock()
	w.ready = true
	w.mu.Unlock()
	w.logger.Printf("[HOST] web app ready (platform %s)", w.platform)
}

func (w *WebApp) Expand() {
	w.mu.Lock()
	w.expanded = true
	w.mu.Unlock()
}

func (w *WebApp) InitData() string {
	return w.initData
}

func (w *WebApp) InitDataUnsafe() ports.InitDataUnsafe {
	unsafe := w.unsafe
	if unsafe.User != nil {
		user := *unsafe.User
		unsafe.User = &user
	}
	return unsafe
}

func (w *WebApp) Platform() string {
	return w.platform
}

func (w *WebApp) IsReady() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

func (w *WebApp) IsExpanded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expanded
}

func (w *WebApp) OnEvent(name string, handler func()) {
	if handler == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[name] = append(w.handlers[name], handler)
}

// Emit runs the handlers registered for name, in registration order.
func (w *WebApp) Emit(name string) {
	w.mu.Lock()
	handlers := append([]func(){}, w.handlers[name]...)
	w.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

func (w *WebApp) BackButton() ports.BackButton {
	return w.back
}

// Back presses the host back button.
func (w *WebApp) Back() {
	w.back.Click()
}

type BackButton struct {
	mu       sync.Mutex
	handlers []func()
}

func (b *BackButton) OnClick(handler func()) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *BackButton) Click() {
	b.mu.Lock()
	handlers := append([]func(){}, b.handlers...)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

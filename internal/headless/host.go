// Package headless hosts the document in a headless Chrome page driven over
// the DevTools protocol. Native→document calls are script evaluations;
// document→native messages arrive through an exposed page binding.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-markdown-view/internal/bridge"
	"go-markdown-view/internal/contracts"
	"go-markdown-view/internal/render"
	"go-markdown-view/internal/style"

	"github.com/npillmayer/schuko/tracing"
)

// Sentinel errors for browser startup.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrNotLoaded      = errors.New("document not loaded")
)

// Defaults for Options fields left at zero.
const (
	DefaultWidth   = 800
	DefaultTimeout = 30 * time.Second
)

// bindingName is the page global the document posts its messages through.
const bindingName = "mdviewPost"

const (
	scriptSetContent = `(markdown, html) => window.mdview.setContent(markdown, html)`
	scriptSetTheme   = `(theme) => window.mdview.setTheme(theme)`
	scriptSetPadding = `(edge, value) => window.mdview.setPadding(edge, value)`
	scriptAttach     = `() => window.mdview.attach()`
)

func tracer() tracing.Trace {
	return tracing.Select("mdview.headless")
}

// Options configures the browser page.
type Options struct {
	// Width is the viewport width in CSS pixels, the width proposed to the
	// document's layout.
	Width int
	// Timeout bounds browser launch and page load.
	Timeout time.Duration
	// BrowserBin selects a pre-installed browser binary.
	BrowserBin string
	// NoSandbox disables the Chrome sandbox (containers, CI).
	NoSandbox bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// documentPage is the part of a browser page the host drives.
type documentPage interface {
	Eval(script string, args ...any) error
	Screenshot() ([]byte, error)
	Close() error
}

// pageOpener loads shell into a fresh page and routes every message the
// document posts to receive.
type pageOpener func(ctx context.Context, opts Options, shell string, receive func(raw []byte)) (documentPage, error)

var _ bridge.Host = (*Host)(nil)

// Host is a bridge.Host backed by a headless browser page.
type Host struct {
	opts     Options
	renderer *render.Renderer
	events   bridge.Events
	open     pageOpener

	mu     sync.Mutex
	page   documentPage
	closed bool
}

// NewHost returns a host that launches Chrome on Load.
func NewHost(opts Options, renderer *render.Renderer, events bridge.Events) *Host {
	return newHost(opts, renderer, events, openRodPage)
}

func newHost(opts Options, renderer *render.Renderer, events bridge.Events, open pageOpener) *Host {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &Host{
		opts:     opts.withDefaults(),
		renderer: renderer,
		events:   events,
		open:     open,
	}
}

// Load opens the page, installs the message binding and attaches the
// document harness.
func (h *Host) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.page != nil {
		return nil
	}
	if h.closed {
		return ErrNotLoaded
	}

	shell, err := h.renderer.Shell()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	page, err := h.open(ctx, h.opts, shell, h.receive)
	if err != nil {
		return err
	}
	if err := page.Eval(scriptAttach); err != nil {
		_ = page.Close()
		return fmt.Errorf("%w: attaching harness: %v", ErrPageLoad, err)
	}
	h.page = page
	return nil
}

// SetContent renders text and injects it into the page.
func (h *Host) SetContent(text string) {
	fragment, err := h.renderer.ConvertFragment([]byte(text))
	if err != nil {
		tracer().Errorf("rendering markdown: %v", err)
		return
	}
	h.eval("set content", scriptSetContent, text, fragment)
}

func (h *Host) SetTheme(theme style.Theme) {
	h.eval("set theme", scriptSetTheme, theme.String())
}

func (h *Host) SetPadding(edge style.Edge, value float64) {
	h.eval("set padding", scriptSetPadding, edge.String(), value)
}

// Screenshot captures the full rendered document as PNG.
func (h *Host) Screenshot() ([]byte, error) {
	h.mu.Lock()
	page := h.page
	h.mu.Unlock()
	if page == nil {
		return nil, ErrNotLoaded
	}
	return page.Screenshot()
}

// Close releases the page and its browser. Calling Close more than once is
// safe.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.page == nil {
		return nil
	}
	err := h.page.Close()
	h.page = nil
	return err
}

// eval runs script against the page, logging and swallowing any failure.
func (h *Host) eval(op, script string, args ...any) {
	h.mu.Lock()
	page := h.page
	h.mu.Unlock()
	if page == nil {
		tracer().Debugf("%s: document not loaded, dropping update", op)
		return
	}
	if err := page.Eval(script, args...); err != nil {
		tracer().Errorf("%s: %v", op, err)
	}
}

// receive decodes one document message and forwards it to the events. A
// document edit is rendered back into the page, which has no converter of
// its own.
func (h *Host) receive(raw []byte) {
	msg, err := contracts.Decode(raw)
	if err != nil {
		tracer().Errorf("dropping page message: %v", err)
		return
	}
	switch m := msg.(type) {
	case contracts.ContentChangedMessage:
		h.SetContent(m.Text)
		if h.events != nil {
			h.events.ContentChanged(m.Text)
		}
	case contracts.HeightChangedMessage:
		if h.events != nil {
			h.events.HeightChanged(m.Height)
		}
	}
}

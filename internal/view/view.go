// Package view binds a declarative configuration (content, theme override,
// padding) to a web document host and reports the document's measured height
// as the view's intrinsic size.
//
// One View owns one bridge session: a Host, a Controller and the loop both
// run on. Platforms differ only in how they create the Host; everything
// else, including the layout query, is shared.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-markdown-view/internal/bridge"
	"go-markdown-view/internal/loop"
	"go-markdown-view/internal/store"
	"go-markdown-view/internal/style"

	"github.com/npillmayer/schuko/tracing"
)

// Sentinel errors for view construction.
var (
	ErrNilPlatform = errors.New("platform cannot be nil")
	ErrNilContent  = errors.New("content binding cannot be nil")
	ErrCreateHost  = errors.New("failed to create document host")
)

func tracer() tracing.Trace {
	return tracing.Select("mdview.view")
}

// Platform creates the web document host for one view. Tearing the host
// down is Host.Close.
type Platform interface {
	Name() string
	CreateHost(events bridge.Events) (bridge.Host, error)
}

// Config is the declarative configuration surface. A nil Theme means "follow
// the ambient appearance".
type Config struct {
	Theme   *style.Theme
	Padding style.PaddingSpec
}

// ProposedSize is a layout proposal. A nil dimension is unconstrained.
type ProposedSize struct {
	Width  *float64
	Height *float64
}

// Size is a resolved view size.
type Size struct {
	Width  float64
	Height float64
}

// Option customises a View.
type Option func(*View)

// WithAppearance sets the ambient appearance used when Config.Theme is nil.
// The default reads the terminal background.
func WithAppearance(a style.Appearance) Option {
	return func(v *View) { v.appearance = a }
}

// WithLayoutInvalidation registers fn to be called, on the view's loop, each
// time the measured height changes. fn must not call Close directly, since
// Close waits for the loop; closing from fn has to happen on another
// goroutine (go v.Close()).
func WithLayoutInvalidation(fn func(height float64)) Option {
	return func(v *View) { v.onInvalidate = fn }
}

// View is the platform-agnostic view adapter.
type View struct {
	platform     Platform
	content      store.Binding
	appearance   style.Appearance
	onInvalidate func(height float64)

	loop *loop.Loop
	host bridge.Host

	// Owned by the loop.
	ctrl *bridge.Controller
	cfg  Config

	mu     sync.Mutex
	height float64

	stopObserving func()
	closeOnce     sync.Once
	closeErr      error
}

// New creates the host, loads the document and applies content, theme and
// padding. A document that fails to load is logged and leaves the view
// inert; only a failure to create the host is returned.
func New(ctx context.Context, platform Platform, content store.Binding, cfg Config, opts ...Option) (*View, error) {
	if platform == nil {
		return nil, ErrNilPlatform
	}
	if content == nil {
		return nil, ErrNilContent
	}

	v := &View{
		platform:   platform,
		content:    content,
		appearance: style.TerminalAppearance,
		cfg:        cfg,
		loop:       loop.New(),
	}
	for _, opt := range opts {
		opt(v)
	}

	host, err := platform.CreateHost(&events{loop: v.loop, view: v})
	if err != nil {
		v.loop.Close()
		return nil, fmt.Errorf("%w: %v", ErrCreateHost, err)
	}
	v.host = host

	if err := v.loop.Call(ctx, func() { v.start(ctx) }); err != nil {
		_ = v.Close()
		return nil, err
	}

	if obs, ok := content.(store.Observable); ok {
		v.stopObserving = obs.Observe(func(string) {
			v.loop.Post(v.refresh)
		})
	}
	return v, nil
}

// start runs once on the loop: load, then apply the initial configuration.
func (v *View) start(ctx context.Context) {
	target := v.host
	if err := v.host.Load(ctx); err != nil {
		tracer().Errorf("%s: document failed to load: %v", v.platform.Name(), err)
		target = bridge.Discard
	}
	v.ctrl = bridge.NewController(target, v.content, v.heightChanged)
	v.apply()
}

// apply issues the deltas between the current and the applied configuration.
func (v *View) apply() {
	v.ctrl.PushContent(v.content.Get())
	v.ctrl.ApplyTheme(style.Effective(v.cfg.Theme, v.appearance))
	v.ctrl.ApplyPadding(v.cfg.Padding)
}

func (v *View) refresh() {
	if v.ctrl != nil {
		v.apply()
	}
}

// Update runs a configuration pass with cfg. It does not wait for the pass
// to complete.
func (v *View) Update(cfg Config) {
	v.loop.Post(func() {
		v.cfg = cfg
		v.refresh()
	})
}

// Refresh re-runs a configuration pass, picking up content written to a
// non-observable binding or a changed ambient appearance.
func (v *View) Refresh() {
	v.loop.Post(v.refresh)
}

// Sync waits until every previously posted operation has run.
func (v *View) Sync(ctx context.Context) error {
	return v.loop.Call(ctx, func() {})
}

// Height returns the most recently measured content height.
func (v *View) Height() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// SizeThatFits answers a layout proposal. With a known width it returns that
// width and the measured height; otherwise it declines.
func (v *View) SizeThatFits(proposal ProposedSize) (Size, bool) {
	if proposal.Width == nil {
		return Size{}, false
	}
	return Size{Width: *proposal.Width, Height: v.Height()}, true
}

// Close disposes the session: the controller stops reacting, pending
// callbacks are dropped and the host is released. It must not be called
// from a layout invalidation callback.
func (v *View) Close() error {
	v.closeOnce.Do(func() {
		if v.stopObserving != nil {
			v.stopObserving()
		}
		_ = v.loop.Call(context.Background(), func() {
			if v.ctrl != nil {
				v.ctrl.Dispose()
			}
		})
		v.loop.Close()
		if v.host != nil {
			v.closeErr = v.host.Close()
		}
	})
	return v.closeErr
}

func (v *View) heightChanged(height float64) {
	v.mu.Lock()
	v.height = height
	v.mu.Unlock()
	if v.onInvalidate != nil {
		v.onInvalidate(height)
	}
}

// events moves host callbacks onto the view's loop. Callbacks arriving after
// Close are dropped by the loop.
type events struct {
	loop *loop.Loop
	view *View
}

func (e *events) ContentChanged(text string) {
	e.loop.Post(func() {
		if e.view.ctrl != nil {
			e.view.ctrl.ContentChanged(text)
		}
	})
}

func (e *events) HeightChanged(height float64) {
	e.loop.Post(func() {
		if e.view.ctrl != nil {
			e.view.ctrl.HeightChanged(height)
		}
	})
}

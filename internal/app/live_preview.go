package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-markdown-view/internal/config"
	"go-markdown-view/internal/headless"
	"go-markdown-view/internal/render"
	"go-markdown-view/internal/store"
	httptransport "go-markdown-view/internal/transport/http"
	"go-markdown-view/internal/view"
)

// ErrNoScreenshot is returned by Screenshot on a browser-backed preview.
var ErrNoScreenshot = errors.New("screenshots need the headless platform")

// LivePreview is a coordinator between a content binding, the configuration
// and the view hosting the rendered document.
type LivePreview struct {
	content store.Binding

	mu  sync.Mutex
	cfg view.Config

	view     *view.View
	browser  *httptransport.Platform
	headless *headless.Platform
}

// NewBrowserPreview serves the document to a browser on cfg.Addr. sourcePath,
// if set, resolves relative image links.
func NewBrowserPreview(ctx context.Context, cfg *config.Config, content store.Binding, sourcePath string, opts ...view.Option) (*LivePreview, error) {
	platform := httptransport.NewPlatform(cfg.Addr, render.NewRenderer(), sourcePath)
	s := &LivePreview{content: content, browser: platform}
	if err := s.start(ctx, platform, cfg, opts); err != nil {
		return nil, err
	}
	return s, nil
}

// NewHeadlessPreview renders the document in headless Chrome at
// cfg.Headless.Width.
func NewHeadlessPreview(ctx context.Context, cfg *config.Config, content store.Binding, opts ...view.Option) (*LivePreview, error) {
	timeout, err := cfg.Headless.LoadTimeout()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	platform := headless.NewPlatform(headless.Options{
		Width:      cfg.Headless.Width,
		Timeout:    timeout,
		BrowserBin: cfg.Headless.BrowserBin,
		NoSandbox:  cfg.Headless.NoSandbox,
	}, render.NewRenderer())
	s := &LivePreview{content: content, headless: platform}
	if err := s.start(ctx, platform, cfg, opts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LivePreview) start(ctx context.Context, platform view.Platform, cfg *config.Config, opts []view.Option) error {
	theme, err := cfg.ThemeOverride()
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	s.cfg = view.Config{Theme: theme, Padding: cfg.Padding}

	v, err := view.New(ctx, platform, s.content, s.cfg, opts...)
	if err != nil {
		return err
	}
	s.view = v
	return nil
}

// URL returns the browser URL, or "" for a headless preview.
func (s *LivePreview) URL() string {
	if s.browser == nil {
		return ""
	}
	return s.browser.URL()
}

// PublishSource writes new Markdown from the native side.
func (s *LivePreview) PublishSource(source []byte) {
	s.content.Set(string(source))
	if _, ok := s.content.(store.Observable); !ok {
		s.view.Refresh()
	}
}

// SetTheme switches to "light", "dark" or back to "auto".
func (s *LivePreview) SetTheme(name string) error {
	theme, err := (&config.Config{Theme: name}).ThemeOverride()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Theme = theme
	s.view.Update(s.cfg)
	return nil
}

// Height returns the measured document height.
func (s *LivePreview) Height() float64 {
	return s.view.Height()
}

// Size answers a layout query for the given width.
func (s *LivePreview) Size(width float64) (view.Size, bool) {
	return s.view.SizeThatFits(view.ProposedSize{Width: &width})
}

// Screenshot captures the rendered document as PNG.
func (s *LivePreview) Screenshot() ([]byte, error) {
	if s.headless == nil {
		return nil, ErrNoScreenshot
	}
	return s.headless.Screenshot()
}

// Sync waits for queued bridge operations to finish.
func (s *LivePreview) Sync(ctx context.Context) error {
	return s.view.Sync(ctx)
}

// Close tears down the view and its document host.
func (s *LivePreview) Close() error {
	return s.view.Close()
}

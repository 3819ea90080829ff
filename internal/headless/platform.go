package headless

import (
	"sync"

	"go-markdown-view/internal/bridge"
	"go-markdown-view/internal/render"
)

// Platform creates headless-browser hosts for views.
type Platform struct {
	opts     Options
	renderer *render.Renderer
	open     pageOpener

	mu   sync.Mutex
	host *Host
}

// NewPlatform returns a platform whose hosts launch Chrome with opts.
func NewPlatform(opts Options, renderer *render.Renderer) *Platform {
	return &Platform{opts: opts, renderer: renderer, open: openRodPage}
}

func (p *Platform) Name() string { return "headless" }

// CreateHost returns a new, not yet loaded, Host.
func (p *Platform) CreateHost(events bridge.Events) (bridge.Host, error) {
	h := newHost(p.opts, p.renderer, events, p.open)
	p.mu.Lock()
	p.host = h
	p.mu.Unlock()
	return h, nil
}

// Screenshot captures the document of the most recently created host.
func (p *Platform) Screenshot() ([]byte, error) {
	p.mu.Lock()
	h := p.host
	p.mu.Unlock()
	if h == nil {
		return nil, ErrNotLoaded
	}
	return h.Screenshot()
}

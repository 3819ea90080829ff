package httpserver

import (
	"sync"

	"go-markdown-view/internal/bridge"
	"go-markdown-view/internal/render"
)

// Platform creates browser-backed hosts for views.
type Platform struct {
	addr       string
	sourcePath string
	renderer   *render.Renderer

	mu   sync.Mutex
	host *Host
}

// NewPlatform returns a platform whose hosts listen on addr.
func NewPlatform(addr string, renderer *render.Renderer, sourcePath string) *Platform {
	return &Platform{addr: addr, renderer: renderer, sourcePath: sourcePath}
}

func (p *Platform) Name() string { return "browser" }

// CreateHost returns a new, not yet loaded, Host.
func (p *Platform) CreateHost(events bridge.Events) (bridge.Host, error) {
	h := NewHost(p.addr, p.renderer, events, p.sourcePath)
	p.mu.Lock()
	p.host = h
	p.mu.Unlock()
	return h, nil
}

// URL returns the URL of the most recently created host.
func (p *Platform) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.host == nil {
		return ""
	}
	return p.host.URL()
}

// Package bridgetest provides a recording Host for bridge and view tests.
package bridgetest

import (
	"context"
	"fmt"
	"sync"

	"go-markdown-view/internal/bridge"
	"go-markdown-view/internal/style"
)

var _ bridge.Host = (*Host)(nil)

// Host records every call made to it. LoadErr, if set, is returned by Load.
type Host struct {
	LoadErr error

	mu     sync.Mutex
	calls  []string
	loaded bool
	closed bool
}

func (h *Host) record(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *Host) Load(context.Context) error {
	h.record("load")
	if h.LoadErr != nil {
		return h.LoadErr
	}
	h.mu.Lock()
	h.loaded = true
	h.mu.Unlock()
	return nil
}

func (h *Host) SetContent(text string) { h.record("content %q", text) }

func (h *Host) SetTheme(theme style.Theme) { h.record("theme %s", theme) }

func (h *Host) SetPadding(edge style.Edge, value float64) {
	h.record("padding %s %g", edge, value)
}

func (h *Host) Close() error {
	h.record("close")
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls.
func (h *Host) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// Reset forgets recorded calls.
func (h *Host) Reset() {
	h.mu.Lock()
	h.calls = nil
	h.mu.Unlock()
}

// Closed reports whether Close has been called.
func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

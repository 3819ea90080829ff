// Package bridge keeps a native Markdown binding and an embedded web document
// in step without letting either side echo the other's writes back.
package bridge

import (
	"context"

	"go-markdown-view/internal/style"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("mdview.bridge")
}

// Host is the web document hosting primitive. Set* calls are fire-and-forget:
// a host that is not loaded, failed to load, or is closed ignores them.
// Script failures are logged by the host and never returned.
type Host interface {
	// Load brings up the document shell with its conversion and observation
	// harness. Set* calls only take effect after Load succeeds.
	Load(ctx context.Context) error
	SetContent(text string)
	SetTheme(theme style.Theme)
	SetPadding(edge style.Edge, value float64)
	Close() error
}

// Events receives the document's asynchronous notifications. Hosts may
// deliver them from any goroutine.
type Events interface {
	ContentChanged(text string)
	HeightChanged(height float64)
}

// Discard is a Host that does nothing. It stands in for a host whose
// document failed to load.
var Discard Host = discard{}

type discard struct{}

func (discard) Load(context.Context) error { return nil }
func (discard) SetContent(string) {}
func (discard) SetTheme(style.Theme) {}
func (discard) SetPadding(style.Edge, float64) {}
func (discard) Close() error { return nil }

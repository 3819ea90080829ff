// Package host exposes the preview to Neovim. The current buffer is the
// content binding: document edits are written back into it, and buffer
// changes reach the document through the bridge.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go-markdown-view/internal/app"
	"go-markdown-view/internal/config"
	"go-markdown-view/internal/store"
	"go-markdown-view/internal/style"
	"go-markdown-view/internal/view"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"
	"github.com/npillmayer/schuko/tracing"
)

// ErrNotStarted is returned by commands that need a running preview.
var ErrNotStarted = errors.New("preview not started, run :GoMarkdownViewStart")

func tracer() tracing.Trace {
	return tracing.Select("mdview.nvim")
}

// bufferAPI is the part of the Neovim client the buffer binding needs.
type bufferAPI interface {
	BufferLines(buffer nvim.Buffer, start, end int, strict bool) ([][]byte, error)
	SetBufferLines(buffer nvim.Buffer, start, end int, strict bool, replacement [][]byte) error
}

// bufferBinding caches a buffer's text. Set is only called by the bridge for
// document edits and writes the buffer; native changes go through load.
type bufferBinding struct {
	*store.Value
	api bufferAPI
	buf nvim.Buffer
}

func newBufferBinding(api bufferAPI, buf nvim.Buffer) (*bufferBinding, error) {
	b := &bufferBinding{Value: store.NewValue(""), api: api, buf: buf}
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// load re-reads the buffer.
func (b *bufferBinding) load() error {
	lines, err := b.api.BufferLines(b.buf, 0, -1, true)
	if err != nil {
		return err
	}
	b.Value.Set(string(bytes.Join(lines, []byte("\n"))))
	return nil
}

func (b *bufferBinding) Set(text string) {
	if b.Value.Get() == text {
		return
	}
	lines := bytes.Split([]byte(text), []byte("\n"))
	if err := b.api.SetBufferLines(b.buf, 0, -1, true, lines); err != nil {
		tracer().Errorf("writing document edit to buffer %d: %v", b.buf, err)
		return
	}
	b.Value.Set(text)
}

// Commands is a state container for Neovim command handlers.
type Commands struct {
	cfg *config.Config

	mu      sync.Mutex
	preview *app.LivePreview
	buffer  *bufferBinding

	// background is read from the view's loop without c.mu.
	background atomic.Int32
}

func NewCommands(cfg *config.Config) *Commands {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Commands{cfg: cfg}
}

// Register registers Neovim command/function handlers.
func Register(p *plugin.Plugin, cfg *config.Config) error {
	commands := NewCommands(cfg)

	p.Handle("poll", func() (string, error) {
		return "ok", nil
	})

	p.HandleCommand(&plugin.CommandOptions{
		Name: "GoMarkdownViewStart",
	}, commands.GoMarkdownViewStart)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "GoMarkdownViewStop",
	}, commands.GoMarkdownViewStop)

	p.HandleCommand(&plugin.CommandOptions{
		Name:  "GoMarkdownViewTheme",
		NArgs: "1",
	}, commands.GoMarkdownViewTheme)

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "GoMarkdownViewInternalUpdate",
	}, commands.GoMarkdownViewUpdate)

	return nil
}

// GoMarkdownViewStart opens a preview of the current buffer, replacing any
// preview already running.
func (c *Commands) GoMarkdownViewStart(v *nvim.Nvim) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	buf, err := v.CurrentBuffer()
	if err != nil {
		return err
	}
	binding, err := newBufferBinding(v, buf)
	if err != nil {
		return err
	}
	path, err := v.BufferName(buf)
	if err != nil {
		return err
	}
	c.background.Store(int32(readBackground(v)))

	preview, err := app.NewBrowserPreview(context.Background(), c.cfg, binding, path,
		view.WithAppearance(c.appearance))
	if err != nil {
		return err
	}
	c.preview = preview
	c.buffer = binding

	return v.Command(fmt.Sprintf(`echom "[go-markdown-view] preview: %s"`, preview.URL()))
}

// GoMarkdownViewStop closes the running preview, if any.
func (c *Commands) GoMarkdownViewStop(v *nvim.Nvim) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return nil
}

// GoMarkdownViewTheme switches the document theme; "auto" follows
// 'background'.
func (c *Commands) GoMarkdownViewTheme(v *nvim.Nvim, args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == nil {
		return ErrNotStarted
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if strings.EqualFold(name, config.ThemeAuto) {
		c.background.Store(int32(readBackground(v)))
	}
	return c.preview.SetTheme(name)
}

// GoMarkdownViewUpdate re-reads the previewed buffer after a change.
func (c *Commands) GoMarkdownViewUpdate(v *nvim.Nvim) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffer == nil {
		return nil
	}
	return c.buffer.load()
}

func (c *Commands) stopLocked() {
	if c.preview == nil {
		return
	}
	if err := c.preview.Close(); err != nil {
		tracer().Errorf("closing preview: %v", err)
	}
	c.preview = nil
	c.buffer = nil
}

// appearance runs on the view's loop and must not take c.mu.
func (c *Commands) appearance() style.Theme {
	return style.Theme(c.background.Load())
}

// readBackground maps Neovim's 'background' option to a theme.
func readBackground(v *nvim.Nvim) style.Theme {
	var bg string
	if err := v.Option("background", &bg); err != nil {
		tracer().Errorf("reading 'background': %v", err)
		return style.Light
	}
	if bg == "dark" {
		return style.Dark
	}
	return style.Light
}

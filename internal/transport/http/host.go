// Package httpserver hosts the document in a browser and carries all message
// traffic between the bridge and the page over a WebSocket.
package httpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-markdown-view/internal/bridge"
	"go-markdown-view/internal/contracts"
	"go-markdown-view/internal/render"
	"go-markdown-view/internal/style"

	"github.com/gorilla/websocket"
	"github.com/npillmayer/schuko/tracing"
)

// Sentinel errors for host startup.
var (
	ErrListen = errors.New("failed to listen")
	ErrShell  = errors.New("failed to build document shell")
)

const (
	writeWait       = 5 * time.Second
	shutdownTimeout = 2 * time.Second
)

func tracer() tracing.Trace {
	return tracing.Select("mdview.http")
}

var _ bridge.Host = (*Host)(nil)

// Host is a bridge.Host whose document lives in a browser tab connected over
// WebSocket. Only the most recently connected tab is driven; on every
// (re)connect the last content, theme and padding are replayed.
type Host struct {
	addr       string
	sourcePath string
	renderer   *render.Renderer
	events     bridge.Events

	mu      sync.Mutex
	started bool
	closed  bool
	server  *http.Server
	url     string
	shell   string

	outbound   chan any
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	inbound    chan []byte
	stopLoop   chan struct{}
	loopDone   chan struct{}

	upgrader websocket.Upgrader
}

// NewHost creates a host that will listen on addr once loaded. sourcePath,
// if set, resolves relative image links.
func NewHost(addr string, renderer *render.Renderer, events bridge.Events, sourcePath string) *Host {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &Host{
		addr:       addr,
		sourcePath: sourcePath,
		renderer:   renderer,
		events:     events,

		outbound:   make(chan any, 32),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		inbound:    make(chan []byte, 64),
		stopLoop:   make(chan struct{}),
		loopDone:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// URL returns the browser URL, or "" before Load succeeds.
func (h *Host) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.url
}

// Load binds the listener and starts serving the document shell. Calling
// Load again after success is a no-op.
func (h *Host) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	if h.closed {
		return net.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shell, err := h.renderer.Shell()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShell, err)
	}
	h.shell = shell

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc(render.AssetPrefix, h.handleAsset)

	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	h.url = "http://" + ln.Addr().String()
	h.started = true

	go h.runLoop()
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tracer().Errorf("preview server stopped: %v", err)
		}
	}()
	tracer().Infof("preview: %s", h.url)
	return nil
}

// SetContent renders text and sends it to the page.
func (h *Host) SetContent(text string) {
	if !h.ready() {
		return
	}
	if msg := h.render(text); msg != nil {
		h.send(*msg)
	}
}

// SetTheme sends the theme flag to the page.
func (h *Host) SetTheme(theme style.Theme) {
	if !h.ready() {
		return
	}
	h.send(contracts.SetThemeMessage{Type: contracts.MessageTypeSetTheme, Theme: theme.String()})
}

// SetPadding sends one padding edge to the page.
func (h *Host) SetPadding(edge style.Edge, value float64) {
	if !h.ready() {
		return
	}
	h.send(contracts.SetPaddingMessage{Type: contracts.MessageTypeSetPadding, Edge: edge.String(), Value: value})
}

// Close gracefully shuts down the HTTP server and run loop.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	started := h.started
	server := h.server
	h.mu.Unlock()

	if !started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Shutdown(ctx)

	close(h.stopLoop)
	<-h.loopDone
	return err
}

func (h *Host) ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started || h.closed {
		tracer().Debugf("document not loaded, dropping update")
		return false
	}
	return true
}

func (h *Host) send(msg any) {
	select {
	case h.outbound <- msg:
	case <-h.stopLoop:
	}
}

// handleIndex serves the document shell.
func (h *Host) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(h.shell))
}

// handleWS upgrades the connection and forwards page messages to the loop.
func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		tracer().Errorf("websocket upgrade: %v", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.stopLoop:
		_ = conn.Close()
		return
	}
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.stopLoop:
		}
	}()

	// Block here until the connection closes or errors out.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case h.inbound <- msg:
		case <-h.stopLoop:
			return
		}
	}
}

// handleAsset serves local markdown assets via encoded absolute paths.
func (h *Host) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, render.AssetPrefix)
	if id == "" {
		http.NotFound(w, r)
		return
	}

	decoded, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	assetPath := filepath.Clean(string(decoded))
	if assetPath == "." || !filepath.IsAbs(assetPath) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(assetPath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, assetPath)
}

// documentState is the last value of every outbound message kind, replayed
// to each newly connected page.
type documentState struct {
	content *contracts.SetContentMessage
	theme   *contracts.SetThemeMessage
	padding map[string]contracts.SetPaddingMessage
}

func (s *documentState) record(msg any) {
	switch m := msg.(type) {
	case contracts.SetContentMessage:
		s.content = &m
	case contracts.SetThemeMessage:
		s.theme = &m
	case contracts.SetPaddingMessage:
		s.padding[m.Edge] = m
	}
}

func (s *documentState) replay() []any {
	var out []any
	if s.content != nil {
		out = append(out, *s.content)
	}
	if s.theme != nil {
		out = append(out, *s.theme)
	}
	for _, edge := range style.Edges {
		if m, ok := s.padding[edge.String()]; ok {
			out = append(out, m)
		}
	}
	return out
}

// runLoop serializes state updates and websocket writes on a single goroutine.
func (h *Host) runLoop() {
	defer close(h.loopDone)

	var conn *websocket.Conn
	state := documentState{padding: make(map[string]contracts.SetPaddingMessage)}

	for {
		select {
		case msg := <-h.outbound:
			state.record(msg)
			if conn == nil {
				continue
			}
			if !writeJSON(conn, msg) {
				conn = nil
			}

		case c := <-h.register:
			if conn != nil {
				_ = conn.Close()
			}
			conn = c
			for _, msg := range state.replay() {
				if !writeJSON(conn, msg) {
					conn = nil
					break
				}
			}

		case c := <-h.unregister:
			if conn == c {
				_ = conn.Close()
				conn = nil
			}

		case raw := <-h.inbound:
			rendered := h.dispatch(raw)
			if rendered == nil {
				continue
			}
			state.record(*rendered)
			if conn != nil && !writeJSON(conn, *rendered) {
				conn = nil
			}

		case <-h.stopLoop:
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
	}
}

// dispatch forwards a decoded page message to the bridge events. A document
// edit is rendered first and returned, so the page shows the new HTML and
// later connections replay the edited text rather than the last push.
func (h *Host) dispatch(raw []byte) *contracts.SetContentMessage {
	msg, err := contracts.Decode(raw)
	if err != nil {
		tracer().Errorf("dropping page message: %v", err)
		return nil
	}
	var rendered *contracts.SetContentMessage
	switch m := msg.(type) {
	case contracts.ContentChangedMessage:
		rendered = h.render(m.Text)
		if h.events != nil {
			h.events.ContentChanged(m.Text)
		}
	case contracts.HeightChangedMessage:
		if h.events != nil {
			h.events.HeightChanged(m.Height)
		}
	}
	return rendered
}

// render converts text into a set_content message, or nil if it fails.
func (h *Host) render(text string) *contracts.SetContentMessage {
	fragment, err := h.renderer.ConvertFragmentWithSourcePath([]byte(text), h.sourcePath)
	if err != nil {
		tracer().Errorf("rendering markdown: %v", err)
		return nil
	}
	return &contracts.SetContentMessage{
		Type:     contracts.MessageTypeSetContent,
		Markdown: text,
		HTML:     fragment,
	}
}

// writeJSON writes a JSON message and reports whether the connection is usable.
func writeJSON(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		tracer().Errorf("websocket write: %v", err)
		_ = conn.Close()
		return false
	}
	return true
}

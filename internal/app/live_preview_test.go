package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"go-markdown-view/internal/config"
	"go-markdown-view/internal/contracts"
	"go-markdown-view/internal/store"
	"go-markdown-view/internal/style"
	"go-markdown-view/internal/view"

	"github.com/gorilla/websocket"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browserPreview(t *testing.T, content *store.Value) *LivePreview {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Padding = style.PaddingSpec{All: style.Float(12)}

	s, err := NewBrowserPreview(context.Background(), cfg, content, "", view.WithAppearance(style.Fixed(style.Light)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func connect(t *testing.T, s *LivePreview) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL(), "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// next reads messages until one of the wanted type arrives.
func next(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["type"] == msgType {
			return msg
		}
	}
}

func TestBrowserPreviewEndToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.view")
	defer teardown()

	content := store.NewValue("# Hello")
	s := browserPreview(t, content)
	conn := connect(t, s)

	msg := next(t, conn, contracts.MessageTypeSetContent)
	assert.Equal(t, "# Hello", msg["markdown"])
	assert.Equal(t, "light", next(t, conn, contracts.MessageTypeSetTheme)["theme"])
	assert.Equal(t, 12.0, next(t, conn, contracts.MessageTypeSetPadding)["value"])

	require.NoError(t, conn.WriteJSON(contracts.ContentChangedMessage{
		Type: contracts.MessageTypeContentChanged,
		Text: "# Hello<br/>",
	}))
	require.Eventually(t, func() bool { return content.Get() == "# Hello<br/>" }, 2*time.Second, 10*time.Millisecond)
	edited := next(t, conn, contracts.MessageTypeSetContent)
	assert.Equal(t, "# Hello<br/>", edited["markdown"])
	assert.Contains(t, edited["html"], "<br/>")

	require.NoError(t, conn.WriteJSON(contracts.HeightChangedMessage{
		Type:   contracts.MessageTypeHeightChanged,
		Height: 64,
	}))
	require.Eventually(t, func() bool { return s.Height() == 64 }, 2*time.Second, 10*time.Millisecond)
	size, ok := s.Size(300)
	require.True(t, ok)
	assert.Equal(t, 64.0, size.Height)

	s.PublishSource([]byte("## Native"))
	assert.Equal(t, "## Native", next(t, conn, contracts.MessageTypeSetContent)["markdown"])

	require.NoError(t, s.SetTheme("dark"))
	assert.Equal(t, "dark", next(t, conn, contracts.MessageTypeSetTheme)["theme"])
	assert.Error(t, s.SetTheme("sepia"))
}

func TestBrowserPreviewHasNoScreenshot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.view")
	defer teardown()

	s := browserPreview(t, store.NewValue(""))
	_, err := s.Screenshot()
	assert.ErrorIs(t, err, ErrNoScreenshot)
	require.NoError(t, s.Sync(context.Background()))
}

func TestNewBrowserPreviewRejectsBadTheme(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Theme = "sepia"

	_, err := NewBrowserPreview(context.Background(), cfg, store.NewValue(""), "")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBrowserPreviewReconnectSeesDocumentEdit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.view")
	defer teardown()

	content := store.NewValue("# Hello")
	s := browserPreview(t, content)
	conn := connect(t, s)
	require.Equal(t, "# Hello", next(t, conn, contracts.MessageTypeSetContent)["markdown"])

	require.NoError(t, conn.WriteJSON(contracts.ContentChangedMessage{
		Type: contracts.MessageTypeContentChanged,
		Text: "# Edited",
	}))
	require.Eventually(t, func() bool { return content.Get() == "# Edited" }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Sync(context.Background()))

	second := connect(t, s)
	msg := next(t, second, contracts.MessageTypeSetContent)
	assert.Equal(t, "# Edited", msg["markdown"])
	assert.Contains(t, msg["html"], `<h1 id="edited">Edited</h1>`)
	assert.Equal(t, content.Get(), msg["markdown"])
}

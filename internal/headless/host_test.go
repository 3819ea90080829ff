package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go-markdown-view/internal/style"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	mu      sync.Mutex
	scripts []string
	evalErr error
	closed  bool
}

func (p *fakePage) Eval(script string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts = append(p.scripts, fmt.Sprintf("%s %v", script, args))
	return p.evalErr
}

func (p *fakePage) Screenshot() ([]byte, error) { return []byte("png"), nil }

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

func (p *fakePage) Scripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.scripts...)
}

type fakeEvents struct {
	content []string
	heights []float64
}

func (e *fakeEvents) ContentChanged(text string)   { e.content = append(e.content, text) }
func (e *fakeEvents) HeightChanged(height float64) { e.heights = append(e.heights, height) }

// opener returns a pageOpener serving page and capturing the receive hook.
func opener(page *fakePage, receive *func([]byte), gotOpts *Options) pageOpener {
	return func(_ context.Context, opts Options, shell string, recv func([]byte)) (documentPage, error) {
		if shell == "" {
			return nil, errors.New("empty shell")
		}
		*receive = recv
		if gotOpts != nil {
			*gotOpts = opts
		}
		return page, nil
	}
}

func TestHostLoadAttachesHarness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{}
	var receive func([]byte)
	var opts Options
	h := newHost(Options{}, nil, nil, opener(page, &receive, &opts))

	require.NoError(t, h.Load(context.Background()))
	require.NoError(t, h.Load(context.Background()))

	assert.Equal(t, []string{scriptAttach + " []"}, page.Scripts())
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.NotNil(t, receive)
}

func TestHostEvaluatesOperations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{}
	var receive func([]byte)
	h := newHost(Options{Width: 300}, nil, nil, opener(page, &receive, nil))
	require.NoError(t, h.Load(context.Background()))

	h.SetContent("# Hello")
	h.SetTheme(style.Dark)
	h.SetPadding(style.Top, 10)

	scripts := page.Scripts()
	require.Len(t, scripts, 4)
	assert.Contains(t, scripts[1], scriptSetContent)
	assert.Contains(t, scripts[1], `<h1 id="hello">Hello</h1>`)
	assert.Equal(t, scriptSetTheme+" [dark]", scripts[2])
	assert.Equal(t, scriptSetPadding+" [top 10]", scripts[3])
}

func TestHostSwallowsScriptErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{}
	var receive func([]byte)
	h := newHost(Options{}, nil, nil, opener(page, &receive, nil))
	require.NoError(t, h.Load(context.Background()))

	page.evalErr = errors.New("ReferenceError: mdview is not defined")
	assert.NotPanics(t, func() {
		h.SetContent("x")
		h.SetTheme(style.Light)
	})

	page.evalErr = nil
	h.SetPadding(style.Left, 2)
	assert.Len(t, page.Scripts(), 4)
}

func TestHostLoadFailureLeavesHostInert(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	h := newHost(Options{}, nil, nil, func(context.Context, Options, string, func([]byte)) (documentPage, error) {
		return nil, ErrBrowserConnect
	})

	require.ErrorIs(t, h.Load(context.Background()), ErrBrowserConnect)
	assert.NotPanics(t, func() {
		h.SetContent("x")
		h.SetTheme(style.Dark)
		h.SetPadding(style.Top, 1)
	})
	_, err := h.Screenshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.NoError(t, h.Close())
}

func TestHostAttachFailureClosesPage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{evalErr: errors.New("boom")}
	var receive func([]byte)
	h := newHost(Options{}, nil, nil, opener(page, &receive, nil))

	require.ErrorIs(t, h.Load(context.Background()), ErrPageLoad)
	assert.True(t, page.closed)
}

func TestHostForwardsDocumentMessages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{}
	var receive func([]byte)
	events := &fakeEvents{}
	h := newHost(Options{}, nil, events, opener(page, &receive, nil))
	require.NoError(t, h.Load(context.Background()))

	receive([]byte(`{"type":"height_changed","height":64}`))
	receive([]byte(`{"type":"content_changed","text":"# Hello<br/>"}`))
	receive([]byte(`{"type":"bogus"}`))

	assert.Equal(t, []float64{64}, events.heights)
	assert.Equal(t, []string{"# Hello<br/>"}, events.content)
}

func TestHostRendersDocumentEdits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{}
	var receive func([]byte)
	events := &fakeEvents{}
	h := newHost(Options{}, nil, events, opener(page, &receive, nil))
	require.NoError(t, h.Load(context.Background()))

	receive([]byte(`{"type":"content_changed","text":"# Edited"}`))

	scripts := page.Scripts()
	require.Len(t, scripts, 2)
	assert.Contains(t, scripts[1], scriptSetContent)
	assert.Contains(t, scripts[1], `<h1 id="edited">Edited</h1>`)
	assert.Equal(t, []string{"# Edited"}, events.content)
}

func TestHostCloseAfterLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.headless")
	defer teardown()

	page := &fakePage{}
	var receive func([]byte)
	h := newHost(Options{}, nil, nil, opener(page, &receive, nil))
	require.NoError(t, h.Load(context.Background()))

	png, err := h.Screenshot()
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.True(t, page.closed)

	h.SetContent("late")
	assert.Len(t, page.Scripts(), 1)
	assert.ErrorIs(t, h.Load(context.Background()), ErrNotLoaded)
}

func TestPlatform(t *testing.T) {
	page := &fakePage{}
	var receive func([]byte)
	p := NewPlatform(Options{}, nil)
	p.open = opener(page, &receive, nil)
	assert.Equal(t, "headless", p.Name())

	_, err := p.Screenshot()
	require.ErrorIs(t, err, ErrNotLoaded)

	host, err := p.CreateHost(nil)
	require.NoError(t, err)
	require.NoError(t, host.Load(context.Background()))
	png, err := p.Screenshot()
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

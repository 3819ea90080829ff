package headless

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// viewportHeight only bounds the initial paint; the document reports its own
// content height independently of it.
const viewportHeight = 600

// rodPage implements documentPage with go-rod.
type rodPage struct {
	browser    *rod.Browser
	page       *rod.Page
	stopExpose func() error
}

var _ documentPage = (*rodPage)(nil)

// openRodPage launches Chrome (downloading Chromium on first run if none is
// found), loads shell and exposes the message binding.
func openRodPage(ctx context.Context, opts Options, shell string, receive func(raw []byte)) (documentPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout, err := loadTimeout(ctx, opts.Timeout)
	if err != nil {
		return nil, err
	}
	opts.Timeout = timeout

	l := launcher.New()
	bin := opts.BrowserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	if opts.NoSandbox || os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	p := &rodPage{browser: browser}
	if err := p.load(opts, shell, receive); err != nil {
		_ = browser.Close()
		return nil, err
	}
	return p, nil
}

// loadTimeout shortens timeout to what is left of ctx's deadline.
func loadTimeout(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	if timeout <= 0 || left < timeout {
		return left, nil
	}
	return timeout, nil
}

func (p *rodPage) load(opts Options, shell string, receive func(raw []byte)) error {
	page, err := p.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	p.page = page

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	if err := page.SetDocumentContent(shell); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.Timeout(opts.Timeout).WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	stop, err := page.Expose(bindingName, func(req gson.JSON) (interface{}, error) {
		receive([]byte(req.JSON("", "")))
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: exposing %s: %v", ErrPageLoad, bindingName, err)
	}
	p.stopExpose = stop
	return nil
}

func (p *rodPage) Eval(script string, args ...any) error {
	_, err := p.page.Eval(script, args...)
	return err
}

func (p *rodPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *rodPage) Close() error {
	if p.stopExpose != nil {
		_ = p.stopExpose()
	}
	return p.browser.Close()
}

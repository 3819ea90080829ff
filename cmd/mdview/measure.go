package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go-markdown-view/internal/app"
	"go-markdown-view/internal/logging"
	"go-markdown-view/internal/store"
	"go-markdown-view/internal/view"

	flag "github.com/spf13/pflag"
)

// settleDelay is how long the height must stay unchanged before it is
// reported. Late layout (images, fonts) produces further height messages.
const settleDelay = 250 * time.Millisecond

// ErrNoHeight is returned when the document never reported a height.
var ErrNoHeight = errors.New("document reported no height")

// runMeasure renders FILE headless and prints the height that fits the
// configured width.
func runMeasure(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseMeasureFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	path, err := sourceFile(positional)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common)
	if err != nil {
		return err
	}
	if err := mergeMeasureFlags(flags, cfg); err != nil {
		return err
	}
	if err := logging.Setup(cfg.Trace); err != nil {
		return err
	}
	timeout, _ := cfg.Headless.LoadTimeout() // validated above
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	content := store.NewValue(string(data))

	heights := make(chan float64, 16)
	preview, err := app.NewHeadlessPreview(ctx, cfg, content,
		view.WithLayoutInvalidation(func(h float64) {
			select {
			case heights <- h:
			default:
			}
		}))
	if err != nil {
		return err
	}
	defer func() {
		if err := preview.Close(); err != nil {
			tracer().Errorf("closing preview: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := waitSettled(ctx, heights, settleDelay); err != nil {
		return fmt.Errorf("measuring %s: %w", path, err)
	}

	size, _ := preview.Size(float64(cfg.Headless.Width))
	fmt.Fprintf(env.Stdout, "%g\n", size.Height)

	if flags.screenshot != "" {
		png, err := preview.Screenshot()
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.screenshot, png, 0o644); err != nil { // #nosec G306 -- output image
			return fmt.Errorf("%w: %w", ErrWriteScreenshot, err)
		}
		tracer().Infof("screenshot written to %s", flags.screenshot)
	}
	return nil
}

// waitSettled returns once a height arrived and no further height followed
// within delay. It fails if ctx ends before the first height.
func waitSettled(ctx context.Context, heights <-chan float64, delay time.Duration) error {
	select {
	case <-heights:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrNoHeight
		}
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	for {
		select {
		case <-heights:
			timer.Reset(delay)
		case <-timer.C:
			return nil
		case <-ctx.Done():
			// a height is known; report it rather than failing
			return nil
		}
	}
}

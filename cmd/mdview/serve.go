package main

import (
	"context"
	"errors"
	"fmt"

	"go-markdown-view/internal/app"
	"go-markdown-view/internal/logging"

	flag "github.com/spf13/pflag"
)

// runServe previews FILE in the browser until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args)
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
	if err := mergeServeFlags(flags, cfg); err != nil {
		return err
	}
	if err := logging.Setup(cfg.Trace); err != nil {
		return err
	}
	interval, _ := cfg.PollInterval() // validated above

	content, err := newFileBinding(path, cfg.WriteBack)
	if err != nil {
		return err
	}

	preview, err := app.NewBrowserPreview(ctx, cfg, content, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := preview.Close(); err != nil {
			tracer().Errorf("closing preview: %v", err)
		}
	}()

	url := preview.URL()
	if url == "" {
		return fmt.Errorf("serving %s: preview did not start, see log", path)
	}
	fmt.Fprintf(env.Stdout, "Previewing %s at %s\n", path, url)
	if cfg.WriteBack {
		tracer().Infof("document edits are saved to %s", path)
	}
	tracer().Debugf("watching %s every %s", path, interval)

	go content.watch(ctx, interval)
	<-ctx.Done()
	return nil
}

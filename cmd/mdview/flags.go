package main

import (
	"errors"
	"fmt"

	"go-markdown-view/internal/config"
	"go-markdown-view/internal/style"

	flag "github.com/spf13/pflag"
)

// Sentinel errors for command-line handling.
var (
	ErrUsage           = errors.New("usage error")
	ErrReadMarkdown    = errors.New("failed to read markdown")
	ErrWriteScreenshot = errors.New("failed to write screenshot")
)

// paddingUnset marks a padding flag that was not given. Negative padding is
// rejected by config validation, so the sentinel never collides with a
// usable value.
const paddingUnset = -999.0

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	trace   string
	verbose bool
}

// styleFlags holds theme and padding flags. Padding values are applied only
// when the flag was given, so an explicit 0 overrides the config file.
type styleFlags struct {
	theme   string
	padding float64
	top     float64
	bottom  float64
	left    float64
	right   float64
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    commonFlags
	style     styleFlags
	addr      string
	poll      string
	writeBack bool
}

// measureFlags holds all flags for the measure command.
type measureFlags struct {
	common     commonFlags
	style      styleFlags
	width      int
	timeout    string
	browserBin string
	noSandbox  bool
	screenshot string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.trace, "trace", "", "trace level: Debug, Info, Error")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "trace at Debug level")
}

// addStyleFlags adds theme and padding flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVarP(&f.theme, "theme", "t", "", "theme: light, dark, auto")
	fs.Float64Var(&f.padding, "padding", 0, "padding of all edges in CSS pixels")
	fs.Float64Var(&f.top, "padding-top", 0, "top padding in CSS pixels")
	fs.Float64Var(&f.bottom, "padding-bottom", 0, "bottom padding in CSS pixels")
	fs.Float64Var(&f.left, "padding-left", 0, "left padding in CSS pixels")
	fs.Float64Var(&f.right, "padding-right", 0, "right padding in CSS pixels")
}

func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}
	addCommonFlags(fs, &f.common)
	addStyleFlags(fs, &f.style)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address, e.g. 127.0.0.1:7777")
	fs.StringVar(&f.poll, "poll", "", "file poll interval, e.g. 500ms (0 disables)")
	fs.BoolVarP(&f.writeBack, "write-back", "w", false, "save edits made in the document to FILE")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: mdview serve [flags] FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.style = changedStyle(fs, f.style)
	return f, fs.Args(), nil
}

func parseMeasureFlags(args []string) (*measureFlags, []string, error) {
	fs := flag.NewFlagSet("measure", flag.ContinueOnError)
	f := &measureFlags{}
	addCommonFlags(fs, &f.common)
	addStyleFlags(fs, &f.style)
	fs.IntVar(&f.width, "width", 0, "layout width in CSS pixels")
	fs.StringVar(&f.timeout, "timeout", "", "browser launch, load and settle timeout, e.g. 30s")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.StringVarP(&f.screenshot, "screenshot", "o", "", "write a PNG screenshot to this path")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: mdview measure [flags] FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.style = changedStyle(fs, f.style)
	return f, fs.Args(), nil
}

// changedStyle marks unset padding flags with paddingUnset so mergeStyle
// skips them.
func changedStyle(fs *flag.FlagSet, f styleFlags) styleFlags {
	for name, v := range map[string]*float64{
		"padding":        &f.padding,
		"padding-top":    &f.top,
		"padding-bottom": &f.bottom,
		"padding-left":   &f.left,
		"padding-right":  &f.right,
	} {
		if !fs.Changed(name) {
			*v = paddingUnset
		}
	}
	return f
}

// loadConfig loads the config named by --config, or the defaults.
func loadConfig(f commonFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = config.LoadConfig(f.config); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if f.trace != "" {
		cfg.Trace = f.trace
	}
	if f.verbose {
		cfg.Trace = "Debug"
	}
	return cfg, nil
}

// mergeStyle copies given style flags into cfg (CLI wins).
func mergeStyle(f styleFlags, cfg *config.Config) {
	if f.theme != "" {
		cfg.Theme = f.theme
	}
	set := func(dst **float64, v float64) {
		if v != paddingUnset {
			*dst = style.Float(v)
		}
	}
	set(&cfg.Padding.All, f.padding)
	set(&cfg.Padding.Top, f.top)
	set(&cfg.Padding.Bottom, f.bottom)
	set(&cfg.Padding.Left, f.left)
	set(&cfg.Padding.Right, f.right)
}

func mergeServeFlags(f *serveFlags, cfg *config.Config) error {
	mergeStyle(f.style, cfg)
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.poll != "" {
		cfg.Poll = f.poll
	}
	if f.writeBack {
		cfg.WriteBack = true
	}
	return cfg.Validate()
}

func mergeMeasureFlags(f *measureFlags, cfg *config.Config) error {
	mergeStyle(f.style, cfg)
	if f.width != 0 {
		cfg.Headless.Width = f.width
	}
	if f.timeout != "" {
		cfg.Headless.Timeout = f.timeout
	}
	if f.browserBin != "" {
		cfg.Headless.BrowserBin = f.browserBin
	}
	if f.noSandbox {
		cfg.Headless.NoSandbox = true
	}
	return cfg.Validate()
}

// sourceFile returns the single positional FILE argument.
func sourceFile(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", fmt.Errorf("%w: missing FILE", ErrUsage)
	case 1:
		return positional[0], nil
	}
	return "", fmt.Errorf("%w: expected one FILE, got %d", ErrUsage, len(positional))
}

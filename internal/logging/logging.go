// Package logging routes every mdview tracer to the Go standard logger.
package logging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

// ErrTraceLevel is returned for a level other than Debug, Info or Error.
var ErrTraceLevel = errors.New("unknown trace level")

// Keys lists the tracer keys used by the packages of this module.
var Keys = []string{
	"mdview.bridge",
	"mdview.cli",
	"mdview.headless",
	"mdview.http",
	"mdview.loop",
	"mdview.nvim",
	"mdview.view",
}

// Level normalizes a trace level name ("debug" -> "Debug").
func Level(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return "Debug", nil
	case "", "info":
		return "Info", nil
	case "error":
		return "Error", nil
	}
	return "", fmt.Errorf("%w: %q", ErrTraceLevel, name)
}

// Setup installs the Go log adapter for all Keys at the given level.
func Setup(level string) error {
	lvl, err := Level(level)
	if err != nil {
		return err
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range Keys {
		conf["trace."+key] = lvl
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

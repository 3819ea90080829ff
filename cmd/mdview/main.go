package main

import (
	"context"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"go.uber.org/automaxprocs/maxprocs"
)

func tracer() tracing.Trace {
	return tracing.Select("mdview.cli")
}

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Only --verbose matters before dispatch; a parse error is reported again
	// by the command itself.
	if wantsVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, os.Args[1:], env)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
	}
	os.Exit(exitCodeFor(err))
}

// run dispatches to the command named by args[0].
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(ctx, rest, env)
	case "measure":
		return runMeasure(ctx, rest, env)
	case "config":
		return runConfig(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdview %s\n", Version)
		return nil
	case "help", "-h", "--help":
		printUsage(env.Stdout)
		return nil
	}
	printUsage(env.Stderr)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

// wantsVerbose reports whether args carry --verbose or -v.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}

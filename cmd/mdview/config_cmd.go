package main

import (
	"errors"
	"fmt"

	"go-markdown-view/internal/yamlutil"

	flag "github.com/spf13/pflag"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var common commonFlags
	addCommonFlags(fs, &common)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: mdview config [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(common)
	if err != nil {
		return err
	}
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}

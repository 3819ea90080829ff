package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview <command> [flags] [FILE]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve FILE     Live preview of FILE in the browser")
	fmt.Fprintln(w, "  measure FILE   Render FILE headless and print its height")
	fmt.Fprintln(w, "  config         Print the effective configuration")
	fmt.Fprintln(w, "  version        Print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdview <command> --help' for the flags of a command.")
}

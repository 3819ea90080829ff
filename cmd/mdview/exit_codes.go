package main

import (
	"errors"
	"os"

	"go-markdown-view/internal/config"
	"go-markdown-view/internal/headless"
	"go-markdown-view/internal/logging"
	httptransport "go-markdown-view/internal/transport/http"
)

// Exit codes for the mdview CLI.
const (
	ExitSuccess = 0 // Success
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or arguments
	ExitIO      = 3 // File not found, permission denied, port in use
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, headless.ErrBrowserConnect) ||
		errors.Is(err, headless.ErrPageCreate) ||
		errors.Is(err, headless.ErrPageLoad) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteScreenshot) ||
		errors.Is(err, httptransport.ErrListen) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, logging.ErrTraceLevel) {
		return ExitUsage
	}

	return ExitGeneral
}

package buildctl

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/buildlab/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging returns a logger writing to stdout and, when logFile is
// set, appending to that file as well. The returned closer must be called
// on exit.
func SetupLogging(logFile string, verbose bool) (logger.Logger, func() error, error) {
	if err := logger.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile == "" {
		return logger.Get(), func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return logger.New(io.MultiWriter(os.Stdout, file)), file.Close, nil
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `buildctl
========

Submits build prompts to a running buildlab server and summarizes the replies.

Usage:
  buildctl [options] [prompt ...]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -prompt string
        Prompt to submit (repeatable; trailing arguments are prompts too)
  -file string
        File with one prompt per line, "-" for stdin; # starts a comment
  -match
        Match against community builds instead of generating one
  -workers int
        Number of concurrent requests (default 4)
  -timeout duration
        Per-request timeout (default 2m)
  -output string
        Write results as JSON to this file
  -log string
        Also append log output to this file
  -verbose
        Log full response bodies
  -help
        Show this help message

Examples:
  buildctl "6'3 shot creating guard who can defend"
  buildctl -file prompts.txt -workers 8 -output results.json
  buildctl -match -prompt "rim protecting center"
`)
}

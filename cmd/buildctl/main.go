package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/buildlab/internal/buildctl"
	"github.com/okian/buildlab/pkg/logger"
)

const (
	defaultURL     = "http://localhost:9080"
	defaultWorkers = 4
	defaultTimeout = 2 * time.Minute
)

// promptList collects repeated -prompt flags.
type promptList []string

func (p *promptList) String() string     { return strings.Join(*p, "; ") }
func (p *promptList) Set(v string) error { *p = append(*p, v); return nil }

func main() {
	var prompts promptList
	var (
		baseURL = flag.String("url", defaultURL, "Base URL of the service")
		file    = flag.String("file", "", "File with one prompt per line (- for stdin)")
		match   = flag.Bool("match", false, "Match against community builds")
		workers = flag.Int("workers", defaultWorkers, "Number of concurrent requests")
		timeout = flag.Duration("timeout", defaultTimeout, "Per-request timeout")
		output  = flag.String("output", "", "Write results as JSON to this file")
		logFile = flag.String("log", "", "Also append log output to this file")
		verbose = flag.Bool("verbose", false, "Log full response bodies")
		help    = flag.Bool("help", false, "Show help message")
	)
	flag.Var(&prompts, "prompt", "Prompt to submit (repeatable)")
	flag.Parse()

	if *help {
		buildctl.ShowHelp(os.Stdout)
		return
	}

	log, closeLog, err := buildctl.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	all, err := buildctl.LoadPrompts(append(prompts, flag.Args()...), *file)
	if err != nil {
		log.Error(ctx, "failed to load prompts", logger.Error(err))
		os.Exit(1)
	}

	endpoint := buildctl.EndpointBuild
	if *match {
		endpoint = buildctl.EndpointMatch
	}

	_, summary, err := buildctl.Run(ctx, buildctl.Config{
		BaseURL:    *baseURL,
		Prompts:    all,
		Endpoint:   endpoint,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *output,
		Verbose:    *verbose,
	}, log)
	if err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
	if summary.Failed > 0 {
		os.Exit(2)
	}
}

// Command depconfuse scans one or more web application URLs for
// dependency-confusion exposure: it drives a headless browser, extracts
// package names referenced by the JavaScript served to it, and classifies
// each name against the public npm registry.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kraklabs/depconfuse/internal/cli"
	"github.com/kraklabs/depconfuse/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return 1
	}

	sub := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch sub {
	case "scan":
		return runScan(ctx, args)
	case "setup":
		return runSetup(args)
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "depconfuse: unknown command %q\n", sub)
		usage()
		return 1
	}
}

func runScan(ctx context.Context, args []string) int {
	flags, err := cli.ParseScanFlags(args)
	if err != nil {
		errors.FatalError(errors.Config("cli.parse_scan_flags", err), false)
		return 1
	}

	log := newLogger(flags.Global.Verbose, flags.Global.JSON)
	now := time.Now().UTC().Format(time.RFC3339)

	code, err := cli.RunScan(ctx, flags, now, log)
	if err != nil {
		errors.FatalError(err, flags.Global.JSON)
		return 1
	}
	return code
}

func runSetup(args []string) int {
	flags, err := cli.ParseSetupFlags(args)
	if err != nil {
		errors.FatalError(errors.Config("cli.parse_setup_flags", err), false)
		return 1
	}

	log := newLogger(flags.Global.Verbose, flags.Global.JSON)
	code, err := cli.RunSetup(flags, os.Stdout, log)
	if err != nil {
		errors.FatalError(err, flags.Global.JSON)
		return 1
	}
	return code
}

func newLogger(verbose, jsonMode bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonMode {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func usage() {
	fmt.Fprintln(os.Stderr, `depconfuse — dependency-confusion scanner for web applications

Usage:
  depconfuse scan [OPTIONS] [TARGETS...]
  depconfuse setup [OPTIONS]

Run "depconfuse scan --help" for the full flag surface.`)
}
